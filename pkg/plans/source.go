package plans

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source supplies plan definitions.
type Source interface {
	Load(ctx context.Context) ([]Plan, error)
}

// Load reads plans from src and builds a validated catalog.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	ps, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("plans: load source: %w", err)
	}
	return NewCatalog(ps...)
}

type inMemSource struct {
	plans []Plan
}

// NewInMemSource returns a Source serving copies of plans.
func NewInMemSource(plans ...Plan) Source {
	cp := make([]Plan, 0, len(plans))
	for _, p := range plans {
		cp = append(cp, p.clone())
	}
	return &inMemSource{plans: cp}
}

func (s *inMemSource) Load(context.Context) ([]Plan, error) {
	out := make([]Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p.clone())
	}
	return out, nil
}

type yamlSource struct {
	open func() (io.ReadCloser, error)
}

// NewYAMLSource decodes plans from r on every Load. The reader is consumed by
// the first call, so use NewYAMLFileSource for repeated loads.
func NewYAMLSource(r io.Reader) Source {
	return &yamlSource{open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil }}
}

// NewYAMLFileSource reads plans from a YAML file at path.
func NewYAMLFileSource(path string) Source {
	return &yamlSource{open: func() (io.ReadCloser, error) { return os.Open(path) }}
}

func (s *yamlSource) Load(ctx context.Context) ([]Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := s.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var doc yamlDocument
	dec := yaml.NewDecoder(rc)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	out := make([]Plan, 0, len(doc.Plans))
	for _, yp := range doc.Plans {
		out = append(out, yp.plan())
	}
	return out, nil
}

type yamlDocument struct {
	Plans []yamlPlan `yaml:"plans"`
}

type yamlPlan struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	DisplayName string        `yaml:"display_name"`
	Description string        `yaml:"description"`
	CTA         string        `yaml:"cta"`
	PriceRef    string        `yaml:"price_ref"`
	Price       yamlPrice     `yaml:"price"`
	Features    []yamlFeature `yaml:"features"`
	Highlights  []string      `yaml:"highlights"`
	Badge       string        `yaml:"badge"`
	Savings     *Savings      `yaml:"savings"`
	Recommended bool          `yaml:"recommended"`
}

type yamlPrice struct {
	Amount            int64  `yaml:"amount"`
	Currency          string `yaml:"currency"`
	Display           string `yaml:"display"`
	Interval          string `yaml:"interval"`
	MonthlyEquivalent string `yaml:"monthly_equivalent"`
}

type yamlFeature struct {
	Key     string    `yaml:"key"`
	Limit   yamlLimit `yaml:"limit"`
	Display string    `yaml:"display"`
	Period  string    `yaml:"period"`
}

// yamlLimit accepts an integer or the word "unlimited".
type yamlLimit int64

func (l *yamlLimit) UnmarshalYAML(node *yaml.Node) error {
	if strings.EqualFold(strings.TrimSpace(node.Value), "unlimited") {
		*l = yamlLimit(Unlimited)
		return nil
	}
	var n int64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("limit %q: %w", node.Value, err)
	}
	*l = yamlLimit(n)
	return nil
}

func (yp yamlPlan) plan() Plan {
	p := Plan{
		ID:          PlanID(yp.ID),
		Name:        yp.Name,
		DisplayName: yp.DisplayName,
		Description: yp.Description,
		CTA:         yp.CTA,
		PriceRef:    yp.PriceRef,
		Price: Price{
			Money:             Money{Amount: yp.Price.Amount, Currency: yp.Price.Currency},
			Display:           yp.Price.Display,
			Interval:          Interval(yp.Price.Interval),
			MonthlyEquivalent: yp.Price.MonthlyEquivalent,
		},
		Highlights:  yp.Highlights,
		Badge:       yp.Badge,
		Savings:     yp.Savings,
		Recommended: yp.Recommended,
	}
	for _, f := range yp.Features {
		p.Features = append(p.Features, FeatureLimit{
			Key:     LimitKey(f.Key),
			Limit:   int64(f.Limit),
			Display: f.Display,
			Period:  Period(f.Period),
		})
	}
	return p
}
