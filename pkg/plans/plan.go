package plans

import "slices"

// FeatureLimit is one quota row of a plan.
type FeatureLimit struct {
	Key     LimitKey `json:"key"`
	Limit   int64    `json:"limit"`
	Display string   `json:"display"`
	Period  Period   `json:"period,omitempty"`
}

// IsUnlimited reports whether the quota has no upper bound.
func (f FeatureLimit) IsUnlimited() bool { return f.Limit == Unlimited }

// Price is the billing price of a plan along with its display strings.
type Price struct {
	Money
	Display           string   `json:"display"`
	Interval          Interval `json:"interval"`
	MonthlyEquivalent string   `json:"monthly_equivalent,omitempty"`
}

// Savings advertises the discount of a plan relative to another cadence.
type Savings struct {
	Amount  int64  `json:"amount"`
	Percent int    `json:"percent"`
	Display string `json:"display"`
}

// Plan is an immutable catalog entry. Only ID and Features drive entitlement
// decisions; everything else is billing and display metadata.
type Plan struct {
	ID          PlanID         `json:"id"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description"`
	CTA         string         `json:"cta"`
	Price       Price          `json:"price"`
	PriceRef    string         `json:"-"`
	Features    []FeatureLimit `json:"features"`
	Highlights  []string       `json:"highlights,omitempty"`
	Badge       string         `json:"badge,omitempty"`
	Savings     *Savings       `json:"savings,omitempty"`
	Recommended bool           `json:"recommended"`
}

// Feature returns the quota row for key.
func (p Plan) Feature(key LimitKey) (FeatureLimit, bool) {
	for _, f := range p.Features {
		if f.Key == key {
			return f, true
		}
	}
	return FeatureLimit{}, false
}

// IsPaid reports whether the plan is sold through the payment processor.
func (p Plan) IsPaid() bool { return p.Price.Amount > 0 }

func (p Plan) clone() Plan {
	c := p
	c.Features = slices.Clone(p.Features)
	c.Highlights = slices.Clone(p.Highlights)
	if p.Savings != nil {
		s := *p.Savings
		c.Savings = &s
	}
	return c
}
