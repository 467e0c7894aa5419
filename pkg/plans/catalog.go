package plans

import "fmt"

// Catalog is a validated, read-only set of plans. It is safe for concurrent
// use because nothing mutates it after NewCatalog returns.
type Catalog struct {
	order   []PlanID
	plans   map[PlanID]Plan
	byPrice map[string]PlanID
}

// NewCatalog validates plans and builds a catalog that keeps their order.
func NewCatalog(plans ...Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		order:   make([]PlanID, 0, len(plans)),
		plans:   make(map[PlanID]Plan, len(plans)),
		byPrice: make(map[string]PlanID),
	}
	for _, p := range plans {
		if p.ID == "" {
			return nil, ErrInvalidPlanID
		}
		if _, dup := c.plans[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlan, p.ID)
		}

		seen := make(map[LimitKey]struct{}, len(p.Features))
		for _, f := range p.Features {
			if _, dup := seen[f.Key]; dup {
				return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateFeature, p.ID, f.Key)
			}
			seen[f.Key] = struct{}{}
			if f.Limit < 0 && f.Limit != Unlimited {
				return nil, fmt.Errorf("%w: %s/%s=%d", ErrInvalidLimit, p.ID, f.Key, f.Limit)
			}
		}

		if p.PriceRef != "" {
			if other, dup := c.byPrice[p.PriceRef]; dup {
				return nil, fmt.Errorf("%w: %s and %s", ErrDuplicatePriceRef, other, p.ID)
			}
			c.byPrice[p.PriceRef] = p.ID
		}

		c.order = append(c.order, p.ID)
		c.plans[p.ID] = p.clone()
	}
	return c, nil
}

// MustNewCatalog panics if the plans are invalid.
func MustNewCatalog(plans ...Plan) *Catalog {
	c, err := NewCatalog(plans...)
	if err != nil {
		panic(err)
	}
	return c
}

// Plan returns a copy of the plan with the given id.
func (c *Catalog) Plan(id PlanID) (Plan, bool) {
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, false
	}
	return p.clone(), true
}

// PlanByPriceRef finds the plan sold under a processor price reference.
func (c *Catalog) PlanByPriceRef(ref string) (Plan, bool) {
	id, ok := c.byPrice[ref]
	if !ok || ref == "" {
		return Plan{}, false
	}
	return c.Plan(id)
}

// Plans returns copies of all plans in declaration order.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plans[id].clone())
	}
	return out
}

// FeatureLimit returns the quota of key under plan id. Unknown plans and keys
// yield 0 so that a misconfiguration denies access instead of granting it.
func (c *Catalog) FeatureLimit(id PlanID, key LimitKey) int64 {
	p, ok := c.plans[id]
	if !ok {
		return 0
	}
	f, ok := p.Feature(key)
	if !ok {
		return 0
	}
	return f.Limit
}

// DisplayPrice renders the plan price, e.g. "€3/month". Unknown plans render
// as an empty string.
func (c *Catalog) DisplayPrice(id PlanID, includeInterval bool) string {
	p, ok := c.plans[id]
	if !ok {
		return ""
	}
	if !includeInterval || p.Price.Interval == "" {
		return p.Price.Display
	}
	return p.Price.Display + "/" + string(p.Price.Interval)
}

// FeatureList returns the display strings of the plan's features in order.
func (c *Catalog) FeatureList(id PlanID) []string {
	p, ok := c.plans[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(p.Features))
	for _, f := range p.Features {
		out = append(out, f.Display)
	}
	return out
}
