package site

import (
	"github.com/dmitrymomot/applytrack/handler"
	"github.com/dmitrymomot/applytrack/pkg/plans"
)

type pricingPlan struct {
	plans.Plan
	DisplayPrice string   `json:"display_price"`
	FeatureList  []string `json:"feature_list"`
}

func (m *Module) pricing(_ handler.Context, _ struct{}) handler.Response {
	all := m.catalog.Plans()
	out := make([]pricingPlan, 0, len(all))
	for _, p := range all {
		out = append(out, pricingPlan{
			Plan:         p,
			DisplayPrice: m.catalog.DisplayPrice(p.ID, true),
			FeatureList:  m.catalog.FeatureList(p.ID),
		})
	}
	return handler.JSON(out)
}
