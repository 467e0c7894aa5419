package billing

import (
	"github.com/dmitrymomot/applytrack/handler"
	"github.com/dmitrymomot/applytrack/pkg/entitlement"
	"github.com/dmitrymomot/applytrack/svc/account"
)

type usageResponse struct {
	Tier       account.Tier               `json:"plan"`
	Subscribed bool                       `json:"subscribed"`
	Features   []entitlement.FeatureUsage `json:"features"`
}

func (m *Module) usageSummary(ctx handler.Context, _ struct{}) handler.Response {
	user, err := m.currentUser(ctx)
	if err != nil {
		return handler.JSONError(err)
	}

	subscribed, err := m.service.Subscribed(ctx, user)
	if err != nil {
		return handler.JSONError(err)
	}
	features, err := m.usage.Summary(ctx, user.ID)
	if err != nil {
		return handler.JSONError(err)
	}

	return handler.JSON(usageResponse{
		Tier:       user.Tier,
		Subscribed: subscribed,
		Features:   features,
	})
}
