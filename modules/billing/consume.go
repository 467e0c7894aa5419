package billing

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/applytrack/handler"
	"github.com/dmitrymomot/applytrack/pkg/entitlement"
	"github.com/dmitrymomot/applytrack/pkg/logger"
	"github.com/dmitrymomot/applytrack/pkg/usage"
)

type consumeRequest struct {
	Count    int64          `json:"count"`
	Metadata usage.Metadata `json:"metadata"`
}

type consumedUnits struct {
	Feature usage.Feature `json:"feature"`
	Count   int64         `json:"count"`
}

// consumeUsage spends credits for a metered tool call made on the user's
// behalf. The gate result is returned as data so tool runners can hand it
// back to the model unchanged.
func (m *Module) consumeUsage(ctx handler.Context, req consumeRequest) handler.Response {
	user, err := m.currentUser(ctx)
	if err != nil {
		return handler.JSONError(err)
	}

	feature := usage.Feature(chi.URLParam(ctx.Request(), "feature"))
	if !feature.Valid() {
		return handler.JSONError(handler.ErrNotFound)
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count < 0 {
		return handler.JSONError(handler.ErrBadRequest)
	}

	res := m.usage.Gate(ctx, user.ID, feature,
		func(context.Context) entitlement.Result {
			return entitlement.Succeed(consumedUnits{Feature: feature, Count: req.Count}, "")
		},
		entitlement.WithCost(req.Count),
		entitlement.WithEventMetadata(req.Metadata),
	)
	if res.Success {
		return handler.JSON(res)
	}

	m.logger.InfoContext(ctx, "metered usage refused",
		logger.Component("billing"),
		logger.UserID(user.ID),
		logger.Feature(string(feature)),
	)
	status := http.StatusServiceUnavailable
	if res.Error == entitlement.InsufficientCreditsMessage {
		status = http.StatusPaymentRequired
	}
	return handler.JSON(res, handler.WithJSONStatus(status))
}
