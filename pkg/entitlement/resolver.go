package entitlement

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/plans"
)

// PlanResolver returns the catalog plan that governs a user's quotas.
type PlanResolver func(ctx context.Context, userID uuid.UUID) (plans.PlanID, error)

// StaticPlanResolver resolves every user to id.
func StaticPlanResolver(id plans.PlanID) PlanResolver {
	return func(context.Context, uuid.UUID) (plans.PlanID, error) { return id, nil }
}

type planIDKey struct{}

// WithPlanID pins the plan for the rest of a request.
func WithPlanID(ctx context.Context, id plans.PlanID) context.Context {
	return context.WithValue(ctx, planIDKey{}, id)
}

// ContextPlanResolver resolves from the context value set by WithPlanID and
// falls back to next.
func ContextPlanResolver(next PlanResolver) PlanResolver {
	return func(ctx context.Context, userID uuid.UUID) (plans.PlanID, error) {
		if id, ok := ctx.Value(planIDKey{}).(plans.PlanID); ok && id != "" {
			return id, nil
		}
		return next(ctx, userID)
	}
}
