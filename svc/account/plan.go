package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/plans"
)

// PlanResolver maps the stored tier of a user onto a catalog plan: free users
// get plans.PlanFree and pro users get proPlan. Unknown tiers resolve to no
// plan, which grants nothing.
func PlanResolver(users Reader, proPlan plans.PlanID) func(context.Context, uuid.UUID) (plans.PlanID, error) {
	return func(ctx context.Context, userID uuid.UUID) (plans.PlanID, error) {
		u, err := users.GetUser(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("resolve plan: %w", err)
		}
		switch u.Tier {
		case TierPro:
			return proPlan, nil
		case TierFree:
			return plans.PlanFree, nil
		default:
			return "", nil
		}
	}
}
