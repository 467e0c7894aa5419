package entitlement

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/applytrack/pkg/logger"
	"github.com/dmitrymomot/applytrack/pkg/usage"
)

type gateOptions struct {
	cost     int64
	metadata usage.Metadata
}

// GateOption customizes a Gate call.
type GateOption func(*gateOptions)

// WithCost sets how many units a successful action consumes. Defaults to 1.
func WithCost(n int64) GateOption {
	return func(o *gateOptions) { o.cost = n }
}

// WithEventMetadata attaches metadata to the recorded usage event.
func WithEventMetadata(m usage.Metadata) GateOption {
	return func(o *gateOptions) { o.metadata = m }
}

// Gate runs action only when the user has quota left for feature and records
// usage only when the action reports success. A denied or failed action
// consumes nothing. Quota lookup failures deny the action.
func (c *Checker) Gate(ctx context.Context, userID uuid.UUID, feature usage.Feature, action Action, opts ...GateOption) Result {
	o := gateOptions{cost: 1}
	for _, opt := range opts {
		opt(&o)
	}
	log := c.logger.With(logger.UserID(userID), logger.Feature(string(feature)))

	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, lockKey(userID, feature))
		if err != nil {
			log.ErrorContext(ctx, "quota lock failed", logger.Error(err))
			return Fail(unavailableMessage, nil)
		}
		defer unlock()
	}

	allowed, err := c.CanUse(ctx, userID, feature, o.cost)
	if err != nil {
		log.ErrorContext(ctx, "quota check failed", logger.Error(err))
		return Fail(unavailableMessage, nil)
	}
	if !allowed {
		log.InfoContext(ctx, "gated action denied")
		return Fail(InsufficientCreditsMessage, nil)
	}

	res := action(ctx)
	if !res.Success {
		return res
	}

	if _, err := c.ledger.Record(ctx, userID, feature, usage.WithCount(o.cost), usage.WithMetadata(o.metadata)); err != nil {
		// The work is already done; report it and keep the result.
		log.ErrorContext(ctx, "failed to record usage for completed action",
			logger.Error(err),
			slog.Int64("count", o.cost),
		)
	}
	return res
}

func lockKey(userID uuid.UUID, feature usage.Feature) string {
	return "quota:" + userID.String() + ":" + string(feature)
}
