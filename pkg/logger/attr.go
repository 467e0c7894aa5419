package logger

import "log/slog"

// Error records err under "error". A nil error yields an empty attribute,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records a user identifier under "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Component names the subsystem emitting the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Feature records a metered feature key.
func Feature(key string) slog.Attr {
	return slog.String("feature", key)
}

func Plan(id string) slog.Attr {
	return slog.String("plan", id)
}

// Tier records a user's plan tier.
func Tier(tier string) slog.Attr {
	return slog.String("tier", tier)
}

func Processor(name string) slog.Attr {
	return slog.String("processor", name)
}

func SubscriptionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("subscription_id", id)
}

// EventType records a webhook or domain event type.
func EventType(t string) slog.Attr {
	return slog.String("event_type", t)
}

func EventID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("event_id", id)
}

// Status records a subscription or payment status.
func Status(s string) slog.Attr {
	return slog.String("status", s)
}
