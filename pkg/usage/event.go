package usage

import (
	"time"

	"github.com/google/uuid"
)

// Metadata is free-form context attached to a usage event.
type Metadata map[string]any

// Event is one immutable ledger row.
type Event struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Feature   Feature   `json:"feature"`
	Count     int64     `json:"count"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Query selects events to aggregate. A zero Since means all time.
type Query struct {
	UserID  uuid.UUID
	Feature Feature
	Since   time.Time
}

// Window names a reporting period.
type Window string

const (
	WindowAllTime      Window = "all_time"
	WindowCurrentMonth Window = "current_month"
	WindowCurrentDay   Window = "current_day"
)

// Start returns the beginning of the window containing now, in UTC. The
// all-time window starts at the zero time.
func (w Window) Start(now time.Time) time.Time {
	now = now.UTC()
	switch w {
	case WindowCurrentMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case WindowCurrentDay:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}
