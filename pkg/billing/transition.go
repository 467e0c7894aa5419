package billing

// Trigger is the lifecycle signal that caused a sync.
type Trigger string

const (
	TriggerCreated  Trigger = "created"
	TriggerUpdated  Trigger = "updated"
	TriggerDeleted  Trigger = "deleted"
	TriggerCheckout Trigger = "checkout"
)

// Transition is the effect of a sync on a user's plan tier.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionGrant
	TransitionRevoke
)

func (t Transition) String() string {
	switch t {
	case TransitionGrant:
		return "grant"
	case TransitionRevoke:
		return "revoke"
	default:
		return "none"
	}
}

// TransitionFor derives the tier change from the trigger and the freshly
// fetched processor status. It depends on nothing else, so replaying or
// reordering events converges on the state of the last event applied.
func TransitionFor(trigger Trigger, status Status) Transition {
	switch trigger {
	case TriggerDeleted:
		return TransitionRevoke
	case TriggerCreated, TriggerCheckout:
		if status == StatusActive || status == StatusTrialing {
			return TransitionGrant
		}
	case TriggerUpdated:
		switch status {
		case StatusActive, StatusTrialing, StatusPastDue:
			return TransitionGrant
		case StatusCanceled, StatusUnpaid, StatusIncomplete, StatusIncompleteExpired:
			return TransitionRevoke
		}
	}
	return TransitionNone
}
