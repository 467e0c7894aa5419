package entitlement

import "context"

// InsufficientCreditsMessage is returned to the caller of a gated action that
// exceeded its quota.
const InsufficientCreditsMessage = "You have no more credits left to do this operation"

const unavailableMessage = "Unable to verify your remaining credits. Please try again later."

// Result is the outcome of a gated action, shaped for tool-call responses.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Succeed builds a successful result.
func Succeed(data any, message string) Result {
	return Result{Success: true, Data: data, Message: message}
}

// Fail builds a failed result. Details are optional.
func Fail(msg string, details any) Result {
	return Result{Success: false, Error: msg, Details: details}
}

// Action is the work guarded by Gate.
type Action func(ctx context.Context) Result
