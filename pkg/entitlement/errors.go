package entitlement

import "errors"

var (
	ErrUnmappedFeature = errors.New("entitlement: feature has no limit key")
	ErrInvalidCount    = errors.New("entitlement: count must be positive")
	ErrReadUsage       = errors.New("entitlement: failed to read usage")
	ErrLockFailed      = errors.New("entitlement: failed to acquire quota lock")
)
