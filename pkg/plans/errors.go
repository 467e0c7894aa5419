package plans

import "errors"

var (
	ErrEmptyCatalog      = errors.New("plans: catalog has no plans")
	ErrInvalidPlanID     = errors.New("plans: plan id is empty")
	ErrDuplicatePlan     = errors.New("plans: duplicate plan id")
	ErrDuplicateFeature  = errors.New("plans: duplicate feature key in plan")
	ErrInvalidLimit      = errors.New("plans: limit must be non-negative or unlimited")
	ErrDuplicatePriceRef = errors.New("plans: price reference used by more than one plan")
	ErrPlanNotFound      = errors.New("plans: plan not found")
)
