package usage

import "errors"

var (
	ErrInvalidEvent = errors.New("usage: invalid event")
	ErrStore        = errors.New("usage: store failure")
)
