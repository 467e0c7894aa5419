package contact

import "errors"

var (
	ErrMessageNotFound = errors.New("contact: message not found")
	ErrInvalidStatus   = errors.New("contact: invalid status")
	ErrSaveMessage     = errors.New("contact: failed to save message")
)
