package portfolio

import "errors"

var (
	ErrProjectNotFound = errors.New("portfolio: project not found")
	ErrSlugTaken       = errors.New("portfolio: slug already taken")
	ErrEmptySlug       = errors.New("portfolio: title produces an empty slug")
)
