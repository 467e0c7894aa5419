package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "can't be blank", Key: "validation.required"},
	}
}

func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("is too long (maximum is %d characters)", max),
			Key:     "validation.max_length",
		},
	}
}

// Positive requires value > 0.
func Positive[T ~int | ~int32 | ~int64](field string, value T) Rule {
	return Rule{
		Check: func() bool { return value > 0 },
		Error: ValidationError{Field: field, Message: "must be greater than 0", Key: "validation.positive"},
	}
}

// RequiredUUID rejects uuid.Nil.
func RequiredUUID(field string, value uuid.UUID) Rule {
	return Rule{
		Check: func() bool { return value != uuid.Nil },
		Error: ValidationError{Field: field, Message: "can't be blank", Key: "validation.required"},
	}
}

// ValidEmail accepts a bare address; display names are rejected. Empty values
// pass so the rule can be combined with Required.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return true
			}
			addr, err := mail.ParseAddress(value)
			return err == nil && addr.Address == value && strings.Contains(addr.Address, ".")
		},
		Error: ValidationError{Field: field, Message: "is invalid", Key: "validation.email"},
	}
}

// ValidURL accepts absolute http(s) URLs. Empty values pass.
func ValidURL(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return true
			}
			u, err := url.Parse(value)
			return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
		},
		Error: ValidationError{Field: field, Message: "is not a valid URL", Key: "validation.url"},
	}
}

// OneOf requires value to be one of allowed.
func OneOf[T comparable](field string, value T, allowed ...T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{Field: field, Message: "is not included in the list", Key: "validation.inclusion"},
	}
}

// Check wraps an arbitrary predicate.
func Check(field string, ok bool, message string) Rule {
	return Rule{
		Check: func() bool { return ok },
		Error: ValidationError{Field: field, Message: message, Key: "validation.invalid"},
	}
}
