package rules

import (
	"errors"
	"time"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
)

const (
	// At least 6 characters, at least one of them not whitespace.
	passwordRegexPattern = `^(?=.*\S).{6,}$`
)

var (
	errInvalidPassword = errors.New("must be at least 6 characters")
	errInvalidDate     = errors.New("must be a valid date")
	errPastDate        = errors.New("must be in the future")

	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)
)

// Password checks the password policy.
var Password = validation.By(func(value interface{}) error {
	s, isNil := stringValue(value)
	if isNil || s == "" {
		return nil
	}

	ok, err := passwordExp.MatchString(s)
	if err != nil || !ok {
		return errInvalidPassword
	}

	return nil
})

// Date checks that a string parses as a date with ParseDate.
var Date = validation.By(func(value interface{}) error {
	s, isNil := stringValue(value)
	if isNil || s == "" {
		return nil
	}
	if _, err := ParseDate(s); err != nil {
		return errInvalidDate
	}

	return nil
})

// FutureDate checks that a parseable date string lies after now.
func FutureDate(now func() time.Time) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, isNil := stringValue(value)
		if isNil || s == "" {
			return nil
		}
		t, err := ParseDate(s)
		if err != nil {
			return errInvalidDate
		}
		if !t.After(now()) {
			return errPastDate
		}

		return nil
	})
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseDate accepts RFC 3339 timestamps, datetime-local values and plain dates.
func ParseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}

func RoleIn() validation.Rule {
	return validation.In(toInterfaces(domain.Roles)...)
}

func EventStatusIn() validation.Rule {
	return validation.In(toInterfaces(domain.EventStatuses)...)
}

func EventCategoryIn() validation.Rule {
	return validation.In(toInterfaces(domain.EventCategories)...)
}

func RegistrationStatusIn() validation.Rule {
	return validation.In(toInterfaces(domain.RegistrationStatuses)...)
}

// toInterfaces converts typed enum values to plain strings since validation.In
// compares with ==.
func toInterfaces[T ~string](values []T) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = string(v)
	}

	return out
}

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, false
	case *string:
		if v == nil {
			return "", true
		}
		return *v, false
	default:
		return "", true
	}
}
