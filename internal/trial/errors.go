package trial

import "errors"

var (
	// ErrNotFound covers both a missing id and an id owned by someone
	// else, so cross-owner existence never leaks.
	ErrNotFound = errors.New("trial not found")

	// ErrUnauthorized is returned when owner scoping is on and the
	// caller has no resolved identity.
	ErrUnauthorized = errors.New("authentication required")
)

// FieldError describes a single failing field of a mutation payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failing field, not just the first.
type ValidationErrors struct {
	Fields []FieldError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	return "validation failed"
}

func (v *ValidationErrors) add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// AsValidationErrors unwraps err into a ValidationErrors, if it is one.
func AsValidationErrors(err error) (*ValidationErrors, bool) {
	var verr *ValidationErrors
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
