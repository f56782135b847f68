package trial

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultNotifyDays = 3
	minNotifyDays     = 1
	maxNotifyDays     = 30
	cardLast4Len      = 4
)

var fieldCheck = validator.New()

// Validate checks every rule and reports all violations together. It
// normalizes the payload: service name and category are trimmed, an empty
// cancel URL becomes absent, an omitted notice window takes the default,
// and a missing id is assigned.
//
// expiresAt before startedAt is allowed; nothing downstream assumes the
// dates are ordered.
func Validate(in MutationInput) (Mutation, error) {
	verr := &ValidationErrors{}

	serviceName := strings.TrimSpace(in.ServiceName)
	if serviceName == "" {
		verr.add("serviceName", "service name is required")
	}

	if err := fieldCheck.Var(in.Email, "required,email"); err != nil {
		verr.add("email", "valid email is required")
	}

	if utf8.RuneCountInString(in.CardLast4) != cardLast4Len {
		verr.add("cardLast4", "card last 4 digits must be exactly 4 characters")
	}

	startedAt, err := time.Parse(time.RFC3339, in.StartedAt)
	if err != nil {
		verr.add("startedAt", "must be an RFC3339 timestamp")
	}
	expiresAt, err := time.Parse(time.RFC3339, in.ExpiresAt)
	if err != nil {
		verr.add("expiresAt", "must be an RFC3339 timestamp")
	}

	cancelURL := in.CancelURL
	if cancelURL != nil {
		trimmed := strings.TrimSpace(*cancelURL)
		if trimmed == "" {
			cancelURL = nil
		} else if parsed, err := url.Parse(trimmed); err != nil || !parsed.IsAbs() || parsed.Host == "" {
			verr.add("cancelUrl", "must be an absolute URL")
		} else {
			cancelURL = &trimmed
		}
	}

	// The default applies only when the field is absent. An explicit zero
	// is out of range, not a request for the default.
	notifyDays := defaultNotifyDays
	if in.NotifyDaysBefore != nil {
		notifyDays = *in.NotifyDaysBefore
		if notifyDays < minNotifyDays || notifyDays > maxNotifyDays {
			verr.add("notifyDaysBefore", "must be between 1 and 30")
		}
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		verr.add("category", "category is required")
	}

	if in.Cost < 0 {
		verr.add("cost", "cost cannot be negative")
	}

	if in.Status != nil && !in.Status.Valid() {
		verr.add("status", "unknown status")
	}

	if len(verr.Fields) > 0 {
		return Mutation{}, verr
	}

	id := uuid.New()
	if in.ID != nil && *in.ID != uuid.Nil {
		id = *in.ID
	}

	return Mutation{
		ID:               id,
		ServiceName:      serviceName,
		Email:            in.Email,
		CardLast4:        in.CardLast4,
		StartedAt:        startedAt,
		ExpiresAt:        expiresAt,
		Cancelled:        in.Status != nil && *in.Status == StatusCancelled,
		CancelURL:        cancelURL,
		NotifyDaysBefore: notifyDays,
		Category:         category,
		Cost:             in.Cost,
		Notes:            in.Notes,
	}, nil
}
