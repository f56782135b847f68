package trial

import (
	"time"

	"github.com/google/uuid"
)

// Status classifies where a trial is in its lifecycle. Only "cancelled" is
// authoritative in storage; the time-based states are derived on every read.
type Status string

const (
	StatusActive    Status = "active"
	StatusExpiring  Status = "expiring"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpiring, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// AlertSeverity grades an alert attached to a trial.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is an immutable notification attached to a trial. Alerts are stored
// as a JSON array so their insertion order survives round-trips.
type Alert struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Severity  AlertSeverity `json:"severity"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Trial is a tracked free-trial signup: who it belongs to, when it starts
// charging, and what it will cost if left uncancelled.
type Trial struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"-"`
	ServiceName      string    `json:"serviceName"`
	Email            string    `json:"email"`
	CardLast4        string    `json:"cardLast4"`
	StartedAt        time.Time `json:"startedAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
	Status           Status    `json:"status"`
	CancelURL        *string   `json:"cancelUrl,omitempty"`
	NotifyDaysBefore int       `json:"notifyDaysBefore"`
	Category         string    `json:"category"`
	Cost             float64   `json:"cost"`
	Notes            *string   `json:"notes,omitempty"`
	Alerts           []Alert   `json:"alerts"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MutationInput is the raw payload accepted for create and update. Dates
// arrive as RFC3339 strings so malformed values surface as field errors
// instead of bind failures. Status is a hint: only "cancelled" is honored.
// NotifyDaysBefore is a pointer so an omitted window is distinguishable
// from an explicit zero, which is out of range.
type MutationInput struct {
	ID               *uuid.UUID `json:"id,omitempty"`
	ServiceName      string     `json:"serviceName"`
	Email            string     `json:"email"`
	CardLast4        string     `json:"cardLast4"`
	StartedAt        string     `json:"startedAt"`
	ExpiresAt        string     `json:"expiresAt"`
	Status           *Status    `json:"status,omitempty"`
	CancelURL        *string    `json:"cancelUrl,omitempty"`
	NotifyDaysBefore *int       `json:"notifyDaysBefore,omitempty"`
	Category         string     `json:"category"`
	Cost             float64    `json:"cost"`
	Notes            *string    `json:"notes,omitempty"`
}

// Mutation is a validated, normalized MutationInput ready for the store.
type Mutation struct {
	ID               uuid.UUID
	ServiceName      string
	Email            string
	CardLast4        string
	StartedAt        time.Time
	ExpiresAt        time.Time
	Cancelled        bool
	CancelURL        *string
	NotifyDaysBefore int
	Category         string
	Cost             float64
	Notes            *string
}
