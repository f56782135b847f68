package trial

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"trialwatch/internal/clock"
)

// Store is the persistence contract the service requires. Implementations
// treat the stored status column as a display cache: they persist whatever
// cached value they are handed and never interpret it, except that
// RefreshStatuses must leave cancelled rows alone.
//
// Owner arguments are ignored by unscoped stores. A scoped store must report
// ErrNotFound for ids owned by someone else.
type Store interface {
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]Trial, error)
	GetByID(ctx context.Context, id, owner uuid.UUID) (Trial, error)
	Upsert(ctx context.Context, m Mutation, owner uuid.UUID, cached Status, now time.Time) (Trial, error)
	DeleteByID(ctx context.Context, id, owner uuid.UUID) error
	ClosestExpiry(ctx context.Context, now time.Time) (Trial, error)
	RefreshStatuses(ctx context.Context, now time.Time) (int, error)
}

// Options toggles the documented operating modes.
type Options struct {
	// OwnerScoping requires an authenticated caller and restricts every
	// operation to that caller's records.
	OwnerScoping bool
	// DemoMode marks mutations with a warning that nothing is persisted.
	DemoMode bool
}

// Service interleaves validation and status derivation with every store
// operation, so callers only ever see fresh lifecycle states.
type Service struct {
	store  Store
	clock  clock.Clock
	scoped bool
	demo   bool
}

// DemoWarning accompanies mutations executed against the in-memory store.
const DemoWarning = "demo mode: changes are kept in memory only"

func NewService(store Store, clk clock.Clock, opts Options) *Service {
	return &Service{
		store:  store,
		clock:  clk,
		scoped: opts.OwnerScoping,
		demo:   opts.DemoMode,
	}
}

func (s *Service) requireOwner(owner uuid.UUID) error {
	if s.scoped && owner == uuid.Nil {
		return ErrUnauthorized
	}
	return nil
}

// List returns the caller's trials with derived statuses, in urgency order.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]Trial, error) {
	if err := s.requireOwner(owner); err != nil {
		return nil, err
	}

	records, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for i := range records {
		records[i].Status = DeriveStatus(records[i], now)
	}
	return OrderByUrgency(records, now), nil
}

// Get fetches one trial scoped to the caller, with a derived status.
func (s *Service) Get(ctx context.Context, id, owner uuid.UUID) (Trial, error) {
	if err := s.requireOwner(owner); err != nil {
		return Trial{}, err
	}

	t, err := s.store.GetByID(ctx, id, owner)
	if err != nil {
		return Trial{}, err
	}

	t.Status = DeriveStatus(t, s.clock.Now())
	return t, nil
}

// Save validates the input and upserts it as the caller's record. The
// returned warning is non-empty in demo mode.
func (s *Service) Save(ctx context.Context, in MutationInput, owner uuid.UUID) (Trial, string, error) {
	if err := s.requireOwner(owner); err != nil {
		return Trial{}, "", err
	}

	m, err := Validate(in)
	if err != nil {
		return Trial{}, "", err
	}

	now := s.clock.Now()
	cached := StatusCancelled
	if !m.Cancelled {
		cached = DeriveStatus(Trial{
			ExpiresAt:        m.ExpiresAt,
			NotifyDaysBefore: m.NotifyDaysBefore,
		}, now)
	}

	t, err := s.store.Upsert(ctx, m, owner, cached, now)
	if err != nil {
		return Trial{}, "", err
	}

	t.Status = DeriveStatus(t, now)

	warning := ""
	if s.demo {
		warning = DemoWarning
	}
	return t, warning, nil
}

// Delete removes the caller's trial by id.
func (s *Service) Delete(ctx context.Context, id, owner uuid.UUID) error {
	if err := s.requireOwner(owner); err != nil {
		return err
	}
	return s.store.DeleteByID(ctx, id, owner)
}

// Summarize folds the caller's trials into dashboard counts against a single
// now snapshot.
func (s *Service) Summarize(ctx context.Context, owner uuid.UUID) (Summary, error) {
	if err := s.requireOwner(owner); err != nil {
		return Summary{}, err
	}

	records, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records, s.clock.Now()), nil
}

// Closest returns the record with the nearest future expiry across all
// owners, plus the seconds remaining. It backs the public landing-page
// countdown and is deliberately not owner-scoped.
func (s *Service) Closest(ctx context.Context) (Trial, int64, error) {
	now := s.clock.Now()
	t, err := s.store.ClosestExpiry(ctx, now)
	if err != nil {
		return Trial{}, 0, err
	}

	t.Status = DeriveStatus(t, now)
	seconds := int64(math.Floor(t.ExpiresAt.Sub(now).Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	return t, seconds, nil
}

// RefreshStatuses rewrites the cached status column from current dates so
// external readers of the table see fresh values. Cancelled rows are
// untouched. Returns the number of rows checked.
func (s *Service) RefreshStatuses(ctx context.Context) (int, error) {
	return s.store.RefreshStatuses(ctx, s.clock.Now())
}
