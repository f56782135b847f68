package trial

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is the demo-mode store: seeded sample trials kept in memory,
// never owner-scoped. It satisfies Store so the rest of the service is
// oblivious to the missing database, and it doubles as the test fake.
type MemStore struct {
	mu     sync.Mutex
	trials map[uuid.UUID]Trial
	order  []uuid.UUID
}

func NewMemStore() *MemStore {
	return &MemStore{trials: make(map[uuid.UUID]Trial)}
}

// NewDemoStore returns a MemStore seeded with sample trials spread across
// the lifecycle states, dated relative to now.
func NewDemoStore(now time.Time) *MemStore {
	s := NewMemStore()

	cancelURL := func(u string) *string { return &u }
	notes := func(n string) *string { return &n }

	seeds := []Trial{
		{
			ServiceName:      "Netflix",
			Email:            "demo@trialwatch.dev",
			CardLast4:        "4242",
			StartedAt:        now.AddDate(0, 0, -28),
			ExpiresAt:        now.AddDate(0, 0, 2),
			Status:           StatusActive,
			CancelURL:        cancelURL("https://www.netflix.com/cancelplan"),
			NotifyDaysBefore: 3,
			Category:         "streaming",
			Cost:             15.49,
			Notes:            notes("download watchlist before cancelling"),
		},
		{
			ServiceName:      "Figma",
			Email:            "demo@trialwatch.dev",
			CardLast4:        "4242",
			StartedAt:        now.AddDate(0, 0, -3),
			ExpiresAt:        now.AddDate(0, 0, 27),
			Status:           StatusActive,
			NotifyDaysBefore: 5,
			Category:         "productivity",
			Cost:             12,
		},
		{
			ServiceName:      "AWS",
			Email:            "demo@trialwatch.dev",
			CardLast4:        "1881",
			StartedAt:        now.AddDate(0, -1, 0),
			ExpiresAt:        now.AddDate(0, 0, -1),
			Status:           StatusActive,
			CancelURL:        cancelURL("https://console.aws.amazon.com/billing"),
			NotifyDaysBefore: 7,
			Category:         "cloud",
			Cost:             0,
		},
		{
			ServiceName:      "Spotify",
			Email:            "demo@trialwatch.dev",
			CardLast4:        "0005",
			StartedAt:        now.AddDate(0, 0, -10),
			ExpiresAt:        now.AddDate(0, 0, 20),
			Status:           StatusCancelled,
			NotifyDaysBefore: 3,
			Category:         "streaming",
			Cost:             10.99,
		},
	}

	for _, seed := range seeds {
		seed.ID = uuid.New()
		seed.Alerts = []Alert{}
		seed.CreatedAt = now
		seed.UpdatedAt = now
		s.trials[seed.ID] = seed
		s.order = append(s.order, seed.ID)
	}

	return s
}

func (s *MemStore) ListByOwner(_ context.Context, _ uuid.UUID) ([]Trial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trials := make([]Trial, 0, len(s.order))
	for _, id := range s.order {
		trials = append(trials, s.trials[id])
	}
	return trials, nil
}

func (s *MemStore) GetByID(_ context.Context, id, _ uuid.UUID) (Trial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trials[id]
	if !ok {
		return Trial{}, ErrNotFound
	}
	return t, nil
}

func (s *MemStore) Upsert(_ context.Context, m Mutation, owner uuid.UUID, cached Status, now time.Time) (Trial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.trials[m.ID]
	if !exists {
		t = Trial{
			ID:        m.ID,
			OwnerID:   owner,
			Alerts:    []Alert{},
			CreatedAt: now,
		}
		s.order = append(s.order, m.ID)
	}

	t.ServiceName = m.ServiceName
	t.Email = m.Email
	t.CardLast4 = m.CardLast4
	t.StartedAt = m.StartedAt
	t.ExpiresAt = m.ExpiresAt
	t.Status = cached
	t.CancelURL = m.CancelURL
	t.NotifyDaysBefore = m.NotifyDaysBefore
	t.Category = m.Category
	t.Cost = m.Cost
	t.Notes = m.Notes
	t.UpdatedAt = now

	s.trials[m.ID] = t
	return t, nil
}

func (s *MemStore) DeleteByID(_ context.Context, id, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trials[id]; !ok {
		return ErrNotFound
	}
	delete(s.trials, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemStore) ClosestExpiry(_ context.Context, now time.Time) (Trial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		closest Trial
		found   bool
	)
	for _, id := range s.order {
		t := s.trials[id]
		if t.Status == StatusCancelled || !t.ExpiresAt.After(now) {
			continue
		}
		if !found || t.ExpiresAt.Before(closest.ExpiresAt) {
			closest = t
			found = true
		}
	}

	if !found {
		return Trial{}, ErrNotFound
	}
	return closest, nil
}

func (s *MemStore) RefreshStatuses(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	checked := 0
	for id, t := range s.trials {
		if t.Status == StatusCancelled {
			continue
		}
		t.Status = DeriveStatus(t, now)
		t.UpdatedAt = now
		s.trials[id] = t
		checked++
	}
	return checked, nil
}
