package trial

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const trialColumns = `id, owner_id, service_name, email, card_last4, started_at, expires_at,
		status, cancel_url, notify_days_before, category, cost, notes, alerts, created_at, updated_at`

// Repository persists trials in PostgreSQL. When scoped, every query filters
// by owner and a foreign id behaves exactly like a missing one.
type Repository struct {
	db     *sql.DB
	scoped bool
}

func NewRepository(db *sql.DB, scoped bool) *Repository {
	return &Repository{db: db, scoped: scoped}
}

func (r *Repository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]Trial, error) {
	query := `SELECT ` + trialColumns + ` FROM trials ORDER BY expires_at ASC`
	args := []any{}
	if r.scoped {
		query = `SELECT ` + trialColumns + ` FROM trials WHERE owner_id = $1 ORDER BY expires_at ASC`
		args = append(args, owner)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trials: %w", err)
	}
	defer rows.Close()

	var trials []Trial
	for rows.Next() {
		t, err := scanTrial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		trials = append(trials, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trials: %w", err)
	}

	return trials, nil
}

func (r *Repository) GetByID(ctx context.Context, id, owner uuid.UUID) (Trial, error) {
	query := `SELECT ` + trialColumns + ` FROM trials WHERE id = $1`
	args := []any{id}
	if r.scoped {
		query += ` AND owner_id = $2`
		args = append(args, owner)
	}

	t, err := scanTrial(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trial{}, ErrNotFound
		}
		return Trial{}, fmt.Errorf("select trial: %w", err)
	}

	return t, nil
}

func (r *Repository) Upsert(ctx context.Context, m Mutation, owner uuid.UUID, cached Status, now time.Time) (Trial, error) {
	// Full-payload upsert. The alerts column is deliberately absent from
	// the conflict update: mutation input carries no alerts, and an edit
	// must not wipe the ones already attached.
	query := `
		INSERT INTO trials (id, owner_id, service_name, email, card_last4, started_at, expires_at,
			status, cancel_url, notify_days_before, category, cost, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			service_name = EXCLUDED.service_name,
			email = EXCLUDED.email,
			card_last4 = EXCLUDED.card_last4,
			started_at = EXCLUDED.started_at,
			expires_at = EXCLUDED.expires_at,
			status = EXCLUDED.status,
			cancel_url = EXCLUDED.cancel_url,
			notify_days_before = EXCLUDED.notify_days_before,
			category = EXCLUDED.category,
			cost = EXCLUDED.cost,
			notes = EXCLUDED.notes,
			updated_at = $14`
	if r.scoped {
		// An id collision under another owner yields no row instead of
		// hijacking their record.
		query += `
		WHERE trials.owner_id IS NOT DISTINCT FROM EXCLUDED.owner_id`
	}
	query += `
		RETURNING ` + trialColumns

	ownerArg := uuid.NullUUID{UUID: owner, Valid: r.scoped && owner != uuid.Nil}

	t, err := scanTrial(r.db.QueryRowContext(ctx, query,
		m.ID,
		ownerArg,
		m.ServiceName,
		m.Email,
		m.CardLast4,
		m.StartedAt,
		m.ExpiresAt,
		string(cached),
		nullString(m.CancelURL),
		m.NotifyDaysBefore,
		m.Category,
		m.Cost,
		nullString(m.Notes),
		now,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trial{}, ErrNotFound
		}
		return Trial{}, fmt.Errorf("upsert trial: %w", err)
	}

	return t, nil
}

func (r *Repository) DeleteByID(ctx context.Context, id, owner uuid.UUID) error {
	query := `DELETE FROM trials WHERE id = $1`
	args := []any{id}
	if r.scoped {
		query += ` AND owner_id = $2`
		args = append(args, owner)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete trial: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ClosestExpiry returns the record with the nearest future expiry across all
// owners. Future expiry already rules out expired rows, so only the sticky
// cancelled flag needs checking.
func (r *Repository) ClosestExpiry(ctx context.Context, now time.Time) (Trial, error) {
	query := `SELECT ` + trialColumns + `
		FROM trials
		WHERE status <> 'cancelled' AND expires_at > $1
		ORDER BY expires_at ASC
		LIMIT 1`

	t, err := scanTrial(r.db.QueryRowContext(ctx, query, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trial{}, ErrNotFound
		}
		return Trial{}, fmt.Errorf("select closest trial: %w", err)
	}

	return t, nil
}

// RefreshStatuses recomputes the cached status column for every
// non-cancelled row in one statement, mirroring DeriveStatus: floored whole
// days until expiry, notice window inclusive.
func (r *Repository) RefreshStatuses(ctx context.Context, now time.Time) (int, error) {
	const query = `
		UPDATE trials SET
			status = CASE
				WHEN floor(extract(epoch FROM (expires_at - $1::timestamptz)) / 86400) < 0 THEN 'expired'
				WHEN floor(extract(epoch FROM (expires_at - $1::timestamptz)) / 86400) <= notify_days_before THEN 'expiring'
				ELSE 'active'
			END,
			updated_at = now()
		WHERE status <> 'cancelled'`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("refresh trial statuses: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("refresh rows affected: %w", err)
	}
	return int(rows), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrial(row rowScanner) (Trial, error) {
	var (
		t         Trial
		ownerID   uuid.NullUUID
		cancelURL sql.NullString
		notes     sql.NullString
		alertsRaw []byte
	)

	if err := row.Scan(
		&t.ID,
		&ownerID,
		&t.ServiceName,
		&t.Email,
		&t.CardLast4,
		&t.StartedAt,
		&t.ExpiresAt,
		&t.Status,
		&cancelURL,
		&t.NotifyDaysBefore,
		&t.Category,
		&t.Cost,
		&notes,
		&alertsRaw,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return Trial{}, err
	}

	if ownerID.Valid {
		t.OwnerID = ownerID.UUID
	}
	if cancelURL.Valid {
		t.CancelURL = &cancelURL.String
	}
	if notes.Valid {
		t.Notes = &notes.String
	}

	t.Alerts = []Alert{}
	if len(alertsRaw) > 0 {
		if err := json.Unmarshal(alertsRaw, &t.Alerts); err != nil {
			return Trial{}, fmt.Errorf("decode alerts: %w", err)
		}
	}

	return t, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
