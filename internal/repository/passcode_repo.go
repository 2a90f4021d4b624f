package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agri_advisor/internal/model"

	"github.com/jackc/pgx/v5"
)

// PasscodeRepository stores pending one-time passcodes keyed by phone.
type PasscodeRepository interface {
	// Put stores p, replacing any pending passcode for the same phone and
	// resetting its attempt count. Passcodes already expired at p.CreatedAt
	// are purged.
	Put(ctx context.Context, p *model.PendingPasscode) error
	Get(ctx context.Context, phone string) (*model.PendingPasscode, error)
	// Consume deletes the pending passcode for phone only if it still holds
	// code and has not expired at now. It reports whether a row was deleted;
	// of several concurrent callers at most one gets true.
	Consume(ctx context.Context, phone, code string, now time.Time) (bool, error)
	// RecordFailedAttempt counts a wrong code against the pending passcode
	// and discards it once max attempts are reached. It returns the new count,
	// or 0 when nothing is pending.
	RecordFailedAttempt(ctx context.Context, phone string, max int) (int, error)
}

type passcodeRepository struct {
	db DBTX
}

// NewPasscodeRepository creates a new Postgres-backed PasscodeRepository
func NewPasscodeRepository(db DBTX) PasscodeRepository {
	return &passcodeRepository{db: db}
}

func (r *passcodeRepository) Put(ctx context.Context, p *model.PendingPasscode) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM pending_passcodes WHERE expires_at < $1`, p.CreatedAt); err != nil {
		return fmt.Errorf("failed to purge expired passcodes: %w", err)
	}

	sql := `INSERT INTO pending_passcodes (phone, code, expires_at, attempts, created_at)
            VALUES ($1, $2, $3, 0, $4)
            ON CONFLICT (phone) DO UPDATE
            SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, attempts = 0, created_at = EXCLUDED.created_at`
	if _, err := r.db.Exec(ctx, sql, p.Phone, p.Code, p.ExpiresAt, p.CreatedAt); err != nil {
		return fmt.Errorf("failed to store passcode: %w", err)
	}
	return nil
}

func (r *passcodeRepository) Get(ctx context.Context, phone string) (*model.PendingPasscode, error) {
	p := &model.PendingPasscode{}
	sql := `SELECT phone, code, expires_at, attempts, created_at FROM pending_passcodes WHERE phone = $1`
	err := r.db.QueryRow(ctx, sql, phone).Scan(&p.Phone, &p.Code, &p.ExpiresAt, &p.Attempts, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find passcode: %w", err)
	}
	return p, nil
}

func (r *passcodeRepository) Consume(ctx context.Context, phone, code string, now time.Time) (bool, error) {
	sql := `DELETE FROM pending_passcodes WHERE phone = $1 AND code = $2 AND expires_at >= $3`
	tag, err := r.db.Exec(ctx, sql, phone, code, now)
	if err != nil {
		return false, fmt.Errorf("failed to consume passcode: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *passcodeRepository) RecordFailedAttempt(ctx context.Context, phone string, max int) (int, error) {
	var attempts int
	sql := `UPDATE pending_passcodes SET attempts = attempts + 1 WHERE phone = $1 RETURNING attempts`
	if err := r.db.QueryRow(ctx, sql, phone).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to record passcode attempt: %w", err)
	}

	if max > 0 && attempts >= max {
		// A passcode issued in the meantime starts at zero attempts and survives.
		if _, err := r.db.Exec(ctx, `DELETE FROM pending_passcodes WHERE phone = $1 AND attempts >= $2`, phone, max); err != nil {
			return attempts, fmt.Errorf("failed to discard passcode: %w", err)
		}
	}
	return attempts, nil
}
