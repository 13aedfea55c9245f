package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the ledger uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerRow is one payment's lifecycle in Postgres.
type LedgerRow struct {
	IntentID      string
	AppointmentID string
	Amount        int64
	Currency      string
	Status        string
}

// Ledger records payment intents and their outcomes in Postgres. It is this
// service's audit trail; the gateway remains the source of truth for money.
type Ledger struct {
	pool PgxPool
}

// NewLedger creates a ledger over the given pool.
func NewLedger(pool PgxPool) *Ledger {
	if pool == nil {
		return nil
	}
	return &Ledger{pool: pool}
}

// RecordIntent inserts a staged intent as requires_confirmation. Re-staging
// the same intent id updates the amount instead of failing.
func (l *Ledger) RecordIntent(ctx context.Context, intent *Intent) error {
	query := `
		INSERT INTO payment_ledger (intent_id, amount, currency, status)
		VALUES ($1, $2, $3, 'requires_confirmation')
		ON CONFLICT (intent_id)
		DO UPDATE SET amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			updated_at = now()
	`
	if _, err := l.pool.Exec(ctx, query, intent.ID, intent.Amount, intent.Currency); err != nil {
		return fmt.Errorf("payments: record intent %s: %w", intent.ID, err)
	}
	return nil
}

// MarkSucceeded links the intent to its appointment and flips the row to
// succeeded. Intents never seen before get a row anyway so the trail stays
// complete when the gateway was staged elsewhere.
func (l *Ledger) MarkSucceeded(ctx context.Context, intentID, appointmentID string) error {
	query := `
		INSERT INTO payment_ledger (intent_id, appointment_id, status)
		VALUES ($1, $2, 'succeeded')
		ON CONFLICT (intent_id)
		DO UPDATE SET appointment_id = EXCLUDED.appointment_id,
			status = 'succeeded',
			updated_at = now()
	`
	if _, err := l.pool.Exec(ctx, query, intentID, appointmentID); err != nil {
		return fmt.Errorf("payments: mark intent %s succeeded: %w", intentID, err)
	}
	return nil
}

// Get returns the ledger row for an intent.
func (l *Ledger) Get(ctx context.Context, intentID string) (*LedgerRow, error) {
	query := `
		SELECT intent_id, COALESCE(appointment_id, ''), amount, currency, status
		FROM payment_ledger
		WHERE intent_id = $1
	`
	var row LedgerRow
	err := l.pool.QueryRow(ctx, query, intentID).Scan(&row.IntentID, &row.AppointmentID, &row.Amount, &row.Currency, &row.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("payments: get intent %s: %w", intentID, err)
	}
	return &row, nil
}
