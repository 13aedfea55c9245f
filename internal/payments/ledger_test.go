package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestLedgerRecordIntent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	ledger := NewLedger(mock)
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs("pi_123", int64(12000), "usd").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := ledger.RecordIntent(context.Background(), &Intent{ID: "pi_123", Amount: 12000, Currency: "usd"}); err != nil {
		t.Fatalf("RecordIntent returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLedgerMarkSucceeded(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	ledger := NewLedger(mock)
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs("pi_123", "appt_1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := ledger.MarkSucceeded(context.Background(), "pi_123", "appt_1"); err != nil {
		t.Fatalf("MarkSucceeded returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLedgerGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	ledger := NewLedger(mock)
	mock.ExpectQuery("SELECT intent_id").
		WithArgs("pi_missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = ledger.Get(context.Background(), "pi_missing")
	if !errors.Is(err, ErrIntentNotFound) {
		t.Fatalf("expected ErrIntentNotFound, got %v", err)
	}
}

func TestLedgerGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	ledger := NewLedger(mock)
	mock.ExpectQuery("SELECT intent_id").
		WithArgs("pi_123").
		WillReturnRows(pgxmock.NewRows([]string{"intent_id", "appointment_id", "amount", "currency", "status"}).
			AddRow("pi_123", "appt_1", int64(12000), "usd", "succeeded"))

	row, err := ledger.Get(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if row.AppointmentID != "appt_1" || row.Status != "succeeded" {
		t.Fatalf("unexpected row %+v", row)
	}
}
