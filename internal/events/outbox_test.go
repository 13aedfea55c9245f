package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestOutboxStoreFlow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := NewOutboxStore(mock)

	mock.ExpectExec("INSERT INTO appointment_outbox").
		WithArgs(pgxmock.AnyArg(), "appt_1", "appointment.booked", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	if err := store.Enqueue(context.Background(), "appointment.booked", "appt_1", map[string]string{"doctorId": "doc_1"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	now := time.Now().UTC()
	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "aggregate_id", "type", "payload", "created_at"}).
		AddRow(id, "appt_1", "appointment.booked", []byte(`{"doctorId":"doc_1"}`), now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(10)).WillReturnRows(rows)

	entries, err := store.FetchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch pending failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id {
		t.Fatalf("unexpected entries: %#v", entries)
	}

	mock.ExpectExec("UPDATE appointment_outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := store.MarkDelivered(context.Background(), id)
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if !ok {
		t.Fatal("expected mark delivered to report success")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type mockSQS struct {
	sent []*sqs.SendMessageInput
	err  error
}

func (m *mockSQS) SendMessage(_ context.Context, input *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.sent = append(m.sent, input)
	return &sqs.SendMessageOutput{}, m.err
}

func TestSQSPublisherEnvelope(t *testing.T) {
	mock := &mockSQS{}
	publisher := NewSQSPublisher(mock, "https://sqs.test/queue")

	entry := OutboxEntry{
		ID:          uuid.New(),
		AggregateID: "appt_1",
		Type:        "appointment.cancelled",
		Payload:     json.RawMessage(`{"appointmentId":"appt_1"}`),
		CreatedAt:   time.Now().UTC(),
	}
	if err := publisher.Handle(context.Background(), entry); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(mock.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(mock.sent))
	}
	if aws.ToString(mock.sent[0].QueueUrl) != "https://sqs.test/queue" {
		t.Fatalf("wrong queue URL: %q", aws.ToString(mock.sent[0].QueueUrl))
	}

	var envelope struct {
		ID          string          `json:"id"`
		Type        string          `json:"type"`
		AggregateID string          `json:"aggregateId"`
		Payload     json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal([]byte(aws.ToString(mock.sent[0].MessageBody)), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Type != "appointment.cancelled" || envelope.AggregateID != "appt_1" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

type recordingHandler struct {
	handled []OutboxEntry
	err     error
}

func (h *recordingHandler) Handle(_ context.Context, entry OutboxEntry) error {
	h.handled = append(h.handled, entry)
	return h.err
}

func TestDelivererDrains(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "aggregate_id", "type", "payload", "created_at"}).
		AddRow(id, "appt_1", "appointment.booked", []byte(`{}`), time.Now().UTC())
	mock.ExpectQuery("SELECT id").WithArgs(int32(25)).WillReturnRows(rows)
	mock.ExpectExec("UPDATE appointment_outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	handler := &recordingHandler{}
	deliverer := NewDeliverer(NewOutboxStore(mock), handler, nil)
	deliverer.drain(context.Background())

	if len(handler.handled) != 1 || handler.handled[0].ID != id {
		t.Fatalf("expected the entry to be handled, got %#v", handler.handled)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
