package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type sqsAPI interface {
	SendMessage(context.Context, *sqs.SendMessageInput, ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher delivers outbox entries to an SQS queue for downstream
// consumers (reminders, analytics).
type SQSPublisher struct {
	client   sqsAPI
	queueURL string
}

// NewSQSPublisher creates the publisher.
func NewSQSPublisher(client sqsAPI, queueURL string) *SQSPublisher {
	if client == nil {
		panic("events: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("events: SQS queue URL cannot be empty")
	}
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// Handle publishes one entry as a JSON envelope.
func (p *SQSPublisher) Handle(ctx context.Context, entry OutboxEntry) error {
	body, err := json.Marshal(struct {
		ID          string          `json:"id"`
		Type        string          `json:"type"`
		AggregateID string          `json:"aggregateId"`
		OccurredAt  string          `json:"occurredAt"`
		Payload     json.RawMessage `json:"payload"`
	}{
		ID:          entry.ID.String(),
		Type:        entry.Type,
		AggregateID: entry.AggregateID,
		OccurredAt:  entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		Payload:     entry.Payload,
	})
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("events: failed to publish %s: %w", entry.Type, err)
	}
	return nil
}
