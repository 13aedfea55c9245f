package applications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists doctor applications in DynamoDB.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("applications: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("applications: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Create inserts a pending application.
func (s *Store) Create(ctx context.Context, app *Application) error {
	if app == nil {
		return errors.New("applications: application cannot be nil")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	app.Status = StatusPending
	app.CreatedAt = now
	app.UpdatedAt = now

	item, err := attributevalue.MarshalMap(app)
	if err != nil {
		return fmt.Errorf("applications: failed to marshal application: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(applicationId)"),
	})
	if err != nil {
		return fmt.Errorf("applications: failed to persist application: %w", err)
	}
	return nil
}

// Get fetches an application by id.
func (s *Store) Get(ctx context.Context, applicationID string) (*Application, error) {
	if applicationID == "" {
		return nil, errors.New("applications: application id required")
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"applicationId": &types.AttributeValueMemberS{Value: applicationID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("applications: failed to fetch application: %w", err)
	}
	if out.Item == nil {
		return nil, ErrApplicationNotFound
	}

	var app Application
	if err := attributevalue.UnmarshalMap(out.Item, &app); err != nil {
		return nil, fmt.Errorf("applications: failed to decode application: %w", err)
	}
	return &app, nil
}

// ListByStatus scans applications with the given status; an empty status
// returns everything.
func (s *Store) ListByStatus(ctx context.Context, status Status) ([]*Application, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(s.tableName)}
	if status != "" {
		input.FilterExpression = aws.String("#status = :status")
		input.ExpressionAttributeNames = map[string]string{"#status": "status"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
		}
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("applications: failed to list applications: %w", err)
	}

	apps := make([]*Application, 0, len(out.Items))
	for _, item := range out.Items {
		var app Application
		if err := attributevalue.UnmarshalMap(item, &app); err != nil {
			return nil, fmt.Errorf("applications: failed to decode application: %w", err)
		}
		apps = append(apps, &app)
	}
	return apps, nil
}

// Decide records the admin decision. The conditional expression guarantees a
// decision is written exactly once: anything but a pending application fails
// with ErrNotPending.
func (s *Store) Decide(ctx context.Context, applicationID string, status Status, reviewer, comment string) error {
	if applicationID == "" {
		return errors.New("applications: application id required")
	}
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"applicationId": &types.AttributeValueMemberS{Value: applicationID},
		},
		UpdateExpression: aws.String("SET #status = :status, reviewedBy = :reviewer, reviewedAt = :reviewed, adminComment = :comment, updatedAt = :reviewed"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":   &types.AttributeValueMemberS{Value: string(status)},
			":reviewer": &types.AttributeValueMemberS{Value: reviewer},
			":reviewed": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
			":comment":  &types.AttributeValueMemberS{Value: comment},
			":pending":  &types.AttributeValueMemberS{Value: string(StatusPending)},
		},
		ConditionExpression: aws.String("attribute_exists(applicationId) AND #status = :pending"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotPending
		}
		return fmt.Errorf("applications: failed to decide application %s: %w", applicationID, err)
	}
	return nil
}
