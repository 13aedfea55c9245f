package doctors

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// Store persists the verified doctor directory in DynamoDB.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("doctors: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("doctors: table name cannot be empty")
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

// Put writes the doctor profile. Approval may legitimately overwrite a prior
// profile for the same user, so no existence guard is applied.
func (s *Store) Put(ctx context.Context, doc *Doctor) error {
	if doc == nil {
		return fmt.Errorf("doctors: doctor cannot be nil")
	}
	if doc.ID == "" {
		return ErrMissingDoctorID
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if doc.CreatedAt == "" {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return fmt.Errorf("doctors: failed to marshal doctor: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("doctors: failed to persist doctor: %w", err)
	}
	return nil
}

// Get fetches a doctor by id.
func (s *Store) Get(ctx context.Context, doctorID string) (*Doctor, error) {
	if doctorID == "" {
		return nil, ErrMissingDoctorID
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"doctorId": &types.AttributeValueMemberS{Value: doctorID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("doctors: failed to fetch doctor: %w", err)
	}
	if out.Item == nil {
		return nil, ErrDoctorNotFound
	}

	var doc Doctor
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, fmt.Errorf("doctors: failed to decode doctor: %w", err)
	}
	return &doc, nil
}

// List scans the directory for verified doctors, optionally filtered by
// specialization equality. Name substring matching happens client-side since
// the store is case-sensitive.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]*Doctor, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("isVerified = :verified"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":verified": &types.AttributeValueMemberBOOL{Value: true},
		},
	}
	if filter.Specialization != "" {
		input.FilterExpression = aws.String("isVerified = :verified AND specialization = :spec")
		input.ExpressionAttributeValues[":spec"] = &types.AttributeValueMemberS{Value: filter.Specialization}
	}
	if filter.Limit > 0 {
		input.Limit = aws.Int32(filter.Limit)
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("doctors: failed to list doctors: %w", err)
	}

	docs := make([]*Doctor, 0, len(out.Items))
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	for _, item := range out.Items {
		var doc Doctor
		if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
			return nil, fmt.Errorf("doctors: failed to decode doctor: %w", err)
		}
		if query != "" && !strings.Contains(strings.ToLower(doc.Name), query) {
			continue
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

// UpdateAvailability replaces the doctor's weekly availability slots.
func (s *Store) UpdateAvailability(ctx context.Context, doctorID string, slots []AvailabilitySlot) error {
	if doctorID == "" {
		return ErrMissingDoctorID
	}
	attr, err := attributevalue.Marshal(slots)
	if err != nil {
		return fmt.Errorf("doctors: failed to marshal availability: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"doctorId": &types.AttributeValueMemberS{Value: doctorID},
		},
		UpdateExpression: aws.String("SET availability = :slots, updatedAt = :updated"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":slots":   attr,
			":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_exists(doctorId)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrDoctorNotFound
		}
		return fmt.Errorf("doctors: failed to update availability: %w", err)
	}
	return nil
}
