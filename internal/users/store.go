package users

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
}

// Store persists the user directory in DynamoDB.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("users: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("users: table name cannot be empty")
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

// Create inserts a new user record, refusing to overwrite an existing one.
func (s *Store) Create(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("users: user cannot be nil")
	}
	if user.ID == "" {
		return ErrMissingUserID
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	user.CreatedAt = now
	user.UpdatedAt = now

	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("users: failed to marshal user: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(userId)"),
	})
	if err != nil {
		return fmt.Errorf("users: failed to persist user: %w", err)
	}
	return nil
}

// Get fetches a user by id.
func (s *Store) Get(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("users: failed to fetch user: %w", err)
	}
	if out.Item == nil {
		return nil, ErrUserNotFound
	}

	var user User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, fmt.Errorf("users: failed to decode user: %w", err)
	}
	return &user, nil
}

// UpdateDisplayFields refreshes the denormalized identity fields without
// touching role, medical profile, or preferences.
func (s *Store) UpdateDisplayFields(ctx context.Context, rec IdentityRecord) error {
	if rec.ID == "" {
		return ErrMissingUserID
	}
	return s.update(
		ctx,
		rec.ID,
		"SET #name = :name, email = :email, avatarUrl = :avatar, phone = :phone, updatedAt = :updated",
		map[string]string{"#name": "name"},
		map[string]types.AttributeValue{
			":name":    &types.AttributeValueMemberS{Value: rec.Name},
			":email":   &types.AttributeValueMemberS{Value: rec.Email},
			":avatar":  &types.AttributeValueMemberS{Value: rec.AvatarURL},
			":phone":   &types.AttributeValueMemberS{Value: rec.Phone},
			":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	)
}

// SetRoleAndApplication transitions the role and stores the back-reference to
// a doctor application. An empty applicationID clears the reference.
func (s *Store) SetRoleAndApplication(ctx context.Context, userID string, role Role, applicationID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if applicationID == "" {
		return s.update(
			ctx,
			userID,
			"SET #role = :role, updatedAt = :updated REMOVE applicationId",
			map[string]string{"#role": "role"},
			map[string]types.AttributeValue{
				":role":    &types.AttributeValueMemberS{Value: string(role)},
				":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
			},
		)
	}
	return s.update(
		ctx,
		userID,
		"SET #role = :role, applicationId = :app, updatedAt = :updated",
		map[string]string{"#role": "role"},
		map[string]types.AttributeValue{
			":role":    &types.AttributeValueMemberS{Value: string(role)},
			":app":     &types.AttributeValueMemberS{Value: applicationID},
			":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	)
}

// Deactivate flags a user inactive. Records are never deleted.
func (s *Store) Deactivate(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	return s.update(
		ctx,
		userID,
		"SET isActive = :inactive, updatedAt = :updated",
		nil,
		map[string]types.AttributeValue{
			":inactive": &types.AttributeValueMemberBOOL{Value: false},
			":updated":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	)
}

func (s *Store) update(ctx context.Context, userID, expression string, names map[string]string, values map[string]types.AttributeValue) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:          aws.String(expression),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(userId)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrUserNotFound
		}
		return fmt.Errorf("users: failed to update user %s: %w", userID, err)
	}
	return nil
}
