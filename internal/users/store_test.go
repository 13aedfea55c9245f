package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

func TestStoreCreateSetsDefaultsAndGuard(t *testing.T) {
	mock := &mockDynamo{}
	store := NewStore(mock, "users", logging.Default())

	user := &User{ID: "user_1", Name: "Ada Patel", Role: RolePatient, IsActive: true}
	if err := store.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if mock.putInput == nil {
		t.Fatal("expected PutItem to be called")
	}
	if expr := mock.putInput.ConditionExpression; expr == nil || *expr != "attribute_not_exists(userId)" {
		t.Fatalf("expected overwrite guard, got %v", expr)
	}

	var stored User
	if err := attributevalue.UnmarshalMap(mock.putInput.Item, &stored); err != nil {
		t.Fatalf("failed to unmarshal stored user: %v", err)
	}
	if stored.CreatedAt == "" || stored.UpdatedAt == "" {
		t.Fatal("expected timestamps to be populated")
	}
	if stored.Role != RolePatient {
		t.Fatalf("expected patient role, got %s", stored.Role)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	mock := &mockDynamo{getOutput: &dynamodb.GetItemOutput{}}
	store := NewStore(mock, "users", logging.Default())

	_, err := store.Get(context.Background(), "user_missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStoreUpdateDisplayFieldsLeavesRoleAlone(t *testing.T) {
	mock := &mockDynamo{}
	store := NewStore(mock, "users", logging.Default())

	rec := IdentityRecord{ID: "user_1", Name: "Ada P.", Email: "ada@example.com", Phone: "+15550100", AvatarURL: "https://img.example/a.png"}
	if err := store.UpdateDisplayFields(context.Background(), rec); err != nil {
		t.Fatalf("UpdateDisplayFields returned error: %v", err)
	}

	if len(mock.updateInputs) != 1 {
		t.Fatalf("expected 1 update, got %d", len(mock.updateInputs))
	}
	update := mock.updateInputs[0]
	expr := *update.UpdateExpression
	for _, forbidden := range []string{"role", "medicalProfile", "isActive"} {
		if containsWord(expr, forbidden) {
			t.Fatalf("display-field update must not touch %q: %s", forbidden, expr)
		}
	}
	if update.ExpressionAttributeValues[":email"].(*types.AttributeValueMemberS).Value != "ada@example.com" {
		t.Fatalf("expected email value bound, got %v", update.ExpressionAttributeValues[":email"])
	}
}

func TestStoreSetRoleAndApplicationClearsReference(t *testing.T) {
	mock := &mockDynamo{}
	store := NewStore(mock, "users", logging.Default())

	if err := store.SetRoleAndApplication(context.Background(), "user_1", RolePatient, ""); err != nil {
		t.Fatalf("SetRoleAndApplication returned error: %v", err)
	}
	expr := *mock.updateInputs[0].UpdateExpression
	if !containsWord(expr, "REMOVE") {
		t.Fatalf("expected REMOVE clause for cleared reference, got %s", expr)
	}
}

func TestStoreDeactivateOnMissingUser(t *testing.T) {
	mock := &mockDynamo{updateErr: &types.ConditionalCheckFailedException{}}
	store := NewStore(mock, "users", logging.Default())

	err := store.Deactivate(context.Background(), "user_gone")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func containsWord(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

type mockDynamo struct {
	putInput     *dynamodb.PutItemInput
	putErr       error
	updateInputs []*dynamodb.UpdateItemInput
	updateErr    error
	getOutput    *dynamodb.GetItemOutput
	getErr       error
}

func (m *mockDynamo) PutItem(ctx context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = input
	return &dynamodb.PutItemOutput{}, m.putErr
}

func (m *mockDynamo) GetItem(ctx context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOutput == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOutput, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, input *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, input)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}
