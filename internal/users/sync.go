package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// Directory is the store surface the sync service needs.
type Directory interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, userID string) (*User, error)
	UpdateDisplayFields(ctx context.Context, rec IdentityRecord) error
	Deactivate(ctx context.Context, userID string) error
}

// SyncService mirrors identity-provider accounts into the user directory.
// It is the idempotent fallback behind both the identity webhook and the
// client's mount-time sync call, so a User record exists before anything
// references it.
type SyncService struct {
	store  Directory
	logger *logging.Logger
}

// NewSyncService creates a directory sync service.
func NewSyncService(store Directory, logger *logging.Logger) *SyncService {
	if store == nil {
		panic("users: directory store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{store: store, logger: logger}
}

// Sync upserts the identity record: create with the patient default role when
// absent, otherwise refresh only the denormalized display fields. Returns
// whether a record was created.
func (s *SyncService) Sync(ctx context.Context, rec IdentityRecord) (bool, error) {
	if err := rec.Validate(); err != nil {
		return false, err
	}

	_, err := s.store.Get(ctx, rec.ID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		user := &User{
			ID:        rec.ID,
			Name:      rec.Name,
			Email:     rec.Email,
			Phone:     rec.Phone,
			AvatarURL: rec.AvatarURL,
			Role:      RolePatient,
			IsActive:  true,
		}
		if err := s.store.Create(ctx, user); err != nil {
			return false, fmt.Errorf("users: sync create: %w", err)
		}
		s.logger.Info("user directory record created", "user_id", rec.ID)
		return true, nil
	case err != nil:
		return false, fmt.Errorf("users: sync lookup: %w", err)
	}

	if err := s.store.UpdateDisplayFields(ctx, rec); err != nil {
		return false, fmt.Errorf("users: sync update: %w", err)
	}
	return false, nil
}

// Deactivate handles account deletion upstream: the record stays, flagged
// inactive. Deactivating an unknown user is not an error; the webhook can
// arrive before the directory ever saw the account.
func (s *SyncService) Deactivate(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if err := s.store.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn("deactivate for unknown user", "user_id", userID)
			return nil
		}
		return fmt.Errorf("users: deactivate: %w", err)
	}
	return nil
}
