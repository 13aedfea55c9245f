package applications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookmydoc/bookmydoc-server/internal/doctors"
	"github.com/bookmydoc/bookmydoc-server/internal/users"
	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// applicationStore is the persistence surface the workflow needs.
type applicationStore interface {
	Create(ctx context.Context, app *Application) error
	Get(ctx context.Context, applicationID string) (*Application, error)
	ListByStatus(ctx context.Context, status Status) ([]*Application, error)
	Decide(ctx context.Context, applicationID string, status Status, reviewer, comment string) error
}

// userDirectory mutates directory roles during the application lifecycle.
type userDirectory interface {
	Get(ctx context.Context, userID string) (*users.User, error)
	SetRoleAndApplication(ctx context.Context, userID string, role users.Role, applicationID string) error
}

// doctorDirectory promotes approved applicants.
type doctorDirectory interface {
	Put(ctx context.Context, doc *doctors.Doctor) error
}

// Service runs the doctor application workflow: intake, pending review, and
// the admin approve/reject decision with its role side effects.
type Service struct {
	store   applicationStore
	users   userDirectory
	doctors doctorDirectory
	logger  *logging.Logger
}

// NewService creates the application workflow service.
func NewService(store applicationStore, userDir userDirectory, doctorDir doctorDirectory, logger *logging.Logger) *Service {
	if store == nil {
		panic("applications: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:   store,
		users:   userDir,
		doctors: doctorDir,
		logger:  logger,
	}
}

// Submit validates and persists a pending application. When the submission is
// associated with a known user, that user's role moves to doctor-pending and
// the application back-reference is stored. Returns the application id.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	app := &Application{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		FullName:        req.FullName,
		Email:           req.Email,
		Specialization:  req.Specialization,
		ExperienceYears: req.ExperienceYears,
		LicenseNumber:   req.LicenseNumber,
		ClinicName:      req.ClinicName,
		ClinicAddress:   req.ClinicAddress,
		ConsultationFee: req.ConsultationFee,
		Availability:    req.Availability,
	}
	if err := s.store.Create(ctx, app); err != nil {
		return "", fmt.Errorf("applications: submit: %w", err)
	}

	if req.UserID != "" && s.users != nil {
		if _, err := s.users.Get(ctx, req.UserID); err == nil {
			if err := s.users.SetRoleAndApplication(ctx, req.UserID, users.RoleDoctorPending, app.ID); err != nil {
				s.logger.Error("failed to flag applicant as doctor-pending", "error", err, "user_id", req.UserID)
			}
		} else if !errors.Is(err, users.ErrUserNotFound) {
			s.logger.Error("applicant lookup failed", "error", err, "user_id", req.UserID)
		}
	}

	s.logger.Info("doctor application submitted", "application_id", app.ID, "user_id", req.UserID)
	return app.ID, nil
}

// Get returns the application by id.
func (s *Service) Get(ctx context.Context, applicationID string) (*Application, error) {
	return s.store.Get(ctx, applicationID)
}

// List returns applications filtered by status.
func (s *Service) List(ctx context.Context, status Status) ([]*Application, error) {
	return s.store.ListByStatus(ctx, status)
}

// Approve promotes the applicant: the application becomes approved, a Doctor
// record keyed by the applicant's user id is created with zeroed rating
// aggregates, and the user's role becomes doctor. Only pending applications
// can be approved.
func (s *Service) Approve(ctx context.Context, applicationID, reviewer string) error {
	app, err := s.store.Get(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.Status != StatusPending {
		return ErrNotPending
	}

	if err := s.store.Decide(ctx, applicationID, StatusApproved, reviewer, ""); err != nil {
		return err
	}

	doc := &doctors.Doctor{
		ID:              app.UserID,
		Name:            app.FullName,
		Email:           app.Email,
		Specialization:  app.Specialization,
		ExperienceYears: app.ExperienceYears,
		LicenseNumber:   app.LicenseNumber,
		ClinicName:      app.ClinicName,
		ClinicAddress:   app.ClinicAddress,
		ConsultationFee: app.ConsultationFee,
		Availability:    app.Availability,
		IsVerified:      true,
		Rating:          0,
		RatingCount:     0,
	}
	if app.UserID == "" {
		// Applications submitted before the applicant ever signed in have no
		// directory account to key the profile by.
		doc.ID = app.ID
	}
	if err := s.doctors.Put(ctx, doc); err != nil {
		return fmt.Errorf("applications: promote doctor: %w", err)
	}

	if app.UserID != "" && s.users != nil {
		if err := s.users.SetRoleAndApplication(ctx, app.UserID, users.RoleDoctor, app.ID); err != nil {
			return fmt.Errorf("applications: promote role: %w", err)
		}
	}

	s.logger.Info("doctor application approved", "application_id", applicationID, "reviewer", reviewer)
	return nil
}

// Reject records the rejection and reverts the applicant's role to patient,
// clearing the application back-reference. Only pending applications can be
// rejected.
func (s *Service) Reject(ctx context.Context, applicationID, reviewer, comment string) error {
	app, err := s.store.Get(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.Status != StatusPending {
		return ErrNotPending
	}

	if err := s.store.Decide(ctx, applicationID, StatusRejected, reviewer, comment); err != nil {
		return err
	}

	if app.UserID != "" && s.users != nil {
		if err := s.users.SetRoleAndApplication(ctx, app.UserID, users.RolePatient, ""); err != nil {
			return fmt.Errorf("applications: revert role: %w", err)
		}
	}

	s.logger.Info("doctor application rejected", "application_id", applicationID, "reviewer", reviewer)
	return nil
}
