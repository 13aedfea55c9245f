package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bookmydoc/bookmydoc-server/internal/observability/metrics"
	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

type bookingStore interface {
	Book(ctx context.Context, appt *Appointment) error
	Get(ctx context.Context, appointmentID string) (*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error)
	ListDoctorDay(ctx context.Context, doctorID, date string) ([]*Appointment, error)
	Cancel(ctx context.Context, appt *Appointment, now time.Time) error
}

// paymentLedger records the gateway outcome against the booking.
type paymentLedger interface {
	MarkSucceeded(ctx context.Context, intentID, appointmentID string) error
}

// eventOutbox stages lifecycle events for asynchronous delivery.
type eventOutbox interface {
	Enqueue(ctx context.Context, eventType, aggregateID string, payload any) error
}

// confirmationSender delivers the booking confirmation email.
type confirmationSender interface {
	SendBookingConfirmation(ctx context.Context, appt *Appointment) error
}

// videoTokens mints join handles for an existing room.
type videoTokens interface {
	MeetingToken(ctx context.Context, roomID, userID, userName string) (string, error)
}

// Service orchestrates booking, cancellation, and video join on top of the
// fan-out store. The ledger, outbox, and email sender are best-effort after
// the storage transaction commits; the store is the source of truth.
type Service struct {
	store   bookingStore
	ledger  paymentLedger
	outbox  eventOutbox
	emails  confirmationSender
	video   videoTokens
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// ServiceDeps carries the collaborators for NewService. Only Store is
// required; the rest degrade to no-ops when nil.
type ServiceDeps struct {
	Store   bookingStore
	Ledger  paymentLedger
	Outbox  eventOutbox
	Emails  confirmationSender
	Video   videoTokens
	Metrics *metrics.BookingMetrics
	Logger  *logging.Logger
}

// NewService creates the appointment service.
func NewService(deps ServiceDeps) *Service {
	if deps.Store == nil {
		panic("appointments: store required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	return &Service{
		store:   deps.Store,
		ledger:  deps.Ledger,
		outbox:  deps.Outbox,
		emails:  deps.Emails,
		video:   deps.Video,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		now:     time.Now,
	}
}

// JoinGrant is the handle returned to an eligible participant.
type JoinGrant struct {
	Token  string `json:"token"`
	RoomID string `json:"roomId"`
}

// Book validates the request and commits the four-location fan-out. The
// returned id resolves from the global table, the doctor copy, the patient
// copy, and the per-date index.
func (s *Service) Book(ctx context.Context, req BookingRequest) (string, error) {
	if err := req.Validate(); err != nil {
		s.metrics.ObserveBooking("rejected", string(req.Type))
		return "", err
	}

	now := s.now().UTC()
	stamp := now.Format(time.RFC3339Nano)
	appt := &Appointment{
		ID:                   uuid.NewString(),
		DoctorID:             req.DoctorID,
		DoctorName:           req.DoctorName,
		DoctorSpecialization: req.DoctorSpecialization,
		PatientID:            req.PatientID,
		PatientName:          req.PatientName,
		PatientEmail:         req.PatientEmail,
		Date:                 req.Date,
		Time:                 req.Time,
		Type:                 req.Type,
		Status:               StatusConfirmed,
		PatientNotes:         req.PatientNotes,
		ConsultationFee:      req.ConsultationFee,
		PaymentStatus:        "paid",
		PaymentIntentID:      req.PaymentIntentID,
		VideoRoomID:          req.VideoRoomID,
		CreatedAt:            stamp,
		UpdatedAt:            stamp,
	}

	start := time.Now()
	if err := s.store.Book(ctx, appt); err != nil {
		s.metrics.ObserveBooking("failed", string(req.Type))
		return "", err
	}
	s.metrics.ObserveBooking("confirmed", string(req.Type))
	s.metrics.ObserveBookingLatency(time.Since(start).Seconds())

	if s.ledger != nil {
		if err := s.ledger.MarkSucceeded(ctx, appt.PaymentIntentID, appt.ID); err != nil {
			s.logger.Error("failed to mark payment succeeded", "error", err, "payment_intent_id", appt.PaymentIntentID, "appointment_id", appt.ID)
		}
	}
	if s.outbox != nil {
		if err := s.outbox.Enqueue(ctx, "appointment.booked", appt.ID, appt); err != nil {
			s.logger.Error("failed to enqueue booking event", "error", err, "appointment_id", appt.ID)
		}
	}
	if s.emails != nil {
		if err := s.emails.SendBookingConfirmation(ctx, appt); err != nil {
			s.logger.Error("failed to send booking confirmation", "error", err, "appointment_id", appt.ID)
		}
	}

	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
		"patient_id", appt.PatientID,
		"date", appt.Date,
		"type", appt.Type)
	return appt.ID, nil
}

// Get returns the canonical record.
func (s *Service) Get(ctx context.Context, appointmentID string) (*Appointment, error) {
	return s.store.Get(ctx, appointmentID)
}

// ListByPatient returns the patient's appointments.
func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	return s.store.ListByPatient(ctx, patientID)
}

// ListByDoctor returns the doctor's appointments, narrowed to one day via
// the per-date index when date is set.
func (s *Service) ListByDoctor(ctx context.Context, doctorID, date string) ([]*Appointment, error) {
	if date != "" {
		return s.store.ListDoctorDay(ctx, doctorID, date)
	}
	return s.store.ListByDoctor(ctx, doctorID)
}

// Cancel performs a patient-initiated cancellation. Only confirmed
// appointments with a future start qualify; everything else gets
// ErrNotCancellable. Cancellation is terminal.
func (s *Service) Cancel(ctx context.Context, appointmentID string) error {
	appt, err := s.store.Get(ctx, appointmentID)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	if !Cancellable(appt, now) {
		s.metrics.ObserveCancellation("rejected")
		return ErrNotCancellable
	}

	if err := s.store.Cancel(ctx, appt, now); err != nil {
		if errors.Is(err, ErrNotCancellable) {
			s.metrics.ObserveCancellation("rejected")
		} else {
			s.metrics.ObserveCancellation("failed")
		}
		return err
	}
	s.metrics.ObserveCancellation("cancelled")

	if s.outbox != nil {
		if err := s.outbox.Enqueue(ctx, "appointment.cancelled", appt.ID, map[string]string{
			"appointmentId": appt.ID,
			"doctorId":      appt.DoctorID,
			"patientId":     appt.PatientID,
			"cancelledAt":   now.Format(time.RFC3339Nano),
		}); err != nil {
			s.logger.Error("failed to enqueue cancellation event", "error", err, "appointment_id", appt.ID)
		}
	}

	s.logger.Info("appointment cancelled", "appointment_id", appt.ID)
	return nil
}

// Join re-evaluates the eligibility window and, when open, exchanges the
// appointment's room id for a meeting token. A joinable appointment without
// a room is terminal: no room will ever appear.
func (s *Service) Join(ctx context.Context, appointmentID, userID, userName string) (*JoinGrant, error) {
	appt, err := s.store.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !CanJoin(appt, s.now().UTC()) {
		return nil, ErrNotJoinable
	}
	if appt.VideoRoomID == "" {
		return nil, ErrVideoUnavailable
	}
	if s.video == nil {
		return nil, ErrVideoUnavailable
	}

	token, err := s.video.MeetingToken(ctx, appt.VideoRoomID, userID, userName)
	if err != nil {
		return nil, err
	}
	return &JoinGrant{Token: token, RoomID: appt.VideoRoomID}, nil
}
