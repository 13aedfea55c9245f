package appointments

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrAppointmentNotFound is returned when no appointment exists for an id.
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")

	// ErrNotCancellable is returned when cancellation targets an appointment
	// that is not confirmed or whose start time has already passed.
	ErrNotCancellable = errors.New("appointments: appointment is not cancellable")

	// ErrNotJoinable is returned when the join window is closed or the
	// appointment is not a confirmed virtual visit.
	ErrNotJoinable = errors.New("appointments: appointment is not joinable")

	// ErrVideoUnavailable is returned when an otherwise joinable appointment
	// has no room assigned. This is terminal, not retryable.
	ErrVideoUnavailable = errors.New("appointments: video unavailable for this appointment")

	// ErrMissingPaymentRef is returned when a booking arrives without a
	// payment confirmation reference. Nothing is persisted.
	ErrMissingPaymentRef = errors.New("appointments: payment reference is required")

	// ErrMissingDoctor is returned when the booking names no doctor.
	ErrMissingDoctor = errors.New("appointments: doctor id is required")

	// ErrMissingPatient is returned when the booking names no patient.
	ErrMissingPatient = errors.New("appointments: patient id is required")

	// ErrMissingSchedule is returned when date or time is absent.
	ErrMissingSchedule = errors.New("appointments: appointment date and time are required")

	// ErrInvalidType is returned for an unknown appointment type.
	ErrInvalidType = errors.New("appointments: appointment type must be virtual or personal")

	// ErrNegativeFee is returned for a negative consultation fee.
	ErrNegativeFee = errors.New("appointments: consultation fee must be zero or greater")
)

// Type distinguishes video visits from in-clinic ones.
type Type string

const (
	TypeVirtual  Type = "virtual"
	TypePersonal Type = "personal"
)

// Status is the lifecycle state of an appointment. Transitions only move
// forward: confirmed appointments become cancelled or completed, never
// pending again.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Appointment is the canonical booking record. The same shape is written to
// the global table and to the doctor and patient copies so each view can be
// read without a join.
type Appointment struct {
	ID                   string  `dynamodbav:"appointmentId" json:"appointmentId"`
	DoctorID             string  `dynamodbav:"doctorId" json:"doctorId"`
	DoctorName           string  `dynamodbav:"doctorName" json:"doctorName"`
	DoctorSpecialization string  `dynamodbav:"doctorSpecialization,omitempty" json:"doctorSpecialization,omitempty"`
	PatientID            string  `dynamodbav:"patientId" json:"patientId"`
	PatientName          string  `dynamodbav:"patientName" json:"patientName"`
	PatientEmail         string  `dynamodbav:"patientEmail,omitempty" json:"patientEmail,omitempty"`
	Date                 string  `dynamodbav:"appointmentDate" json:"appointmentDate"`
	Time                 string  `dynamodbav:"appointmentTime" json:"appointmentTime"`
	Type                 Type    `dynamodbav:"appointmentType" json:"appointmentType"`
	Status               Status  `dynamodbav:"status" json:"status"`
	PatientNotes         string  `dynamodbav:"patientNotes,omitempty" json:"patientNotes,omitempty"`
	ConsultationFee      float64 `dynamodbav:"consultationFee" json:"consultationFee"`
	PaymentStatus        string  `dynamodbav:"paymentStatus" json:"paymentStatus"`
	PaymentIntentID      string  `dynamodbav:"paymentIntentId" json:"paymentIntentId"`
	VideoRoomID          string  `dynamodbav:"videoRoomId,omitempty" json:"videoRoomId,omitempty"`
	CreatedAt            string  `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt            string  `dynamodbav:"updatedAt" json:"updatedAt"`
	CancelledAt          string  `dynamodbav:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

// StartTime combines appointmentDate and appointmentTime into the scheduled
// start. All schedule math runs in UTC.
func (a *Appointment) StartTime() (time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointments: invalid schedule %q %q: %w", a.Date, a.Time, err)
	}
	return start, nil
}

// DayIndex is the per-doctor-per-date listing of appointment ids. It only
// ever accumulates; cancellation leaves the id in place.
type DayIndex struct {
	DoctorID       string   `dynamodbav:"doctorId" json:"doctorId"`
	Date           string   `dynamodbav:"appointmentDate" json:"appointmentDate"`
	AppointmentIDs []string `dynamodbav:"appointmentIds" json:"appointmentIds"`
	CreatedAt      string   `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt      string   `dynamodbav:"updatedAt" json:"updatedAt"`
}

// BookingRequest is the payload of a booking call made after the payment
// gateway reported success.
type BookingRequest struct {
	PaymentIntentID      string  `json:"paymentIntentId"`
	DoctorID             string  `json:"doctorId"`
	DoctorName           string  `json:"doctorName"`
	DoctorSpecialization string  `json:"doctorSpecialization"`
	PatientID            string  `json:"patientId"`
	PatientName          string  `json:"patientName"`
	PatientEmail         string  `json:"patientEmail"`
	Date                 string  `json:"appointmentDate"`
	Time                 string  `json:"appointmentTime"`
	Type                 Type    `json:"appointmentType"`
	PatientNotes         string  `json:"patientNotes"`
	ConsultationFee      float64 `json:"consultationFee"`
	VideoRoomID          string  `json:"videoRoomId"`
}

// Validate enforces the booking preconditions. A request that fails here is
// rejected before anything is written.
func (r *BookingRequest) Validate() error {
	if strings.TrimSpace(r.PaymentIntentID) == "" {
		return ErrMissingPaymentRef
	}
	if strings.TrimSpace(r.DoctorID) == "" {
		return ErrMissingDoctor
	}
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	if strings.TrimSpace(r.Date) == "" || strings.TrimSpace(r.Time) == "" {
		return ErrMissingSchedule
	}
	switch r.Type {
	case TypeVirtual, TypePersonal:
	default:
		return ErrInvalidType
	}
	if r.ConsultationFee < 0 {
		return ErrNegativeFee
	}
	return nil
}
