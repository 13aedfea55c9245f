package applications

import (
	"errors"
	"strings"

	"github.com/bookmydoc/bookmydoc-server/internal/doctors"
)

var (
	// ErrApplicationNotFound is returned when no application exists for an id.
	ErrApplicationNotFound = errors.New("applications: application not found")

	// ErrNotPending is returned when a decision targets an already-decided
	// application. Decisions are terminal; there is no resubmission.
	ErrNotPending = errors.New("applications: application is not pending")

	// ErrMissingSpecialization is returned when the professional field is absent.
	ErrMissingSpecialization = errors.New("applications: specialization is required")

	// ErrMissingLicense is returned when the license number is absent.
	ErrMissingLicense = errors.New("applications: license number is required")

	// ErrNegativeExperience is returned for an out-of-range experience value.
	ErrNegativeExperience = errors.New("applications: experience must be zero or greater")

	// ErrNegativeFee is returned for an out-of-range consultation fee.
	ErrNegativeFee = errors.New("applications: consultation fee must be zero or greater")
)

// Status is the review state of a doctor application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Application is a professional-credential submission awaiting admin review.
type Application struct {
	ID              string                     `dynamodbav:"applicationId" json:"applicationId"`
	UserID          string                     `dynamodbav:"userId,omitempty" json:"userId,omitempty"`
	FullName        string                     `dynamodbav:"fullName" json:"fullName"`
	Email           string                     `dynamodbav:"email" json:"email"`
	Specialization  string                     `dynamodbav:"specialization" json:"specialization"`
	ExperienceYears int                        `dynamodbav:"experienceYears" json:"experienceYears"`
	LicenseNumber   string                     `dynamodbav:"licenseNumber" json:"licenseNumber"`
	ClinicName      string                     `dynamodbav:"clinicName,omitempty" json:"clinicName,omitempty"`
	ClinicAddress   string                     `dynamodbav:"clinicAddress,omitempty" json:"clinicAddress,omitempty"`
	ConsultationFee float64                    `dynamodbav:"consultationFee" json:"consultationFee"`
	Availability    []doctors.AvailabilitySlot `dynamodbav:"availability,omitempty" json:"availability,omitempty"`
	Status          Status                     `dynamodbav:"status" json:"status"`
	ReviewedBy      string                     `dynamodbav:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt      string                     `dynamodbav:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	AdminComment    string                     `dynamodbav:"adminComment,omitempty" json:"adminComment,omitempty"`
	CreatedAt       string                     `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt       string                     `dynamodbav:"updatedAt" json:"updatedAt"`
}

// SubmitRequest is the intake payload for a new application.
type SubmitRequest struct {
	UserID          string                     `json:"userId"`
	FullName        string                     `json:"fullName"`
	Email           string                     `json:"email"`
	Specialization  string                     `json:"specialization"`
	ExperienceYears int                        `json:"experienceYears"`
	LicenseNumber   string                     `json:"licenseNumber"`
	ClinicName      string                     `json:"clinicName"`
	ClinicAddress   string                     `json:"clinicAddress"`
	ConsultationFee float64                    `json:"consultationFee"`
	Availability    []doctors.AvailabilitySlot `json:"availability"`
}

// Validate enforces the intake preconditions before anything is persisted.
func (r *SubmitRequest) Validate() error {
	if strings.TrimSpace(r.Specialization) == "" {
		return ErrMissingSpecialization
	}
	if strings.TrimSpace(r.LicenseNumber) == "" {
		return ErrMissingLicense
	}
	if r.ExperienceYears < 0 {
		return ErrNegativeExperience
	}
	if r.ConsultationFee < 0 {
		return ErrNegativeFee
	}
	return nil
}
