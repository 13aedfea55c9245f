package doctors

import "errors"

var (
	// ErrDoctorNotFound is returned when no verified doctor exists for an id.
	ErrDoctorNotFound = errors.New("doctors: doctor not found")

	// ErrMissingDoctorID is returned when a lookup has no identifier.
	ErrMissingDoctorID = errors.New("doctors: doctor id is required")
)

// AvailabilitySlot is a recurring weekly consultation window.
type AvailabilitySlot struct {
	Day   string `dynamodbav:"day" json:"day"`
	Start string `dynamodbav:"start" json:"start"` // "09:00"
	End   string `dynamodbav:"end" json:"end"`     // "12:30"
}

// Doctor is the promoted, queryable profile created by application approval.
// It is keyed by the originating user's identifier for 1:1 lookup.
type Doctor struct {
	ID              string             `dynamodbav:"doctorId" json:"doctorId"`
	Name            string             `dynamodbav:"name" json:"name"`
	Email           string             `dynamodbav:"email" json:"email"`
	Specialization  string             `dynamodbav:"specialization" json:"specialization"`
	ExperienceYears int                `dynamodbav:"experienceYears" json:"experienceYears"`
	LicenseNumber   string             `dynamodbav:"licenseNumber" json:"licenseNumber"`
	ClinicName      string             `dynamodbav:"clinicName,omitempty" json:"clinicName,omitempty"`
	ClinicAddress   string             `dynamodbav:"clinicAddress,omitempty" json:"clinicAddress,omitempty"`
	ConsultationFee float64            `dynamodbav:"consultationFee" json:"consultationFee"`
	About           string             `dynamodbav:"about,omitempty" json:"about,omitempty"`
	Availability    []AvailabilitySlot `dynamodbav:"availability,omitempty" json:"availability,omitempty"`
	IsVerified      bool               `dynamodbav:"isVerified" json:"isVerified"`
	Rating          float64            `dynamodbav:"rating" json:"rating"`
	RatingCount     int                `dynamodbav:"ratingCount" json:"ratingCount"`
	CreatedAt       string             `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt       string             `dynamodbav:"updatedAt" json:"updatedAt"`
}

// ListFilter narrows directory searches.
type ListFilter struct {
	Specialization string
	Query          string // case-insensitive substring on name
	Limit          int32
}
