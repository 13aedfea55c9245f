package users

import "strings"

// Role is the directory role of a user.
type Role string

const (
	RolePatient       Role = "patient"
	RoleDoctorPending Role = "doctor-pending"
	RoleDoctor        Role = "doctor"
	RoleAdmin         Role = "admin"
)

// MedicalProfile is the free-form medical sub-record a patient maintains.
// Sync never touches it; only explicit profile edits do.
type MedicalProfile struct {
	BloodGroup       string   `dynamodbav:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`
	Allergies        []string `dynamodbav:"allergies,omitempty" json:"allergies,omitempty"`
	Conditions       []string `dynamodbav:"conditions,omitempty" json:"conditions,omitempty"`
	Medications      []string `dynamodbav:"medications,omitempty" json:"medications,omitempty"`
	EmergencyContact string   `dynamodbav:"emergencyContact,omitempty" json:"emergencyContact,omitempty"`
}

// User mirrors an identity-provider account into the directory.
// Users are never hard-deleted, only deactivated.
type User struct {
	ID             string          `dynamodbav:"userId" json:"userId"`
	Name           string          `dynamodbav:"name" json:"name"`
	Email          string          `dynamodbav:"email" json:"email"`
	Phone          string          `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
	AvatarURL      string          `dynamodbav:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Role           Role            `dynamodbav:"role" json:"role"`
	IsActive       bool            `dynamodbav:"isActive" json:"isActive"`
	MedicalProfile *MedicalProfile `dynamodbav:"medicalProfile,omitempty" json:"medicalProfile,omitempty"`
	ApplicationID  string          `dynamodbav:"applicationId,omitempty" json:"applicationId,omitempty"`
	CreatedAt      string          `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt      string          `dynamodbav:"updatedAt" json:"updatedAt"`
}

// IdentityRecord carries the fields the identity provider supplies, either in
// a webhook payload or from the client session on first visit.
type IdentityRecord struct {
	ID        string `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatarUrl"`
}

// Validate checks the minimum fields sync needs.
func (r *IdentityRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrMissingUserID
	}
	return nil
}
