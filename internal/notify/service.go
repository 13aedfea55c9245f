package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bookmydoc/bookmydoc-server/internal/appointments"
	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// Service sends patient-facing booking emails. Delivery is best-effort; a
// failure never unwinds a booking.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// SendBookingConfirmation emails the patient their appointment details.
func (s *Service) SendBookingConfirmation(ctx context.Context, appt *appointments.Appointment) error {
	if s.email == nil {
		s.logger.Debug("email sender not configured, skipping confirmation", "appointment_id", appt.ID)
		return nil
	}
	if strings.TrimSpace(appt.PatientEmail) == "" {
		s.logger.Debug("patient has no email, skipping confirmation", "appointment_id", appt.ID)
		return nil
	}

	visit := "at the clinic"
	if appt.Type == appointments.TypeVirtual {
		visit = "by video call"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", appt.PatientName)
	fmt.Fprintf(&body, "Your appointment with %s is confirmed.\n\n", appt.DoctorName)
	fmt.Fprintf(&body, "Date: %s\n", formatDate(appt.Date))
	fmt.Fprintf(&body, "Time: %s\n", appt.Time)
	fmt.Fprintf(&body, "Visit: %s\n", visit)
	if appt.DoctorSpecialization != "" {
		fmt.Fprintf(&body, "Specialization: %s\n", appt.DoctorSpecialization)
	}
	fmt.Fprintf(&body, "\nBooking reference: %s\n", appt.ID)
	body.WriteString("\nYou can cancel from your appointments page any time before the visit starts.\n")

	msg := EmailMessage{
		To:      appt.PatientEmail,
		ToName:  appt.PatientName,
		Subject: fmt.Sprintf("Appointment confirmed with %s", appt.DoctorName),
		Body:    body.String(),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}

func formatDate(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.Format("Monday, January 2, 2006")
}
