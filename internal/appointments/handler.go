package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// Handler exposes the booking, lifecycle, and join endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the appointments HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("appointments: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// ConfirmPayment handles POST /confirm-payment: the booking call made once
// the payment gateway has reported success.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.service.Book(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingPaymentRef),
			errors.Is(err, ErrMissingDoctor),
			errors.Is(err, ErrMissingPatient),
			errors.Is(err, ErrMissingSchedule),
			errors.Is(err, ErrInvalidType),
			errors.Is(err, ErrNegativeFee):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to book appointment", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to book appointment")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"appointmentId": id,
	})
}

// Get handles GET /appointments/{appointmentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	appt, err := h.service.Get(r.Context(), appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			writeError(w, http.StatusNotFound, "appointment not found")
			return
		}
		h.logger.Error("failed to get appointment", "error", err, "appointment_id", appointmentID)
		writeError(w, http.StatusInternalServerError, "failed to get appointment")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// ListByPatient handles GET /patients/{patientID}/appointments.
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	appts, err := h.service.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list patient appointments", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// ListByDoctor handles GET /doctors/{doctorID}/appointments. An optional
// ?date=YYYY-MM-DD narrows the listing through the per-date index.
func (h *Handler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	date := r.URL.Query().Get("date")
	appts, err := h.service.ListByDoctor(r.Context(), doctorID, date)
	if err != nil {
		h.logger.Error("failed to list doctor appointments", "error", err, "doctor_id", doctorID, "date", date)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// Cancel handles POST /appointments/{appointmentID}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	err := h.service.Cancel(r.Context(), appointmentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			writeError(w, http.StatusNotFound, "appointment not found")
		case errors.Is(err, ErrNotCancellable):
			writeError(w, http.StatusConflict, "appointment is not cancellable")
		default:
			h.logger.Error("failed to cancel appointment", "error", err, "appointment_id", appointmentID)
			writeError(w, http.StatusInternalServerError, "failed to cancel appointment")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"appointmentId": appointmentID,
		"status":        StatusCancelled,
	})
}

// Join handles GET /appointments/{appointmentID}/join. Identity fields come
// from query parameters; session management is the caller's concern.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	userID := r.URL.Query().Get("userId")
	userName := r.URL.Query().Get("userName")

	grant, err := h.service.Join(r.Context(), appointmentID, userID, userName)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			writeError(w, http.StatusNotFound, "appointment not found")
		case errors.Is(err, ErrNotJoinable):
			writeError(w, http.StatusConflict, "appointment is not joinable right now")
		case errors.Is(err, ErrVideoUnavailable):
			writeError(w, http.StatusConflict, "video unavailable for this appointment")
		default:
			h.logger.Error("failed to issue join token", "error", err, "appointment_id", appointmentID)
			writeError(w, http.StatusInternalServerError, "failed to join appointment")
		}
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
