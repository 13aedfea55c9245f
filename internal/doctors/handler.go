package doctors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// Handler handles HTTP requests for the doctor directory.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a new doctors handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// ListDoctorsResponse is the response for listing doctors.
type ListDoctorsResponse struct {
	Doctors []*Doctor `json:"doctors"`
	Count   int       `json:"count"`
}

// ListDoctors handles GET /doctors requests.
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: 50}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = int32(limit)
		}
	}
	filter.Specialization = r.URL.Query().Get("specialization")
	filter.Query = r.URL.Query().Get("q")

	docs, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		http.Error(w, "failed to list doctors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListDoctorsResponse{Doctors: docs, Count: len(docs)})
}

// GetDoctor handles GET /doctors/{doctorID} requests.
func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	doc, err := h.store.Get(r.Context(), doctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) || errors.Is(err, ErrMissingDoctorID) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load doctor", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// UpdateAvailability handles PUT /doctors/{doctorID}/availability requests.
func (h *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")

	var req struct {
		Availability []AvailabilitySlot `json:"availability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateAvailability(r.Context(), doctorID, req.Availability); err != nil {
		if errors.Is(err, ErrDoctorNotFound) || errors.Is(err, ErrMissingDoctorID) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update availability", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to update availability", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}
