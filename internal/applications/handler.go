package applications

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookmydoc/bookmydoc-server/internal/authctx"
	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// Handler exposes the application intake and the admin review endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the applications HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("applications: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Submit handles POST /applications.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.service.Submit(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingSpecialization),
			errors.Is(err, ErrMissingLicense),
			errors.Is(err, ErrNegativeExperience),
			errors.Is(err, ErrNegativeFee):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to submit application", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to submit application")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"applicationId": id,
		"status":        StatusPending,
	})
}

// List handles GET /admin/applications. The status query defaults to pending.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status == "" {
		status = StatusPending
	}
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	apps, err := h.service.List(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list applications", "error", err, "status", status)
		writeError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	if apps == nil {
		apps = []*Application{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

// Approve handles POST /admin/applications/{applicationID}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusApproved)
}

// Reject handles POST /admin/applications/{applicationID}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status Status) {
	applicationID := chi.URLParam(r, "applicationID")
	if applicationID == "" {
		writeError(w, http.StatusBadRequest, "application id is required")
		return
	}

	reviewer, ok := authctx.AdminFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "admin authentication required")
		return
	}

	var err error
	if status == StatusApproved {
		err = h.service.Approve(r.Context(), applicationID, reviewer)
	} else {
		var body struct {
			Comment string `json:"comment"`
		}
		// The rejection comment is optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&body)
		err = h.service.Reject(r.Context(), applicationID, reviewer, body.Comment)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrApplicationNotFound):
			writeError(w, http.StatusNotFound, "application not found")
		case errors.Is(err, ErrNotPending):
			writeError(w, http.StatusConflict, "application has already been decided")
		default:
			h.logger.Error("failed to decide application", "error", err, "application_id", applicationID, "status", status)
			writeError(w, http.StatusInternalServerError, "failed to decide application")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"applicationId": applicationID,
		"status":        status,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
