package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// Handler handles HTTP requests for the user directory.
type Handler struct {
	sync   *SyncService
	store  Directory
	logger *logging.Logger
}

// NewHandler creates a new users handler.
func NewHandler(sync *SyncService, store Directory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		sync:   sync,
		store:  store,
		logger: logger,
	}
}

// SyncUser handles POST /users/sync, the client mount-time fallback that
// guarantees a directory record exists before any booking references it.
func (h *Handler) SyncUser(w http.ResponseWriter, r *http.Request) {
	var rec IdentityRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.sync.Sync(r.Context(), rec)
	if err != nil {
		if errors.Is(err, ErrMissingUserID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("user sync failed", "error", err, "user_id", rec.ID)
		http.Error(w, "sync failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if created {
		w.WriteHeader(http.StatusCreated)
	}
	json.NewEncoder(w).Encode(map[string]any{"success": true, "created": created})
}

// GetUser handles GET /users/{userID}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	user, err := h.store.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load user", "error", err, "user_id", userID)
		http.Error(w, "failed to load user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
