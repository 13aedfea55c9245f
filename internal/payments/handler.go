package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// Handler exposes intent staging.
type Handler struct {
	gateway Gateway
	ledger  *Ledger
	logger  *logging.Logger
}

// NewHandler creates the payments HTTP handler. The ledger may be nil when
// no Postgres pool is configured.
func NewHandler(gateway Gateway, ledger *Ledger, logger *logging.Logger) *Handler {
	if gateway == nil {
		panic("payments: gateway required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{gateway: gateway, ledger: ledger, logger: logger}
}

// CreateIntent handles POST /payments/intent.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intent, err := h.gateway.CreateIntent(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create payment intent", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create payment intent")
		return
	}

	if h.ledger != nil {
		if err := h.ledger.RecordIntent(r.Context(), intent); err != nil {
			h.logger.Error("failed to record payment intent", "error", err, "intent_id", intent.ID)
		}
	}

	writeJSON(w, http.StatusOK, intent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
