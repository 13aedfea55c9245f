package users

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bookmydoc/bookmydoc-server/internal/observability/metrics"
	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// webhookTolerance bounds how stale a signed timestamp may be.
const webhookTolerance = 5 * time.Minute

// identityEvent is the envelope the identity provider delivers.
type identityEvent struct {
	Type string            `json:"type"`
	Data identityEventData `json:"data"`
}

type identityEventData struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ImageURL       string `json:"image_url"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	PhoneNumbers []struct {
		PhoneNumber string `json:"phone_number"`
	} `json:"phone_numbers"`
}

func (d identityEventData) record() IdentityRecord {
	rec := IdentityRecord{
		ID:        d.ID,
		Name:      strings.TrimSpace(d.FirstName + " " + d.LastName),
		AvatarURL: d.ImageURL,
	}
	if len(d.EmailAddresses) > 0 {
		rec.Email = d.EmailAddresses[0].EmailAddress
	}
	if len(d.PhoneNumbers) > 0 {
		rec.Phone = d.PhoneNumbers[0].PhoneNumber
	}
	return rec
}

type identitySyncer interface {
	Sync(ctx context.Context, rec IdentityRecord) (bool, error)
	Deactivate(ctx context.Context, userID string) error
}

// WebhookHandler receives identity-provider lifecycle events.
type WebhookHandler struct {
	secret  string
	sync    identitySyncer
	metrics *metrics.WebhookMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// NewWebhookHandler creates the identity webhook handler. The secret is the
// provider's signing secret ("whsec_" + base64 key).
func NewWebhookHandler(secret string, sync identitySyncer, m *metrics.WebhookMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		secret:  secret,
		sync:    sync,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle processes POST /webhooks/identity.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		h.logger.Error("identity webhook secret not configured")
		http.Error(w, "webhook not configured", http.StatusInternalServerError)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	msgID := r.Header.Get("svix-id")
	msgTimestamp := r.Header.Get("svix-timestamp")
	msgSignature := r.Header.Get("svix-signature")
	if msgID == "" || msgTimestamp == "" || msgSignature == "" {
		http.Error(w, "missing signature headers", http.StatusBadRequest)
		return
	}

	if !h.verifySignature(msgID, msgTimestamp, msgSignature, payload) {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var evt identityEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		h.logger.Error("failed to decode identity event", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch evt.Type {
	case "user.created", "user.updated":
		if _, err := h.sync.Sync(r.Context(), evt.Data.record()); err != nil {
			h.metrics.ObserveIdentity(evt.Type, "error")
			h.logger.Error("identity sync failed", "error", err, "event_type", evt.Type)
			http.Error(w, "sync failed", http.StatusInternalServerError)
			return
		}
	case "user.deleted":
		if err := h.sync.Deactivate(r.Context(), evt.Data.ID); err != nil {
			h.metrics.ObserveIdentity(evt.Type, "error")
			h.logger.Error("identity deactivate failed", "error", err)
			http.Error(w, "sync failed", http.StatusInternalServerError)
			return
		}
	default:
		h.logger.Debug("ignoring identity event", "event_type", evt.Type)
	}

	h.metrics.ObserveIdentity(evt.Type, "ok")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// verifySignature checks the svix-style signature: base64 HMAC-SHA256 over
// "id.timestamp.body" with the decoded secret. The header may carry several
// space-delimited "v1,<sig>" entries after key rotation.
func (h *WebhookHandler) verifySignature(msgID, timestamp, signatureHeader string, payload []byte) bool {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := h.now().UTC().Sub(time.Unix(ts, 0))
	if age > webhookTolerance || age < -webhookTolerance {
		return false
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(h.secret, "whsec_"))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID + "." + timestamp + "."))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, part := range strings.Fields(signatureHeader) {
		version, sig, found := strings.Cut(part, ",")
		if !found || version != "v1" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) == 1 {
			return true
		}
	}
	return false
}
