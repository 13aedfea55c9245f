package users

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

const testWebhookSecret = "whsec_dGVzdC1zaWduaW5nLWtleQ==" // "test-signing-key"

type recordingSyncer struct {
	synced      []IdentityRecord
	deactivated []string
	syncErr     error
}

func (r *recordingSyncer) Sync(ctx context.Context, rec IdentityRecord) (bool, error) {
	if r.syncErr != nil {
		return false, r.syncErr
	}
	r.synced = append(r.synced, rec)
	return true, nil
}

func (r *recordingSyncer) Deactivate(ctx context.Context, userID string) error {
	r.deactivated = append(r.deactivated, userID)
	return nil
}

func signPayload(t *testing.T, msgID, timestamp string, payload []byte) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString("dGVzdC1zaWduaW5nLWtleQ==")
	if err != nil {
		t.Fatalf("decode key: %v", err)
	}
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signedRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(body))
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", ts)
	req.Header.Set("svix-signature", signPayload(t, "msg_1", ts, body))
	return req
}

func TestWebhookUserCreatedSyncs(t *testing.T) {
	syncer := &recordingSyncer{}
	h := NewWebhookHandler(testWebhookSecret, syncer, nil, logging.Default())

	body := []byte(`{"type":"user.created","data":{"id":"user_1","first_name":"Ada","last_name":"Patel","image_url":"https://img.example/a.png","email_addresses":[{"email_address":"ada@example.com"}],"phone_numbers":[{"phone_number":"+15550100"}]}}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp["success"] != true {
		t.Fatalf("expected success payload, got %s", rec.Body.String())
	}
	if len(syncer.synced) != 1 {
		t.Fatalf("expected one sync, got %d", len(syncer.synced))
	}
	got := syncer.synced[0]
	if got.ID != "user_1" || got.Name != "Ada Patel" || got.Email != "ada@example.com" || got.Phone != "+15550100" {
		t.Fatalf("unexpected identity record: %+v", got)
	}
}

func TestWebhookUserDeletedDeactivates(t *testing.T) {
	syncer := &recordingSyncer{}
	h := NewWebhookHandler(testWebhookSecret, syncer, nil, logging.Default())

	body := []byte(`{"type":"user.deleted","data":{"id":"user_1"}}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(syncer.deactivated) != 1 || syncer.deactivated[0] != "user_1" {
		t.Fatalf("expected deactivate call, got %v", syncer.deactivated)
	}
}

func TestWebhookRejectsMissingHeaders(t *testing.T) {
	h := NewWebhookHandler(testWebhookSecret, &recordingSyncer{}, nil, logging.Default())
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	syncer := &recordingSyncer{}
	h := NewWebhookHandler(testWebhookSecret, syncer, nil, logging.Default())

	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(body))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	req.Header.Set("svix-signature", "v1,bm90LWEtcmVhbC1zaWduYXR1cmU=")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(syncer.synced) != 0 {
		t.Fatal("bad signature must not reach the syncer")
	}
}

func TestWebhookRejectsStaleTimestamp(t *testing.T) {
	h := NewWebhookHandler(testWebhookSecret, &recordingSyncer{}, nil, logging.Default())

	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	stale := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(body))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", stale)
	req.Header.Set("svix-signature", signPayload(t, "msg_1", stale, body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for stale timestamp, got %d", rec.Code)
	}
}

func TestWebhookUnconfiguredSecret(t *testing.T) {
	h := NewWebhookHandler("", &recordingSyncer{}, nil, logging.Default())
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(nil)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
