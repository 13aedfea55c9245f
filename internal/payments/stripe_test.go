package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

func TestStripeCreateIntent(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth, _, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("amount") != "12000" {
			t.Fatalf("unexpected amount %q", r.PostForm.Get("amount"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","client_secret":"pi_123_secret","amount":12000,"currency":"usd","status":"requires_confirmation"}`))
	}))
	defer server.Close()

	gateway, err := NewStripeGateway("sk_test_123", logging.Default())
	if err != nil {
		t.Fatalf("NewStripeGateway: %v", err)
	}
	gateway = gateway.WithBaseURL(server.URL)

	intent, err := gateway.CreateIntent(context.Background(), CreateIntentRequest{
		Amount:   12000,
		Currency: "usd",
		Metadata: map[string]string{"doctorId": "doc_1"},
	})
	if err != nil {
		t.Fatalf("CreateIntent returned error: %v", err)
	}
	if intent.ID != "pi_123" || intent.ClientSecret != "pi_123_secret" {
		t.Fatalf("unexpected intent %+v", intent)
	}
	if gotPath != "/v1/payment_intents" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "sk_test_123" {
		t.Fatalf("expected the secret key as basic auth user, got %q", gotAuth)
	}
}

func TestStripeCreateIntentRejectsNegativeAmount(t *testing.T) {
	gateway, err := NewStripeGateway("sk_test_123", logging.Default())
	if err != nil {
		t.Fatalf("NewStripeGateway: %v", err)
	}

	_, err = gateway.CreateIntent(context.Background(), CreateIntentRequest{Amount: -1})
	if err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestStripeCreateIntentSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"card declined"}}`))
	}))
	defer server.Close()

	gateway, err := NewStripeGateway("sk_test_123", logging.Default())
	if err != nil {
		t.Fatalf("NewStripeGateway: %v", err)
	}
	gateway = gateway.WithBaseURL(server.URL)

	if _, err := gateway.CreateIntent(context.Background(), CreateIntentRequest{Amount: 500}); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestFakeGatewaySucceedsImmediately(t *testing.T) {
	gateway := NewFakeGateway()
	intent, err := gateway.CreateIntent(context.Background(), CreateIntentRequest{Amount: 9900})
	if err != nil {
		t.Fatalf("CreateIntent returned error: %v", err)
	}
	if intent.Status != "succeeded" {
		t.Fatalf("expected an immediately succeeded intent, got %q", intent.Status)
	}
	if intent.ID == "" || intent.ClientSecret == "" {
		t.Fatalf("expected id and secret, got %+v", intent)
	}
}
