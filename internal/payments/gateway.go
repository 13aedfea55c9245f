package payments

import (
	"context"
	"errors"
)

var (
	// ErrInvalidAmount is returned for a negative intent amount.
	ErrInvalidAmount = errors.New("payments: amount must be zero or greater")

	// ErrIntentNotFound is returned when the ledger has no row for an intent.
	ErrIntentNotFound = errors.New("payments: payment intent not found")
)

// Intent is the gateway's handle for a payment in flight. The client secret
// goes back to the browser; the id is what bookings reference.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// CreateIntentRequest asks the gateway to stage a charge. Amount is in the
// currency's smallest unit.
type CreateIntentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// Gateway is the payment provider. Capture and verification live on the
// provider's side; this service only stages intents and records outcomes.
type Gateway interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)
}
