package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// FakeGateway stages intents without talking to any provider. It exists for
// local development when no Stripe key is configured.
type FakeGateway struct{}

// NewFakeGateway creates the development gateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

// CreateIntent mints an intent that is immediately considered succeeded.
func (g *FakeGateway) CreateIntent(_ context.Context, req CreateIntentRequest) (*Intent, error) {
	if req.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}
	id := "pi_fake_" + uuid.NewString()
	return &Intent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_fake", id),
		Amount:       req.Amount,
		Currency:     currency,
		Status:       "succeeded",
	}, nil
}
