package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

var stripeTracer = otel.Tracer("bookmydoc.internal.payments.stripe")

const defaultStripeBaseURL = "https://api.stripe.com"

// StripeGateway creates payment intents against Stripe's REST API.
type StripeGateway struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewStripeGateway builds a gateway using the given secret key.
func NewStripeGateway(secretKey string, logger *logging.Logger) (*StripeGateway, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("payments: stripe secret key is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StripeGateway{
		secretKey:  secretKey,
		baseURL:    defaultStripeBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// WithBaseURL points the gateway at a different API host. Used in tests.
func (g *StripeGateway) WithBaseURL(baseURL string) *StripeGateway {
	g.baseURL = strings.TrimRight(baseURL, "/")
	return g
}

// CreateIntent stages a charge with Stripe and returns the intent handle.
func (g *StripeGateway) CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	if req.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	ctx, span := stripeTracer.Start(ctx, "payments.stripe.create_intent")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("bookmydoc.amount", req.Amount),
		attribute.String("bookmydoc.currency", currency),
	)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/payment_intents",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payments: build stripe request: %w", err)
	}
	httpReq.SetBasicAuth(g.secretKey, "")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payments: stripe request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("payments: read stripe response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		g.logger.Error("stripe rejected payment intent", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("payments: stripe returned status %d", resp.StatusCode)
	}

	var parsed struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
		Amount       int64  `json:"amount"`
		Currency     string `json:"currency"`
		Status       string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("payments: decode stripe response: %w", err)
	}

	return &Intent{
		ID:           parsed.ID,
		ClientSecret: parsed.ClientSecret,
		Amount:       parsed.Amount,
		Currency:     parsed.Currency,
		Status:       parsed.Status,
	}, nil
}
