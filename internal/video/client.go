package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

var videoTracer = otel.Tracer("bookmydoc.internal.video")

const defaultBaseURL = "https://api.daily.co/v1"

// Client mints meeting tokens for existing rooms. Room creation and
// teardown are handled elsewhere; this client only issues join handles.
type Client struct {
	apiKey     string
	baseURL    string
	tokenTTL   time.Duration
	httpClient *http.Client
	logger     *logging.Logger
}

// Config controls the video client.
type Config struct {
	APIKey   string
	BaseURL  string
	TokenTTL time.Duration
	Logger   *logging.Logger
}

// New creates a configured client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("video: API key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokenTTL:   ttl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}, nil
}

// WithBaseURL points the client at a different API host. Used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// MeetingToken returns a join token scoped to the room and participant.
func (c *Client) MeetingToken(ctx context.Context, roomID, userID, userName string) (string, error) {
	if roomID == "" {
		return "", errors.New("video: room id is required")
	}

	ctx, span := videoTracer.Start(ctx, "video.meeting_token")
	defer span.End()
	span.SetAttributes(attribute.String("bookmydoc.room_id", roomID))

	body, err := json.Marshal(map[string]any{
		"properties": map[string]any{
			"room_name": roomID,
			"user_id":   userID,
			"user_name": userName,
			"exp":       time.Now().Add(c.tokenTTL).Unix(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("video: marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/meeting-tokens", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("video: build token request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("video: token request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("video: read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("video provider rejected token request", "status", resp.StatusCode, "room_id", roomID, "body", string(respBody))
		return "", fmt.Errorf("video: provider returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("video: decode token response: %w", err)
	}
	if parsed.Token == "" {
		return "", errors.New("video: provider returned an empty token")
	}
	return parsed.Token, nil
}
