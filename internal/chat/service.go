package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/bookmydoc/bookmydoc-server/internal/observability/metrics"
	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

// Reply is the assistant's answer. Fallback marks a degraded reply served
// because the provider failed.
type Reply struct {
	Text      string `json:"reply"`
	SessionID string `json:"sessionId"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// Service runs the assistant conversation: session log, provider call, and
// the static fallback when the provider is down.
type Service struct {
	llm     LLMClient
	store   *SessionStore
	metrics *metrics.ChatMetrics
	logger  *logging.Logger
}

// NewService creates the chat service. The store may be nil.
func NewService(llm LLMClient, store *SessionStore, chatMetrics *metrics.ChatMetrics, logger *logging.Logger) *Service {
	if llm == nil {
		panic("chat: llm client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{llm: llm, store: store, metrics: chatMetrics, logger: logger}
}

// Ask appends the user's turn, calls the provider, and appends the reply.
// Provider failures come back as the fallback reply rather than an error;
// the caller still gets a usable answer.
func (s *Service) Ask(ctx context.Context, sessionID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		s.logger.Error("failed to read chat session", "error", err, "session_id", sessionID)
		history = nil
	}

	if err := s.store.Append(ctx, sessionID, Turn{Role: RoleUser, Content: message}); err != nil {
		s.logger.Error("failed to append user turn", "error", err, "session_id", sessionID)
	}

	reply := &Reply{SessionID: sessionID}
	text, err := s.llm.Complete(ctx, history, message)
	if err != nil {
		s.logger.Error("chat provider failed, serving fallback", "error", err, "session_id", sessionID)
		s.metrics.ObserveRequest("fallback")
		reply.Text = fallbackReply
		reply.Fallback = true
	} else {
		s.metrics.ObserveRequest("ok")
		reply.Text = text
	}

	if err := s.store.Append(ctx, sessionID, Turn{Role: RoleAssistant, Content: reply.Text}); err != nil {
		s.logger.Error("failed to append assistant turn", "error", err, "session_id", sessionID)
	}
	return reply, nil
}
