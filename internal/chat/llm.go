package chat

import "context"

// Role labels a turn in the session log.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one exchange entry in a chat session.
type Turn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// LLMClient is the text-completion provider behind the assistant.
type LLMClient interface {
	Complete(ctx context.Context, history []Turn, message string) (string, error)
}

const systemPrompt = `You are the BookMyDoc assistant. You help patients find doctors,
understand specializations, and prepare for appointments. You never give a
diagnosis or medical advice; for anything clinical, tell the user to speak
with a doctor. Keep answers short and practical.`

// fallbackReply is served when the provider fails. A degraded answer beats a
// 500 for an advisory surface.
const fallbackReply = "I'm having trouble answering right now. You can browse " +
	"our doctors by specialization and book an appointment directly, or try " +
	"asking me again in a moment. For medical concerns, please consult a doctor."
