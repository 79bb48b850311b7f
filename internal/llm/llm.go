package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. Messages are immutable once created;
// a conversation only ever grows by append.
type Message struct {
	Role    string
	Content string
}

// Client issues a single request to a hosted language model. Chat returns the
// reply for an ordered conversation; ChatJSON additionally instructs the
// service to emit a single JSON object and returns it unparsed.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	ChatJSON(ctx context.Context, messages []Message) (string, error)
}
