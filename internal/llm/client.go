package llm

import "context"

// Message roles understood by the completion service.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client abstracts the completion and embedding services. Consumers such as
// the confidence gate, the triage assessor, and the embedder depend on this
// interface instead of a concrete backend, so any OpenAI-compatible endpoint
// is substitutable.
type Client interface {
	// Chat sends messages to the given model and returns the assistant's
	// response text. When jsonOnly is true the backend is constrained to
	// return a syntactically valid JSON object.
	Chat(ctx context.Context, model string, messages []Message, jsonOnly bool) (string, error)

	// Embed returns the embedding vector for the given text using the
	// specified model. The vector dimension is stable for a given model.
	Embed(ctx context.Context, model string, text string) ([]float32, error)
}
