package triage

import (
	"context"
	"log/slog"

	"github.com/counselgate/counselgate/internal/llm"
)

// fallbackMessage keeps the conversation going when generation fails.
const fallbackMessage = "Thank you for that information. Could you provide more details about your situation?"

// maxGroundedSnippets caps how many article sections feed a grounded answer.
const maxGroundedSnippets = 3

// GroundedSource is the single approved article backing a grounded reply.
type GroundedSource struct {
	Title    string
	Snippets []string
}

// Responder generates the assistant's next conversational message.
type Responder struct {
	client llm.Client
	model  string
	logger *slog.Logger
}

func NewResponder(client llm.Client, model string, logger *slog.Logger) *Responder {
	return &Responder{client: client, model: model, logger: logger}
}

// Respond produces the next assistant message for the transcript.
//
// With an approved source the reply is grounded: answered strictly from
// that one article's extracted sections. Without one the reply is
// ungrounded: either a clarifying question or a routing sentence naming one
// closed-set category; supplementary holds optional low-trust keyword-search
// context for that branch. Generation failure yields a generic clarifying
// message so the turn still completes.
func (r *Responder) Respond(ctx context.Context, transcript []llm.Message, approved *GroundedSource, supplementary []string) string {
	var system string
	if approved != nil {
		snippets := approved.Snippets
		if len(snippets) > maxGroundedSnippets {
			snippets = snippets[:maxGroundedSnippets]
		}
		system = GroundedPrompt(approved.Title, snippets)
	} else {
		system = UngroundedPrompt(supplementary)
	}

	messages := make([]llm.Message, 0, len(transcript)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	messages = append(messages, transcript...)

	reply, err := r.client.Chat(ctx, r.model, messages, false)
	if err != nil {
		r.logger.Warn("response generation failed, using fallback", "error", err)
		return fallbackMessage
	}
	if reply == "" {
		return fallbackMessage
	}

	return EnforceTokenClosure(reply)
}
