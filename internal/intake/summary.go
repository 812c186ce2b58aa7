package intake

import (
	"context"
	"fmt"

	"github.com/counselgate/counselgate/internal/llm"
)

const summaryPrompt = "You are generating concise summaries of legal requests for attorney review. Highlight key facts, risks, and action items in 2-3 sentences."

// genericSummary is returned when summarization fails.
const genericSummary = "Legal request requiring review."

// Summarize produces the short attorney-facing summary shown in the inbox.
func (s *Service) Summarize(ctx context.Context, category, title, description string) string {
	reply, err := s.client.Chat(ctx, s.fastModel, []llm.Message{
		{Role: llm.RoleSystem, Content: summaryPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Category: %s\nTitle: %s\nDescription: %s", category, title, description)},
	}, false)
	if err != nil {
		s.logger.Warn("summary generation failed", "error", err)
		return genericSummary
	}
	if reply == "" {
		return genericSummary
	}
	return reply
}
