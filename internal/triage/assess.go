package triage

import (
	"context"
	"log/slog"

	"github.com/counselgate/counselgate/internal/llm"
)

// Conversation-level triage outcomes.
const (
	OutcomeNeedsReview = "needs_review"
	OutcomeMightNeed   = "might_need"
	OutcomeLikelyFine  = "likely_fine"
	OutcomeSelfService = "self_service"
)

// Assessment classifies a whole conversation, not just the latest turn.
type Assessment struct {
	Outcome           string   `json:"outcome"`
	Reasoning         string   `json:"reasoning"`
	Recommendations   []string `json:"recommendations,omitempty"`
	SuggestedArticles []string `json:"suggestedArticles,omitempty"`
}

// Assessor runs the conversation-level triage classification.
type Assessor struct {
	client llm.Client
	model  string
	logger *slog.Logger
}

func NewAssessor(client llm.Client, model string, logger *slog.Logger) *Assessor {
	return &Assessor{client: client, model: model, logger: logger}
}

// fallbackAssessment routes to a human when classification is impossible.
func fallbackAssessment() Assessment {
	return Assessment{
		Outcome:         OutcomeNeedsReview,
		Reasoning:       "Unable to assess, recommending legal review to be safe",
		Recommendations: []string{"Provide detailed description of the situation"},
	}
}

// Assess classifies the full transcript into one of the four outcomes.
// Errors and unrecognized outcomes degrade to needs_review.
func (a *Assessor) Assess(ctx context.Context, transcript []llm.Message) Assessment {
	messages := make([]llm.Message, 0, len(transcript)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: triagePrompt})
	messages = append(messages, transcript...)

	reply, err := a.client.Chat(ctx, a.model, messages, true)
	if err != nil {
		a.logger.Warn("triage call failed, defaulting to needs_review", "error", err)
		return fallbackAssessment()
	}

	var result Assessment
	if err := decodeJSONReply(reply, &result); err != nil {
		a.logger.Warn("triage reply unparseable, defaulting to needs_review", "error", err)
		return fallbackAssessment()
	}

	switch result.Outcome {
	case OutcomeNeedsReview, OutcomeMightNeed, OutcomeLikelyFine, OutcomeSelfService:
	default:
		a.logger.Warn("triage returned unknown outcome, defaulting to needs_review", "outcome", result.Outcome)
		return fallbackAssessment()
	}
	return result
}
