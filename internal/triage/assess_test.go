package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/counselgate/counselgate/internal/llm"
)

func TestAssessClassifies(t *testing.T) {
	a := NewAssessor(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			return `{"outcome": "needs_review", "reasoning": "clear contract dispute", "recommendations": ["Gather the signed contract", "Note key dates"]}`, nil
		},
	}, "gpt-4o", discardLogger())

	result := a.Assess(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "Our vendor breached the delivery terms and refuses to cure."},
		{Role: llm.RoleAssistant, Content: "What does the contract say about remedies?"},
		{Role: llm.RoleUser, Content: "It has a cure period that expired last week."},
	})

	if result.Outcome != OutcomeNeedsReview {
		t.Errorf("outcome = %q, want needs_review", result.Outcome)
	}
	if len(result.Recommendations) == 0 {
		t.Error("needs_review should carry recommendations")
	}
}

func TestAssessFailSafeOnError(t *testing.T) {
	a := NewAssessor(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			return "", errors.New("backend down")
		},
	}, "gpt-4o", discardLogger())

	result := a.Assess(context.Background(), nil)
	if result.Outcome != OutcomeNeedsReview {
		t.Errorf("error outcome = %q, want needs_review", result.Outcome)
	}
	if len(result.Recommendations) == 0 {
		t.Error("fallback should carry a generic recommendation")
	}
}

func TestAssessRejectsUnknownOutcome(t *testing.T) {
	a := NewAssessor(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			return `{"outcome": "escalate_immediately", "reasoning": "made up"}`, nil
		},
	}, "gpt-4o", discardLogger())

	if result := a.Assess(context.Background(), nil); result.Outcome != OutcomeNeedsReview {
		t.Errorf("unknown outcome mapped to %q, want needs_review", result.Outcome)
	}
}

func TestAssessAcceptsSelfService(t *testing.T) {
	a := NewAssessor(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			return `{"outcome": "self_service", "reasoning": "covered by the NDA guide", "suggestedArticles": ["nda-template-guide"]}`, nil
		},
	}, "gpt-4o", discardLogger())

	result := a.Assess(context.Background(), nil)
	if result.Outcome != OutcomeSelfService {
		t.Errorf("outcome = %q, want self_service", result.Outcome)
	}
	if len(result.SuggestedArticles) != 1 || result.SuggestedArticles[0] != "nda-template-guide" {
		t.Errorf("suggested articles = %v", result.SuggestedArticles)
	}
}
