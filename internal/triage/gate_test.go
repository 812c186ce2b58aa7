package triage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/counselgate/counselgate/internal/llm"
)

type fakeLLM struct {
	chatFn func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error)
}

func (f *fakeLLM) Chat(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
	return f.chatFn(ctx, model, messages, jsonOnly)
}

func (f *fakeLLM) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGateApproves(t *testing.T) {
	g := NewGate(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			if !jsonOnly {
				t.Error("gate should request JSON output")
			}
			return `{"canAnswer": true, "confidence": 85, "reasoning": "topic matches"}`, nil
		},
	}, "gpt-4o-mini", discardLogger())

	res := g.CanAnswer(context.Background(), "Can I use the standard NDA?", "Standard NDA Template and Usage Guidelines", "Pre-approved NDA template.")
	if !res.CanAnswer || res.Confidence != 85 {
		t.Errorf("result = %+v, want approval at 85", res)
	}
	if !res.Approved(ApprovalConfidence) {
		t.Error("result should clear the default confidence floor")
	}
}

func TestGateRejectsBelowFloor(t *testing.T) {
	g := NewGate(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			return `{"canAnswer": true, "confidence": 60, "reasoning": "loose match"}`, nil
		},
	}, "gpt-4o-mini", discardLogger())

	res := g.CanAnswer(context.Background(), "question", "title", "excerpt")
	if res.Approved(ApprovalConfidence) {
		t.Errorf("confidence 60 should not clear the floor of %d", ApprovalConfidence)
	}
}

func TestGateFailSafeOnError(t *testing.T) {
	g := NewGate(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			return "", errors.New("backend down")
		},
	}, "gpt-4o-mini", discardLogger())

	res := g.CanAnswer(context.Background(), "question", "title", "excerpt")
	if res.CanAnswer || res.Confidence != 0 {
		t.Errorf("error must yield {false, 0}, got %+v", res)
	}
}

func TestGateFailSafeOnMalformedReply(t *testing.T) {
	g := NewGate(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			return "I think it can answer the question, yes.", nil
		},
	}, "gpt-4o-mini", discardLogger())

	res := g.CanAnswer(context.Background(), "question", "title", "excerpt")
	if res.CanAnswer || res.Confidence != 0 {
		t.Errorf("malformed reply must yield {false, 0}, got %+v", res)
	}
}

func TestGateStripsCodeFences(t *testing.T) {
	g := NewGate(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			return "```json\n{\"canAnswer\": true, \"confidence\": 90, \"reasoning\": \"ok\"}\n```", nil
		},
	}, "gpt-4o-mini", discardLogger())

	res := g.CanAnswer(context.Background(), "question", "title", "excerpt")
	if !res.CanAnswer || res.Confidence != 90 {
		t.Errorf("fenced reply not parsed: %+v", res)
	}
}

func TestGatePromptNamesCandidate(t *testing.T) {
	var gotSystem string
	g := NewGate(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			gotSystem = messages[0].Content
			return `{"canAnswer": false, "confidence": 10, "reasoning": "no"}`, nil
		},
	}, "gpt-4o-mini", discardLogger())

	g.CanAnswer(context.Background(), "question", "Trademark Guide", "About trademarks.")
	if !strings.Contains(gotSystem, "Trademark Guide") {
		t.Errorf("system prompt missing candidate title: %q", gotSystem)
	}
}
