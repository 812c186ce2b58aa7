package triage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/counselgate/counselgate/internal/llm"
)

// ApprovalConfidence is the minimum gate confidence for a document to be
// used as a grounded source. Tunable default, not a correctness bound.
const ApprovalConfidence = 70

// ConfidenceResult is the gate's judgment for one question/document pair.
type ConfidenceResult struct {
	CanAnswer  bool   `json:"canAnswer"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// Approved reports whether the result clears the confidence floor.
func (r ConfidenceResult) Approved(minConfidence int) bool {
	return r.CanAnswer && r.Confidence >= minConfidence
}

// Gate is the second-opinion classifier run after semantic search: it
// checks whether a specific candidate document answers a specific question.
type Gate struct {
	client llm.Client
	model  string
	logger *slog.Logger
}

func NewGate(client llm.Client, model string, logger *slog.Logger) *Gate {
	return &Gate{client: client, model: model, logger: logger}
}

// CanAnswer judges one candidate document against the user's question.
// Any failure (backend error, malformed reply) returns the rejecting
// result {false, 0}: routing a human to review is acceptable, answering
// from the wrong document is not.
func (g *Gate) CanAnswer(ctx context.Context, question, candidateTitle, candidateExcerpt string) ConfidenceResult {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(confidenceGatePrompt, candidateTitle, candidateExcerpt)},
		{Role: llm.RoleUser, Content: question},
	}

	reply, err := g.client.Chat(ctx, g.model, messages, true)
	if err != nil {
		g.logger.Warn("confidence gate call failed, rejecting candidate", "title", candidateTitle, "error", err)
		return ConfidenceResult{CanAnswer: false, Confidence: 0, Reasoning: "confidence check unavailable"}
	}

	var result ConfidenceResult
	if err := decodeJSONReply(reply, &result); err != nil {
		g.logger.Warn("confidence gate reply unparseable, rejecting candidate", "title", candidateTitle, "error", err)
		return ConfidenceResult{CanAnswer: false, Confidence: 0, Reasoning: "confidence check unavailable"}
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 100 {
		result.Confidence = 100
	}
	return result
}
