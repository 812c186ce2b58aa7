package intake

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/counselgate/counselgate/internal/llm"
)

const submitterConfidencePrompt = `You are analyzing user confidence in their legal request.
Confident users use specific legal terminology, know exactly what they need (e.g., "NDA review", "contract amendment"), and provide clear context.
Uncertain users use vague language, ask questions, express doubt (e.g., "not sure if", "might need", "wondering if").

Respond with JSON: { "isConfident": boolean, "confidence": number (0-100), "reasoning": string }`

// SubmitterConfidence measures how sure the submitter seems about what they
// need; the interface uses it to decide between the quick form and the
// guided conversation.
type SubmitterConfidence struct {
	IsConfident bool   `json:"isConfident"`
	Confidence  int    `json:"confidence"`
	Reasoning   string `json:"reasoning"`
}

// AnalyzeConfidence classifies the submitter's initial input. Failure
// yields a neutral middle result rather than an error.
func (s *Service) AnalyzeConfidence(ctx context.Context, input string) SubmitterConfidence {
	fallback := SubmitterConfidence{IsConfident: false, Confidence: 50, Reasoning: "Unable to analyze confidence"}

	reply, err := s.client.Chat(ctx, s.fastModel, []llm.Message{
		{Role: llm.RoleSystem, Content: submitterConfidencePrompt},
		{Role: llm.RoleUser, Content: input},
	}, true)
	if err != nil {
		s.logger.Warn("confidence analysis failed", "error", err)
		return fallback
	}

	var result SubmitterConfidence
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &result); err != nil {
		s.logger.Warn("confidence reply unparseable", "error", err)
		return fallback
	}
	return result
}
