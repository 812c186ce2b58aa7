package intake

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/counselgate/counselgate/internal/llm"
	"github.com/counselgate/counselgate/internal/storage"
)

const urgencyPrompt = `Analyze text for urgency indicators like:
- Time-sensitive language: "urgent", "ASAP", "deadline", "tomorrow", "launching"
- Business impact: "blocking", "critical", "emergency"
- Consequences: "risk", "penalty", "violation"

Classify as:
- "urgent": Immediate action required (within 24 hours)
- "high": Soon (2-3 days)
- "medium": Normal priority (1 week)
- "low": No rush (2+ weeks)

Respond with JSON: { "isUrgent": boolean, "urgencyLevel": string, "reasoning": string }`

// UrgencyDetection is the classifier's judgment of a request description.
type UrgencyDetection struct {
	IsUrgent     bool   `json:"isUrgent"`
	UrgencyLevel string `json:"urgencyLevel"`
	Reasoning    string `json:"reasoning"`
}

// DetectUrgency classifies how quickly a request needs attention. Failures
// and unknown levels fall back to medium so intake never blocks on the
// classifier.
func (s *Service) DetectUrgency(ctx context.Context, description string) UrgencyDetection {
	fallback := UrgencyDetection{IsUrgent: false, UrgencyLevel: storage.UrgencyMedium, Reasoning: "Unable to assess urgency"}

	reply, err := s.client.Chat(ctx, s.fastModel, []llm.Message{
		{Role: llm.RoleSystem, Content: urgencyPrompt},
		{Role: llm.RoleUser, Content: description},
	}, true)
	if err != nil {
		s.logger.Warn("urgency detection failed", "error", err)
		return fallback
	}

	var result UrgencyDetection
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &result); err != nil {
		s.logger.Warn("urgency reply unparseable", "error", err)
		return fallback
	}

	switch result.UrgencyLevel {
	case storage.UrgencyLow, storage.UrgencyMedium, storage.UrgencyHigh, storage.UrgencyUrgent:
		return result
	default:
		return fallback
	}
}

// ExpectedTimeline maps an urgency level to the response window quoted to
// the submitter.
func ExpectedTimeline(urgency string) string {
	switch urgency {
	case storage.UrgencyUrgent:
		return "24 hours"
	case storage.UrgencyHigh:
		return "2-3 business days"
	case storage.UrgencyMedium:
		return "3-5 business days"
	default:
		return "1-2 weeks"
	}
}
