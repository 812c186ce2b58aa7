package pipeline

import "github.com/counselgate/counselgate/internal/storage"

// Conversation phases. Each turn re-derives the phase from the transcript
// and stamps it into message metadata, so the transition point is a
// documented contract rather than a scattered turn-count check.
const (
	PhaseGathering = "gathering"
	PhaseAssessing = "assessing"
	PhaseConcluded = "concluded"
)

// metadata key carrying the phase on each assistant message
const phaseMetadataKey = "phase"

// PhaseFor derives the phase from how many user messages the conversation
// holds. Once enough turns have accumulated the conversation is ready for
// a full triage assessment; conclusion is recorded explicitly when triage
// runs.
func PhaseFor(userMessageCount, assessAfterTurns int) string {
	if userMessageCount >= assessAfterTurns {
		return PhaseAssessing
	}
	return PhaseGathering
}

// CurrentPhase reads the most recent recorded phase from the transcript,
// defaulting to gathering for fresh conversations.
func CurrentPhase(messages []storage.ConversationMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if p, ok := messages[i].Metadata[phaseMetadataKey].(string); ok && p != "" {
			return p
		}
	}
	return PhaseGathering
}

func countUserMessages(messages []storage.ConversationMessage) int {
	n := 0
	for _, m := range messages {
		if m.Role == "user" {
			n++
		}
	}
	return n
}
