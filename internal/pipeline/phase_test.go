package pipeline

import (
	"testing"

	"github.com/counselgate/counselgate/internal/storage"
)

func TestPhaseForTransition(t *testing.T) {
	const assessAfter = 6
	for turns, want := range map[int]string{
		0:  PhaseGathering,
		1:  PhaseGathering,
		5:  PhaseGathering,
		6:  PhaseAssessing,
		10: PhaseAssessing,
	} {
		if got := PhaseFor(turns, assessAfter); got != want {
			t.Errorf("PhaseFor(%d) = %q, want %q", turns, got, want)
		}
	}
}

func TestCurrentPhaseDefaultsToGathering(t *testing.T) {
	if got := CurrentPhase(nil); got != PhaseGathering {
		t.Errorf("empty transcript phase = %q, want gathering", got)
	}
	msgs := []storage.ConversationMessage{
		{Role: "user", Content: "hi"},
	}
	if got := CurrentPhase(msgs); got != PhaseGathering {
		t.Errorf("untagged transcript phase = %q, want gathering", got)
	}
}

func TestCurrentPhaseReadsLatestTag(t *testing.T) {
	msgs := []storage.ConversationMessage{
		{Role: "assistant", Metadata: map[string]any{"phase": PhaseGathering}},
		{Role: "assistant", Metadata: map[string]any{"phase": PhaseAssessing}},
		{Role: "user"},
	}
	if got := CurrentPhase(msgs); got != PhaseAssessing {
		t.Errorf("phase = %q, want assessing", got)
	}
}

func TestCountUserMessages(t *testing.T) {
	msgs := []storage.ConversationMessage{
		{Role: "user"}, {Role: "assistant"}, {Role: "user"}, {Role: "user"},
	}
	if n := countUserMessages(msgs); n != 3 {
		t.Errorf("countUserMessages = %d, want 3", n)
	}
}
