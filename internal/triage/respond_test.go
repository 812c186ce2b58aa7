package triage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/counselgate/counselgate/internal/llm"
)

func TestRespondGroundedUsesSingleArticle(t *testing.T) {
	var gotSystem string
	r := NewResponder(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			gotSystem = messages[0].Content
			return "You can use the Standard NDA Template and Usage Guidelines for this.", nil
		},
	}, "gpt-4o", discardLogger())

	reply := r.Respond(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "Can I use the standard NDA?"}}, &GroundedSource{
		Title:    "Standard NDA Template and Usage Guidelines",
		Snippets: []string{"Our standard mutual NDA template has been pre-approved."},
	}, nil)

	if !strings.Contains(reply, "Standard NDA Template and Usage Guidelines") {
		t.Errorf("reply missing literal article title: %q", reply)
	}
	if !strings.Contains(gotSystem, "exactly one approved article") {
		t.Errorf("grounded prompt missing single-source constraint: %q", gotSystem)
	}
	if !strings.Contains(gotSystem, "pre-approved") {
		t.Errorf("grounded prompt missing snippet content: %q", gotSystem)
	}
}

func TestRespondGroundedCapsSnippets(t *testing.T) {
	var gotSystem string
	r := NewResponder(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			gotSystem = messages[0].Content
			return "ok", nil
		},
	}, "gpt-4o", discardLogger())

	r.Respond(context.Background(), nil, &GroundedSource{
		Title:    "T",
		Snippets: []string{"one", "two", "three", "four", "five"},
	}, nil)

	if strings.Contains(gotSystem, "Section 4") {
		t.Errorf("more than %d sections in prompt", maxGroundedSnippets)
	}
}

func TestRespondUngroundedListsClosedCategories(t *testing.T) {
	var gotSystem string
	r := NewResponder(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			gotSystem = messages[0].Content
			return "Could you tell me more about the partnership?", nil
		},
	}, "gpt-4o", discardLogger())

	r.Respond(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "We might partner with a vendor."}}, nil, nil)

	for _, tok := range []string{"[contract review]", "[employment]", "[marketing]", "[partnership]", "[regulatory]", "[IP]", "[other]"} {
		if !strings.Contains(gotSystem, tok) {
			t.Errorf("ungrounded prompt missing token %s", tok)
		}
	}
}

func TestRespondSanitizesFabricatedCategory(t *testing.T) {
	r := NewResponder(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			return "Based on what you've described, this needs formal legal review. I can route this to our [litigation] team now.", nil
		},
	}, "gpt-4o", discardLogger())

	reply := r.Respond(context.Background(), nil, nil, nil)
	if strings.Contains(reply, "[litigation]") {
		t.Errorf("fabricated category emitted: %q", reply)
	}
	if !strings.Contains(reply, "[other]") {
		t.Errorf("fabricated category not mapped to [other]: %q", reply)
	}
}

func TestRespondFallbackOnError(t *testing.T) {
	r := NewResponder(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			return "", errors.New("backend down")
		},
	}, "gpt-4o", discardLogger())

	reply := r.Respond(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "help"}}, nil, nil)
	if reply != fallbackMessage {
		t.Errorf("reply = %q, want fallback", reply)
	}
}

func TestRespondUngroundedIncludesSupplementaryContext(t *testing.T) {
	var gotSystem string
	r := NewResponder(&fakeLLM{
		chatFn: func(ctx context.Context, model string, messages []llm.Message, jsonOnly bool) (string, error) {
			gotSystem = messages[0].Content
			return "ok", nil
		},
	}, "gpt-4o", discardLogger())

	r.Respond(context.Background(), nil, nil, []string{"keyword fallback article content"})
	if !strings.Contains(gotSystem, "keyword fallback article content") {
		t.Errorf("supplementary context missing from prompt: %q", gotSystem)
	}
	if !strings.Contains(gotSystem, "unverified") {
		t.Errorf("supplementary context not marked low-trust: %q", gotSystem)
	}
}
