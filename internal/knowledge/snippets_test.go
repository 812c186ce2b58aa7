package knowledge

import (
	"reflect"
	"strings"
	"testing"
)

const sampleDoc = `# Standard NDA Template and Usage Guidelines

## Pre-Approved Template
Our standard mutual NDA template has been pre-approved for most vendor relationships.

## When Legal Review Is Required
Seek legal review if the other party requests significant modifications.
Deal value exceeding the approval limit also requires review.

Unrelated closing remarks about the contract management system.`

func TestExtractSnippetsRelevanceOrder(t *testing.T) {
	snippets := ExtractSnippets(sampleDoc, "NDA template", 2)
	if len(snippets) == 0 {
		t.Fatal("no snippets extracted")
	}
	if !strings.Contains(strings.ToLower(snippets[0]), "nda template") {
		t.Errorf("top snippet does not mention the query: %q", snippets[0])
	}
}

func TestExtractSnippetsIncludesContext(t *testing.T) {
	snippets := ExtractSnippets(sampleDoc, "vendor relationships", 1)
	if len(snippets) != 1 {
		t.Fatalf("got %d snippets, want 1", len(snippets))
	}
	// Context block should carry the preceding heading line.
	if !strings.Contains(snippets[0], "Pre-Approved Template") {
		t.Errorf("snippet missing surrounding context: %q", snippets[0])
	}
}

func TestExtractSnippetsDeterministic(t *testing.T) {
	first := ExtractSnippets(sampleDoc, "legal review template", 3)
	for range 5 {
		if again := ExtractSnippets(sampleDoc, "legal review template", 3); !reflect.DeepEqual(first, again) {
			t.Fatalf("output changed between calls: %v vs %v", first, again)
		}
	}
}

func TestExtractSnippetsStopWordQueryFallsBack(t *testing.T) {
	snippets := ExtractSnippets(sampleDoc, "the and it", 2)
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want 2 paragraphs", len(snippets))
	}
	if !strings.Contains(snippets[0], "Standard NDA Template") {
		t.Errorf("fallback should start with the first paragraph: %q", snippets[0])
	}
}

func TestExtractSnippetsNoMatches(t *testing.T) {
	if snippets := ExtractSnippets(sampleDoc, "maritime salvage law", 3); len(snippets) != 0 {
		t.Errorf("got %d snippets for unrelated query, want 0", len(snippets))
	}
}

func TestExtractSnippetsRespectsLimit(t *testing.T) {
	if snippets := ExtractSnippets(sampleDoc, "template review legal", 1); len(snippets) > 1 {
		t.Errorf("got %d snippets, want at most 1", len(snippets))
	}
}

func TestExtractSnippetsEmptyDocument(t *testing.T) {
	if snippets := ExtractSnippets("", "query terms", 3); snippets != nil {
		t.Errorf("got %v for empty document", snippets)
	}
}
