package knowledge

import (
	"testing"

	"github.com/counselgate/counselgate/internal/storage"
)

func article(id string, embedding []float32) storage.KnowledgeArticle {
	return storage.KnowledgeArticle{ID: id, Title: id, Embedding: embedding}
}

func TestSemanticSearchRanksBySimilarity(t *testing.T) {
	query := []float32{1, 0, 0}
	articles := []storage.KnowledgeArticle{
		article("far", []float32{0, 1, 0}),
		article("close", []float32{0.9, 0.1, 0}),
		article("exact", []float32{1, 0, 0}),
	}

	matches := SemanticSearch(query, articles, 10)
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	if matches[0].Article.ID != "exact" || matches[1].Article.ID != "close" || matches[2].Article.ID != "far" {
		t.Errorf("order = %s, %s, %s", matches[0].Article.ID, matches[1].Article.ID, matches[2].Article.ID)
	}
}

func TestSemanticSearchSkipsUnembeddable(t *testing.T) {
	query := []float32{1, 0, 0}
	articles := []storage.KnowledgeArticle{
		article("no-embedding", nil),
		article("wrong-dimension", []float32{1, 0}),
		article("ok", []float32{0.5, 0.5, 0}),
	}

	matches := SemanticSearch(query, articles, 10)
	if len(matches) != 1 || matches[0].Article.ID != "ok" {
		t.Fatalf("matches = %+v, want only ok", matches)
	}
}

func TestSemanticSearchLimit(t *testing.T) {
	query := []float32{1, 0}
	articles := []storage.KnowledgeArticle{
		article("a", []float32{1, 0}),
		article("b", []float32{0.9, 0.1}),
		article("c", []float32{0.8, 0.2}),
	}

	matches := SemanticSearch(query, articles, 2)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
}

func TestFilterRelevantEmptyBelowThreshold(t *testing.T) {
	query := []float32{1, 0}
	articles := []storage.KnowledgeArticle{
		article("weak", []float32{0.3, 0.95}),
	}

	matches := SemanticSearch(query, articles, 5)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	relevant := FilterRelevant(matches, 0.55)
	if len(relevant) != 0 {
		t.Errorf("below-threshold match treated as relevant: %+v", relevant)
	}
}

func TestFilterRelevantKeepsAtThreshold(t *testing.T) {
	matches := []Match{
		{Article: article("a", nil), Similarity: 0.55},
		{Article: article("b", nil), Similarity: 0.549},
	}
	relevant := FilterRelevant(matches, 0.55)
	if len(relevant) != 1 || relevant[0].Article.ID != "a" {
		t.Errorf("relevant = %+v, want only a", relevant)
	}
}

func TestKeywordSearchWeighting(t *testing.T) {
	articles := []storage.KnowledgeArticle{
		{ID: "title-hit", Title: "NDA Template Guide", Content: "general contract advice"},
		{ID: "body-hit", Title: "Contract Basics", Content: "mentions nda once in the body"},
	}

	matches := KeywordSearch("nda template", articles, 5)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Article.ID != "title-hit" {
		t.Errorf("top match = %s, want title-hit", matches[0].Article.ID)
	}
}

func TestKeywordSearchStopWordsOnly(t *testing.T) {
	articles := []storage.KnowledgeArticle{
		{ID: "a", Title: "The Guide", Content: "the and or but"},
	}
	if matches := KeywordSearch("the and it", articles, 5); matches != nil {
		t.Errorf("stop-word-only query returned %+v", matches)
	}
}

func TestKeywordSearchNoMatches(t *testing.T) {
	articles := []storage.KnowledgeArticle{
		{ID: "a", Title: "Privacy Policy", Content: "GDPR requirements"},
	}
	if matches := KeywordSearch("trademark dispute", articles, 5); len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
}
