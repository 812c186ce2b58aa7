package knowledge

import (
	"sort"

	"github.com/counselgate/counselgate/internal/storage"
)

// Match is one scored search result.
type Match struct {
	Article    storage.KnowledgeArticle
	Similarity float64
}

// SemanticSearch ranks articles by cosine similarity against the query
// vector and returns the top limit matches. Articles without an embedding,
// or with an embedding of a different dimension than the query, are skipped
// rather than scored at zero. Threshold filtering is the caller's job.
func SemanticSearch(queryVector []float32, articles []storage.KnowledgeArticle, limit int) []Match {
	if len(queryVector) == 0 || limit <= 0 {
		return nil
	}

	var matches []Match
	for _, a := range articles {
		if a.Embedding == nil || len(a.Embedding) != len(queryVector) {
			continue
		}
		matches = append(matches, Match{
			Article:    a,
			Similarity: CosineSimilarity(queryVector, a.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// FilterRelevant keeps only matches whose similarity meets the threshold.
// A below-threshold corpus means "nothing found", never a best-effort weak
// match.
func FilterRelevant(matches []Match, threshold float64) []Match {
	var relevant []Match
	for _, m := range matches {
		if m.Similarity >= threshold {
			relevant = append(relevant, m)
		}
	}
	return relevant
}
