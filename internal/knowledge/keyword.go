package knowledge

import (
	"regexp"
	"sort"
	"strings"

	"github.com/counselgate/counselgate/internal/storage"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "is": true, "are": true, "was": true, "were": true,
	"been": true, "be": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "can": true,
	"i": true, "you": true, "we": true, "they": true, "it": true,
	"my": true, "our": true, "your": true,
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// searchTerms lowercases the query, strips punctuation, and drops short
// words and stop words.
func searchTerms(query string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(query), " ")
	var terms []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) >= 2 && !stopWords[w] {
			terms = append(terms, w)
		}
	}
	return terms
}

// Occurrence weights for keyword relevance scoring. Title and tag matches
// count more than matches buried in the body.
const (
	titleWeight   = 3
	tagWeight     = 2
	excerptWeight = 2
	contentWeight = 1
)

// KeywordSearch is the low-trust fallback used when embedding is
// unavailable. It scores articles by weighted term occurrence and returns
// the top limit matches with a nonzero score. Similarity on the returned
// matches holds the raw keyword score, not a cosine value.
func KeywordSearch(query string, articles []storage.KnowledgeArticle, limit int) []Match {
	terms := searchTerms(query)
	if len(terms) == 0 || limit <= 0 {
		return nil
	}

	var matches []Match
	for _, a := range articles {
		title := strings.ToLower(a.Title)
		excerpt := strings.ToLower(a.Excerpt)
		content := strings.ToLower(a.Content)
		tags := strings.ToLower(strings.Join(a.Tags, " "))

		score := 0
		for _, term := range terms {
			score += titleWeight * strings.Count(title, term)
			score += tagWeight * strings.Count(tags, term)
			score += excerptWeight * strings.Count(excerpt, term)
			score += contentWeight * strings.Count(content, term)
		}
		if score > 0 {
			matches = append(matches, Match{Article: a, Similarity: float64(score)})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
