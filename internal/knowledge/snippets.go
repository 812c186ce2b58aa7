package knowledge

import (
	"sort"
	"strings"
)

// minSectionLength filters out fragments too short to carry meaning.
const minSectionLength = 20

// ExtractSnippets returns up to maxSnippets query-relevant text blocks from
// document, highest-scored first. Each block is the matched line with its
// neighboring lines for context. The ranking is a term-occurrence heuristic
// with a bonus for headings and list items; ties keep document order. When
// the query has no usable terms the first paragraphs are returned instead.
func ExtractSnippets(document, query string, maxSnippets int) []string {
	if maxSnippets <= 0 || document == "" {
		return nil
	}

	terms := searchTerms(query)
	if len(terms) == 0 {
		return firstParagraphs(document, maxSnippets)
	}

	lines := strings.Split(document, "\n")

	type scored struct {
		index int
		score int
	}
	var candidates []scored
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < minSectionLength {
			continue
		}

		lower := strings.ToLower(trimmed)
		score := 0
		for _, term := range terms {
			score += 2 * strings.Count(lower, term)
		}
		if score == 0 {
			continue
		}
		if isHeadingOrListItem(trimmed) {
			score++
		}
		candidates = append(candidates, scored{index: i, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxSnippets {
		candidates = candidates[:maxSnippets]
	}

	var snippets []string
	for _, c := range candidates {
		var parts []string
		if c.index > 0 {
			if prev := strings.TrimSpace(lines[c.index-1]); prev != "" {
				parts = append(parts, prev)
			}
		}
		parts = append(parts, strings.TrimSpace(lines[c.index]))
		if c.index+1 < len(lines) {
			if next := strings.TrimSpace(lines[c.index+1]); next != "" {
				parts = append(parts, next)
			}
		}
		snippets = append(snippets, strings.Join(parts, "\n"))
	}
	return snippets
}

func isHeadingOrListItem(line string) bool {
	if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") ||
		strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•") {
		return true
	}
	// Numbered list marker like "1." or "12)".
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	return i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')')
}

func firstParagraphs(document string, n int) []string {
	var paragraphs []string
	for _, p := range strings.Split(document, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
		if len(paragraphs) == n {
			break
		}
	}
	return paragraphs
}
