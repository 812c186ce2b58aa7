package intake

import (
	"strings"

	"github.com/counselgate/counselgate/internal/storage"
)

// PickAttorney chooses an available attorney for a category: the first one
// whose expertise overlaps the category, otherwise the least-loaded
// available attorney. The candidates slice is expected to be sorted by
// active request count ascending (ListAvailableAttorneys order). Returns
// nil when nobody is available.
func PickAttorney(candidates []storage.Attorney, category string) *storage.Attorney {
	if len(candidates) == 0 {
		return nil
	}

	words := strings.FieldsFunc(strings.ToLower(category), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})

	for i := range candidates {
		for _, exp := range candidates[i].Expertise {
			e := strings.ToLower(exp)
			for _, w := range words {
				if strings.Contains(e, w) || strings.Contains(w, e) {
					return &candidates[i]
				}
			}
		}
	}
	return &candidates[0]
}
