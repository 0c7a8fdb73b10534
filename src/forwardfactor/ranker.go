package forwardfactor

import (
	"sort"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

// RankByRating orders analyses by rating, highest first. Ties keep their input
// order. The input slice is not modified.
func RankByRating(analyses []*eventmodels.Analysis) []*eventmodels.Analysis {
	ranked := make([]*eventmodels.Analysis, len(analyses))
	copy(ranked, analyses)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rating > ranked[j].Rating
	})

	return ranked
}

func TopN[T any](items []T, n int) []T {
	if n < 0 || n >= len(items) {
		return items
	}

	return items[:n]
}
