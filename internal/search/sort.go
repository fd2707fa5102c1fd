package search

import "sort"

// SortHits sorts hits by combined score (descending), then by record row (ascending),
// so equal scores always come back in dataset order.
func SortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score == hits[j].Score {
			return hits[i].Record.Row < hits[j].Record.Row
		}
		return hits[i].Score > hits[j].Score
	})
}
