// Package fusion merges independently ranked candidate lists.
package fusion

import (
	"sort"

	"github.com/kailas-cloud/furnsearch/internal/domain/search/candidate"
)

// DefaultK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const DefaultK = 60

// Config holds the fusion constant.
type Config struct {
	K int
}

// KOrDefault returns K, or DefaultK when unset.
func (c Config) KOrDefault() int {
	if c.K <= 0 {
		return DefaultK
	}
	return c.K
}

// Fuse merges two rankings via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) over the lists containing d, ranks 1-indexed.
// The output is the union of ids ordered by fused score; ties keep first-seen order
// (a before b). When an id appears in both lists the payload from a is kept.
func Fuse(a, b []candidate.Candidate, k int) []candidate.Candidate {
	if k <= 0 {
		k = DefaultK
	}

	type scored struct {
		c     candidate.Candidate
		score float64
	}

	index := make(map[string]int, len(a)+len(b))
	merged := make([]scored, 0, len(a)+len(b))

	accumulate := func(list []candidate.Candidate) {
		for rank, c := range list {
			s := 1.0 / float64(k+rank+1)
			if i, ok := index[c.ID()]; ok {
				merged[i].score += s
				continue
			}
			index[c.ID()] = len(merged)
			merged = append(merged, scored{c: c, score: s})
		}
	}
	accumulate(a)
	accumulate(b)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].score > merged[j].score
	})

	results := make([]candidate.Candidate, len(merged))
	for i, m := range merged {
		results[i] = m.c.WithScore(m.score)
	}
	return results
}
