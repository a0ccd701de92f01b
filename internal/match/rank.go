package match

import (
	"sort"
	"strings"

	"github.com/wf-cli/wf/internal/registry"
)

// Rank scores every candidate, drops entries below MinScore, sorts by score
// descending with name-ascending tie-break, and truncates to MaxResults.
// An empty query yields nil; scoring against nothing is meaningless and the
// callers branch on it explicitly.
func Rank(query string, candidates []registry.Candidate, cfg Config) RankedList {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	results := make(RankedList, 0, len(candidates))
	for _, candidate := range candidates {
		result := Score(query, candidate, cfg)
		if result.Score < cfg.MinScore {
			continue
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Candidate.Name < results[j].Candidate.Name
		}
		return results[i].Score > results[j].Score
	})

	if cfg.MaxResults > 0 && len(results) > cfg.MaxResults {
		results = results[:cfg.MaxResults]
	}
	return results
}

// QuickSelect is the caller-driven shortcut: the single best match at or
// above QuickSelectMinScore, or nothing.
func QuickSelect(query string, candidates []registry.Candidate, cfg Config) (Result, bool) {
	quick := cfg
	quick.MinScore = cfg.QuickSelectMinScore
	quick.MaxResults = 1
	ranked := Rank(query, candidates, quick)
	if len(ranked) == 0 {
		return Result{}, false
	}
	return ranked[0], true
}
