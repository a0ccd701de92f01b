package match

import (
	"strings"
	"unicode"

	"github.com/wf-cli/wf/internal/registry"
)

type Reason string

const (
	ReasonExact       Reason = "exact"
	ReasonPrefix      Reason = "prefix"
	ReasonAcronym     Reason = "acronym"
	ReasonTokenSet    Reason = "token_set"
	ReasonPartial     Reason = "partial"
	ReasonFuzzy       Reason = "fuzzy"
	ReasonDescription Reason = "description"
)

func (r Reason) Explain() string {
	switch r {
	case ReasonExact:
		return "exact match"
	case ReasonPrefix:
		return "prefix match"
	case ReasonAcronym:
		return "acronym match"
	case ReasonTokenSet:
		return "token set match"
	case ReasonPartial:
		return "substring match"
	case ReasonFuzzy:
		return "fuzzy match"
	case ReasonDescription:
		return "description match"
	default:
		return string(r)
	}
}

type Config struct {
	MinScore            int
	MaxResults          int
	QuickSelectMinScore int
	AutoSelectThreshold int
	DescriptionWeight   float64
}

func DefaultConfig() Config {
	return Config{
		MinScore:            60,
		MaxResults:          10,
		QuickSelectMinScore: 90,
		AutoSelectThreshold: 80,
		DescriptionWeight:   0.5,
	}
}

type Result struct {
	Candidate registry.Candidate
	Score     int
	Reason    Reason
}

type RankedList []Result

// Score runs every strategy for one (query, candidate) pair and keeps the
// best. Strategies are evaluated in tie-break priority order, so on equal
// scores the earlier strategy names the reason.
func Score(query string, candidate registry.Candidate, cfg Config) Result {
	q := strings.ToLower(strings.TrimSpace(query))
	name := strings.ToLower(candidate.Name)

	best := 0
	reason := ReasonFuzzy
	consider := func(score int, r Reason) {
		if score > best {
			best = score
			reason = r
		}
	}

	if name == q {
		consider(100, ReasonExact)
	}
	if strings.HasPrefix(name, q) {
		consider(95, ReasonPrefix)
	}
	if acronymMatch(q, tokenize(name)) {
		consider(85, ReasonAcronym)
	}
	consider(tokenSetRatio(q, name), ReasonTokenSet)
	consider(partialRatio(q, name), ReasonPartial)
	consider(ratio(q, name), ReasonFuzzy)
	if desc := strings.ToLower(strings.TrimSpace(candidate.Description)); desc != "" {
		weighted := int(float64(ratio(q, desc)) * cfg.DescriptionWeight)
		consider(weighted, ReasonDescription)
	}

	return Result{Candidate: candidate, Score: clampScore(best), Reason: reason}
}

// tokenize splits a name on -, _ and whitespace.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
}

// acronymMatch reports whether query forms a left-to-right subsequence over
// the token initials, allowing contiguous continuation inside the token whose
// initial was last consumed. "gst" matches [git status]: g=initial(git),
// s=initial(status), t=2nd char of status.
func acronymMatch(query string, tokens []string) bool {
	if query == "" || len(tokens) == 0 {
		return false
	}
	runes := make([][]rune, 0, len(tokens))
	for _, token := range tokens {
		runes = append(runes, []rune(token))
	}
	q := []rune(query)

	var walk func(qi, ti, ci int) bool
	walk = func(qi, ti, ci int) bool {
		if qi == len(q) {
			return true
		}
		// initials first
		for tj := ti + 1; tj < len(runes); tj++ {
			if runes[tj][0] == q[qi] && walk(qi+1, tj, 1) {
				return true
			}
		}
		if ci < len(runes[ti]) && runes[ti][ci] == q[qi] {
			return walk(qi+1, ti, ci+1)
		}
		return false
	}

	for ti := range runes {
		if runes[ti][0] == q[0] && walk(1, ti, 1) {
			return true
		}
	}
	return false
}

// ratio is the normalized edit-distance similarity, truncated to int:
// 100 * (1 - distance/maxLen).
func ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 100
	}
	distance := levenshtein(ra, rb)
	return int(100 * (1 - float64(distance)/float64(longest)))
}

// partialRatio scores the best-matching contiguous window of the longer
// string against the shorter one. Windowed scores are demoted by 0.9 so a
// bare substring hit (90) stays below a prefix (95); equal lengths fall
// back to the plain ratio.
func partialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 100
	}
	if len(shorter) == len(longer) {
		return ratio(a, b)
	}

	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		window := longer[start : start+len(shorter)]
		distance := levenshtein(shorter, window)
		score := int(100 * (1 - float64(distance)/float64(len(shorter))))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return int(0.9 * float64(best))
}

// tokenSetRatio neutralizes word order by comparing the sorted, deduplicated
// token sets of both strings.
func tokenSetRatio(a, b string) int {
	return ratio(sortedTokenSet(a), sortedTokenSet(b))
}

func sortedTokenSet(s string) string {
	tokens := tokenize(s)
	seen := map[string]struct{}{}
	unique := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		unique = append(unique, token)
	}
	for i := 1; i < len(unique); i++ {
		for j := i; j > 0 && unique[j] < unique[j-1]; j-- {
			unique[j], unique[j-1] = unique[j-1], unique[j]
		}
	}
	return strings.Join(unique, " ")
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	previous := make([]int, len(b)+1)
	current := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		previous[j] = j
	}
	for i := 1; i <= len(a); i++ {
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = minOf(
				previous[j]+1,
				current[j-1]+1,
				previous[j-1]+cost,
			)
		}
		previous, current = current, previous
	}
	return previous[len(b)]
}

func minOf(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
