package resolve

import (
	"errors"
	"strings"

	"github.com/wf-cli/wf/internal/match"
	"github.com/wf-cli/wf/internal/registry"
)

// ErrCancelled is returned by a Selector when the user backs out. It is a
// distinct outcome from having no match and callers must branch on it.
var ErrCancelled = errors.New("selection cancelled")

// ErrNotInteractive is the Selector's defensive failure when invoked without
// a capable terminal. The controller routes around interactive selection
// beforehand, so seeing this indicates a wiring bug.
var ErrNotInteractive = errors.New("interactive selector requires a terminal")

type OutcomeKind string

const (
	OutcomeAutoSelected OutcomeKind = "auto_selected"
	OutcomeSelected     OutcomeKind = "selected"
	OutcomeSuggestions  OutcomeKind = "suggestions"
	OutcomeNoMatch      OutcomeKind = "no_match"
	OutcomeCancelled    OutcomeKind = "cancelled"
)

// Outcome is the tagged result of one resolution. Candidate is set for
// AutoSelected and Selected; Match additionally carries score and reason for
// AutoSelected; Ranked carries the filtered list for Suggestions.
type Outcome struct {
	Kind      OutcomeKind
	Candidate registry.Candidate
	Match     match.Result
	Ranked    match.RankedList
}

func (o Outcome) ExitCode() int {
	switch o.Kind {
	case OutcomeAutoSelected, OutcomeSelected:
		return 0
	default:
		return 1
	}
}

// Selector prompts the user to pick one candidate for the query. It returns
// ErrCancelled on user cancellation and ErrNotInteractive when no capable
// terminal is available.
type Selector func(query string, candidates []registry.Candidate) (registry.Candidate, error)

// Controller decides between auto-execution, interactive selection and
// suggest-and-fail. Interactive must only be true when both ends of the
// terminal are capable; uncertainty routes non-interactive.
type Controller struct {
	Config      match.Config
	Interactive bool
	Selector    Selector
}

func (c Controller) Resolve(query string, candidates []registry.Candidate) Outcome {
	query = strings.TrimSpace(query)
	if len(candidates) == 0 {
		return Outcome{Kind: OutcomeNoMatch}
	}

	ranked := match.Rank(query, candidates, c.Config)
	if !c.Interactive || c.Selector == nil {
		return c.resolveNonInteractive(query, ranked)
	}

	if len(ranked) == 1 && ranked[0].Score == 100 {
		return Outcome{Kind: OutcomeAutoSelected, Candidate: ranked[0].Candidate, Match: ranked[0]}
	}

	chosen, err := c.Selector(query, candidates)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return Outcome{Kind: OutcomeCancelled}
		}
		// Selector infrastructure failed; degrade to suggestions rather
		// than abort the resolution.
		return c.resolveNonInteractive(query, ranked)
	}
	return Outcome{Kind: OutcomeSelected, Candidate: chosen}
}

func (c Controller) resolveNonInteractive(query string, ranked match.RankedList) Outcome {
	if query == "" || len(ranked) == 0 {
		return Outcome{Kind: OutcomeNoMatch}
	}
	if ranked[0].Score >= c.Config.AutoSelectThreshold {
		return Outcome{Kind: OutcomeAutoSelected, Candidate: ranked[0].Candidate, Match: ranked[0]}
	}
	return Outcome{Kind: OutcomeSuggestions, Ranked: ranked}
}

// QuickSelect bypasses the full flow when confidence is already unambiguous.
func (c Controller) QuickSelect(query string, candidates []registry.Candidate) (match.Result, bool) {
	return match.QuickSelect(query, candidates, c.Config)
}
