package suggest

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/wf-cli/wf/internal/match"
)

// Non-interactive output stays readable: at most five entries no matter how
// large MaxResults is.
const maxDisplayed = 5
const maxDescription = 50

// Report renders the top matches for a query as plain text. The exit-code
// policy for this path belongs to the caller, not here.
func Report(query string, ranked match.RankedList) string {
	if len(ranked) == 0 {
		return fmt.Sprintf("no match for %q", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "No exact match for %q. Did you mean one of these?\n", query)
	shown := ranked
	if len(shown) > maxDisplayed {
		shown = shown[:maxDisplayed]
	}
	for _, result := range shown {
		line := fmt.Sprintf("  • %s (%d%%)", result.Candidate.Name, result.Score)
		if desc := strings.TrimSpace(result.Candidate.Description); desc != "" {
			line += " - " + runewidth.Truncate(desc, maxDescription, "...")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
