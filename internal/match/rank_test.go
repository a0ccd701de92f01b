package match

import (
	"fmt"
	"testing"

	"github.com/wf-cli/wf/internal/registry"
)

func deployCandidates() []registry.Candidate {
	return []registry.Candidate{
		{Name: "deployment_check"},
		{Name: "deploy_prod"},
		{Name: "deploy"},
	}
}

func TestRankOrdersExactAboveLongerPrefixes(t *testing.T) {
	ranked := Rank("deploy", deployCandidates(), DefaultConfig())
	if len(ranked) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ranked))
	}

	wantNames := []string{"deploy", "deploy_prod", "deployment_check"}
	wantScores := []int{100, 95, 95}
	for i := range wantNames {
		if ranked[i].Candidate.Name != wantNames[i] {
			t.Fatalf("position %d: expected %q, got %q", i, wantNames[i], ranked[i].Candidate.Name)
		}
		if ranked[i].Score != wantScores[i] {
			t.Fatalf("position %d: expected score %d, got %d", i, wantScores[i], ranked[i].Score)
		}
	}
	if ranked[0].Reason != ReasonExact {
		t.Fatalf("expected exact reason for top result, got %q", ranked[0].Reason)
	}
}

func TestRankAcronymBeatsUnrelatedName(t *testing.T) {
	candidates := []registry.Candidate{
		{Name: "git_status", Description: "Enhanced git status with colors"},
		{Name: "backup_db", Description: "Backup database with timestamp"},
	}
	ranked := Rank("gst", candidates, DefaultConfig())
	if len(ranked) == 0 {
		t.Fatal("expected at least one result")
	}
	if ranked[0].Candidate.Name != "git_status" {
		t.Fatalf("expected git_status first, got %q", ranked[0].Candidate.Name)
	}
	if ranked[0].Reason != ReasonAcronym {
		t.Fatalf("expected acronym reason, got %q", ranked[0].Reason)
	}
}

func TestRankFiltersBelowMinScore(t *testing.T) {
	candidates := append(deployCandidates(), registry.Candidate{Name: "unrelated_thing"})
	ranked := Rank("deploy", candidates, DefaultConfig())
	for _, result := range ranked {
		if result.Candidate.Name == "unrelated_thing" {
			t.Fatalf("expected unrelated_thing to be filtered, scored %d", result.Score)
		}
		if result.Score < DefaultConfig().MinScore {
			t.Fatalf("result %q below min score: %d", result.Candidate.Name, result.Score)
		}
	}
}

func TestRankTruncatesToMaxResults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxResults = 2
	ranked := Rank("deploy", deployCandidates(), cfg)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	if ranked[0].Candidate.Name != "deploy" {
		t.Fatalf("truncation must keep the best result, got %q", ranked[0].Candidate.Name)
	}
}

func TestRankEmptyQueryYieldsNothing(t *testing.T) {
	if ranked := Rank("", deployCandidates(), DefaultConfig()); ranked != nil {
		t.Fatalf("expected nil for empty query, got %d results", len(ranked))
	}
	if ranked := Rank("   ", deployCandidates(), DefaultConfig()); ranked != nil {
		t.Fatalf("expected nil for blank query, got %d results", len(ranked))
	}
}

func TestRankScoresNeverIncrease(t *testing.T) {
	candidates := append(deployCandidates(),
		registry.Candidate{Name: "git_status"},
		registry.Candidate{Name: "git_stash"},
	)
	ranked := Rank("dep", candidates, DefaultConfig())
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("scores increased at %d: %d after %d", i, ranked[i].Score, ranked[i-1].Score)
		}
		if ranked[i].Score == ranked[i-1].Score && ranked[i].Candidate.Name < ranked[i-1].Candidate.Name {
			t.Fatalf("name tie-break violated at %d: %q after %q", i, ranked[i].Candidate.Name, ranked[i-1].Candidate.Name)
		}
	}
}

func TestQuickSelectAgreesWithRank(t *testing.T) {
	candidates := deployCandidates()
	cfg := DefaultConfig()

	for _, query := range []string{"deploy", "depl", "gst", "zzz"} {
		strict := cfg
		strict.MinScore = cfg.QuickSelectMinScore
		strict.MaxResults = 1
		ranked := Rank(query, candidates, strict)

		result, ok := QuickSelect(query, candidates, cfg)
		if ok != (len(ranked) > 0) {
			t.Fatalf("query %q: quick select ok=%v but strict rank had %d results", query, ok, len(ranked))
		}
		if ok && result.Candidate.Name != ranked[0].Candidate.Name {
			t.Fatalf("query %q: quick select picked %q, strict rank %q", query, result.Candidate.Name, ranked[0].Candidate.Name)
		}
	}
}

func BenchmarkRank(b *testing.B) {
	candidates := make([]registry.Candidate, 0, 300)
	for i := 0; i < 300; i++ {
		candidates = append(candidates, registry.Candidate{
			Name:        fmt.Sprintf("command_%03d", i),
			Description: fmt.Sprintf("generated command number %d", i),
		})
	}
	cfg := DefaultConfig()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Rank("command_042", candidates, cfg)
	}
}
