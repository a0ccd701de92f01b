package ui

import "testing"

func TestNormalizeBackend(t *testing.T) {
	cases := map[string]string{
		"":           BackendAuto,
		"auto":       BackendAuto,
		"BubbleTea":  BackendBubbleTea,
		" huh ":      BackendHuh,
		"tview":      BackendTView,
		"plain":      BackendPlain,
		"ncurses":    BackendAuto,
		"AUTOdetect": BackendAuto,
	}
	for input, want := range cases {
		if got := NormalizeBackend(input); got != want {
			t.Fatalf("NormalizeBackend(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestIsInteractiveBackend(t *testing.T) {
	if IsInteractiveBackend(BackendPlain) {
		t.Fatal("plain backend must not be interactive")
	}
	for _, backend := range []string{BackendAuto, BackendBubbleTea, BackendHuh, BackendTView} {
		if !IsInteractiveBackend(backend) {
			t.Fatalf("backend %q should be interactive", backend)
		}
	}
}

func TestBackendCandidatesOrder(t *testing.T) {
	got := backendCandidates(BackendHuh)
	want := []string{BackendHuh, BackendBubbleTea, BackendTView}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if got := backendCandidates(BackendPlain); len(got) != 1 || got[0] != BackendPlain {
		t.Fatalf("plain must stand alone, got %v", got)
	}

	if got := backendCandidates("anything"); got[0] != BackendBubbleTea {
		t.Fatalf("unknown backends fall back to the default chain, got %v", got)
	}
}
