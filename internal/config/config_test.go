package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func isolateConfigDir(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("APPDATA", tmp)
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.Match.MinScore != 60 {
		t.Fatalf("expected min score 60, got %d", cfg.Match.MinScore)
	}
	if cfg.Match.MaxResults != 10 {
		t.Fatalf("expected max results 10, got %d", cfg.Match.MaxResults)
	}
	if cfg.Match.QuickSelectMinScore != 90 {
		t.Fatalf("expected quick select score 90, got %d", cfg.Match.QuickSelectMinScore)
	}
	if cfg.Match.AutoSelectThreshold != 80 {
		t.Fatalf("expected auto select threshold 80, got %d", cfg.Match.AutoSelectThreshold)
	}
	if cfg.Match.DescriptionWeight != 0.5 {
		t.Fatalf("expected description weight 0.5, got %g", cfg.Match.DescriptionWeight)
	}
	if cfg.UI.Backend != "bubbletea" {
		t.Fatalf("expected bubbletea backend, got %q", cfg.UI.Backend)
	}
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	isolateConfigDir(t)

	cfg, path, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("fresh config must equal defaults: %+v", cfg)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %v", info.Mode().Perm())
	}

	// second load reads the same file back
	again, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again != cfg {
		t.Fatalf("reload drifted: %+v vs %+v", again, cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolateConfigDir(t)

	cfg, path, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := cfg.Set("match.min_score", "75"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cfg.Set("ui.backend", "huh"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	reloaded, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Match.MinScore != 75 {
		t.Fatalf("expected min score 75, got %d", reloaded.Match.MinScore)
	}
	if reloaded.UI.Backend != "huh" {
		t.Fatalf("expected huh backend, got %q", reloaded.UI.Backend)
	}

	// save must not leave its temp file behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("could not list config dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".wf-config-") {
			t.Fatalf("leftover temp file: %s", entry.Name())
		}
	}
}

func TestLoadNormalizesOutOfRangeValues(t *testing.T) {
	isolateConfigDir(t)

	if _, _, err := LoadOrCreate(); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}
	path := configPathForTest(t)
	broken := `version = 1

[match]
min_score = 500
max_results = -3
quick_select_min_score = 0
auto_select_threshold = 200
description_weight = 7.0

[ui]
backend = "gtk"
`
	if err := os.WriteFile(path, []byte(broken), 0o600); err != nil {
		t.Fatalf("could not write config: %v", err)
	}

	cfg, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Match != Default().Match {
		t.Fatalf("out-of-range values must normalize to defaults: %+v", cfg.Match)
	}
	if cfg.UI.Backend != Default().UI.Backend {
		t.Fatalf("unknown backend must normalize, got %q", cfg.UI.Backend)
	}
}

func configPathForTest(t *testing.T) string {
	t.Helper()
	_, path, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("could not resolve config path: %v", err)
	}
	return path
}

func TestSetRejectsInvalidValues(t *testing.T) {
	cfg := Default()
	invalid := map[string]string{
		"match.min_score":              "150",
		"match.max_results":            "0",
		"match.quick_select_min_score": "0",
		"match.auto_select_threshold":  "101",
		"match.description_weight":     "1.5",
		"ui.backend":                   "gtk",
		"unknown.key":                  "1",
	}
	for key, value := range invalid {
		if err := cfg.Set(key, value); err == nil {
			t.Fatalf("expected error for %s=%s", key, value)
		}
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	cfg := Default()
	pairs := map[string]string{
		"match.min_score":              "70",
		"match.max_results":            "5",
		"match.quick_select_min_score": "92",
		"match.auto_select_threshold":  "81",
		"match.description_weight":     "0.4",
		"ui.backend":                   "tview",
		"registry.dir":                 "/tmp/commands",
	}
	for key, value := range pairs {
		if err := cfg.Set(key, value); err != nil {
			t.Fatalf("set %s=%s failed: %v", key, value, err)
		}
		got, err := cfg.Get(key)
		if err != nil {
			t.Fatalf("get %s failed: %v", key, err)
		}
		if got != value {
			t.Fatalf("round trip %s: expected %q, got %q", key, value, got)
		}
	}

	if _, err := cfg.Get("unknown.key"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
