package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/wf-cli/wf/internal/appdirs"
)

type MatchConfig struct {
	MinScore            int     `toml:"min_score" json:"min_score"`
	MaxResults          int     `toml:"max_results" json:"max_results"`
	QuickSelectMinScore int     `toml:"quick_select_min_score" json:"quick_select_min_score"`
	AutoSelectThreshold int     `toml:"auto_select_threshold" json:"auto_select_threshold"`
	DescriptionWeight   float64 `toml:"description_weight" json:"description_weight"`
}

type UIConfig struct {
	Backend string `toml:"backend" json:"backend"`
}

type RegistryConfig struct {
	Dir string `toml:"dir,omitempty" json:"dir,omitempty"`
}

type Config struct {
	Version  int            `toml:"version" json:"version"`
	Match    MatchConfig    `toml:"match" json:"match"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Registry RegistryConfig `toml:"registry" json:"registry"`
}

func Default() Config {
	return Config{
		Version: 1,
		Match: MatchConfig{
			MinScore:            60,
			MaxResults:          10,
			QuickSelectMinScore: 90,
			AutoSelectThreshold: 80,
			DescriptionWeight:   0.5,
		},
		UI: UIConfig{
			Backend: "bubbletea",
		},
	}
}

func LoadOrCreate() (Config, string, error) {
	path, err := appdirs.ConfigFilePath()
	if err != nil {
		return Config{}, "", err
	}

	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if _, err := appdirs.EnsureConfigDir(); err != nil {
			return Config{}, "", err
		}
		if err := Save(path, cfg); err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	}
	if err != nil {
		return Config{}, "", fmt.Errorf("could not stat config path: %w", err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return Config{}, "", fmt.Errorf("could not read config file: %w", err)
	}
	if err := toml.Unmarshal(payload, &cfg); err != nil {
		return Config{}, "", fmt.Errorf("could not parse config file: %w", err)
	}
	cfg.normalize()
	return cfg, path, nil
}

func Save(path string, cfg Config) error {
	cfg.normalize()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("could not create config dir: %w", err)
	}

	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".wf-config-*.toml")
	if err != nil {
		return fmt.Errorf("could not create temp config file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}

	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp config file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp config file permissions: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("could not atomically replace config file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("could not secure config file permissions: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()
	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Match.MinScore < 0 || c.Match.MinScore > 100 {
		c.Match.MinScore = defaults.Match.MinScore
	}
	if c.Match.MaxResults <= 0 {
		c.Match.MaxResults = defaults.Match.MaxResults
	}
	if c.Match.QuickSelectMinScore <= 0 || c.Match.QuickSelectMinScore > 100 {
		c.Match.QuickSelectMinScore = defaults.Match.QuickSelectMinScore
	}
	if c.Match.AutoSelectThreshold <= 0 || c.Match.AutoSelectThreshold > 100 {
		c.Match.AutoSelectThreshold = defaults.Match.AutoSelectThreshold
	}
	if c.Match.DescriptionWeight <= 0 || c.Match.DescriptionWeight > 1 {
		c.Match.DescriptionWeight = defaults.Match.DescriptionWeight
	}
	c.UI.Backend = normalizeUIBackend(c.UI.Backend, defaults.UI.Backend)
	c.Registry.Dir = strings.TrimSpace(c.Registry.Dir)
}

func (c *Config) Set(key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)

	switch key {
	case "match.min_score":
		n, err := parseScore(value)
		if err != nil {
			return fmt.Errorf("match.min_score must be between 0 and 100")
		}
		c.Match.MinScore = n
	case "match.max_results":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("match.max_results must be a positive number")
		}
		c.Match.MaxResults = n
	case "match.quick_select_min_score":
		n, err := parseScore(value)
		if err != nil || n == 0 {
			return fmt.Errorf("match.quick_select_min_score must be between 1 and 100")
		}
		c.Match.QuickSelectMinScore = n
	case "match.auto_select_threshold":
		n, err := parseScore(value)
		if err != nil || n == 0 {
			return fmt.Errorf("match.auto_select_threshold must be between 1 and 100")
		}
		c.Match.AutoSelectThreshold = n
	case "match.description_weight":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n <= 0 || n > 1 {
			return fmt.Errorf("match.description_weight must be between 0 and 1")
		}
		c.Match.DescriptionWeight = n
	case "ui.backend":
		c.UI.Backend = normalizeUIBackend(value, "")
		if c.UI.Backend == "" {
			return fmt.Errorf("ui.backend must be one of auto|bubbletea|huh|tview|plain")
		}
	case "registry.dir":
		c.Registry.Dir = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	c.normalize()
	return nil
}

func (c Config) Get(key string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(key)) {
	case "match.min_score":
		return strconv.Itoa(c.Match.MinScore), nil
	case "match.max_results":
		return strconv.Itoa(c.Match.MaxResults), nil
	case "match.quick_select_min_score":
		return strconv.Itoa(c.Match.QuickSelectMinScore), nil
	case "match.auto_select_threshold":
		return strconv.Itoa(c.Match.AutoSelectThreshold), nil
	case "match.description_weight":
		return fmt.Sprintf("%g", c.Match.DescriptionWeight), nil
	case "ui.backend":
		return c.UI.Backend, nil
	case "registry.dir":
		return c.Registry.Dir, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

func parseScore(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("score out of range: %d", n)
	}
	return n, nil
}

func normalizeUIBackend(value string, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "auto", "bubbletea", "huh", "tview", "plain":
		return normalized
	default:
		return strings.ToLower(strings.TrimSpace(fallback))
	}
}
