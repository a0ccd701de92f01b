package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Candidate is one runnable command as loaded from a portable JSON file.
// Name is required and unique within a snapshot; everything else is optional.
type Candidate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Group       string `json:"group,omitempty"`
	Code        string `json:"code,omitempty"`
}

// Tag returns the short badge shown next to the name in listings.
func (c Candidate) Tag() string {
	if lang := strings.TrimSpace(c.Language); lang != "" && !strings.EqualFold(lang, "shell") {
		return lang
	}
	if group := strings.TrimSpace(c.Group); group != "" {
		return group
	}
	return strings.TrimSpace(c.Language)
}

func Validate(c Candidate) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("command name is required")
	}
	return nil
}

// Load reads every *.json command file in dir and returns a name-sorted
// snapshot. A missing directory is an empty registry, not an error.
// Unreadable or malformed files are skipped; duplicate names are not.
func Load(dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read commands dir: %w", err)
	}

	candidates := make([]Candidate, 0, len(entries))
	seen := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		payload, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var candidate Candidate
		if err := json.Unmarshal(payload, &candidate); err != nil {
			continue
		}
		candidate.Name = strings.TrimSpace(candidate.Name)
		if err := Validate(candidate); err != nil {
			continue
		}
		key := strings.ToLower(candidate.Name)
		if origin, ok := seen[key]; ok {
			return nil, fmt.Errorf("duplicate command name %q (in %s and %s)", candidate.Name, origin, entry.Name())
		}
		seen[key] = entry.Name()
		candidates = append(candidates, candidate)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name < candidates[j].Name
	})
	return candidates, nil
}
