package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pelletier/go-toml/v2"

	"github.com/wf-cli/wf/internal/appdirs"
	"github.com/wf-cli/wf/internal/config"
	"github.com/wf-cli/wf/internal/match"
	"github.com/wf-cli/wf/internal/registry"
	"github.com/wf-cli/wf/internal/resolve"
	"github.com/wf-cli/wf/internal/suggest"
	"github.com/wf-cli/wf/internal/ui"
)

var version = "dev"

type options struct {
	UI          string
	CommandsDir string
	MinScore    int
	MaxResults  int
	JSON        bool
	Quiet       bool
	List        bool
	Quick       bool
	DryRun      bool
	Save        bool
	ShowConfig  bool
	Version     bool
}

type response struct {
	Query   string       `json:"query,omitempty"`
	Outcome string       `json:"outcome"`
	Command string       `json:"command,omitempty"`
	Score   int          `json:"score,omitempty"`
	Reason  string       `json:"reason,omitempty"`
	Matches []matchEntry `json:"matches,omitempty"`
	Message string       `json:"message,omitempty"`
}

type matchEntry struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

func main() {
	opts, query, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.Version {
		fmt.Println(version)
		return
	}

	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wf: could not load config: %v\n", err)
		os.Exit(1)
	}

	changes := map[string]string{}
	mergeFlagOverrides(opts, changes)
	for key, value := range changes {
		if err := cfg.Set(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "wf: invalid config change %s=%s: %v\n", key, value, err)
			os.Exit(1)
		}
	}
	if opts.Save && len(changes) > 0 {
		if err := config.Save(cfgPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "wf: could not save config: %v\n", err)
			os.Exit(1)
		}
	}

	if opts.ShowConfig {
		handleConfigShow(cfg, cfgPath, opts)
		return
	}

	dir, err := commandsDir(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wf: %v\n", err)
		os.Exit(1)
	}
	snapshot, err := registry.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wf: %v\n", err)
		os.Exit(1)
	}

	if opts.List {
		handleList(snapshot, dir, opts)
		return
	}

	os.Exit(handleResolve(query, snapshot, cfg, opts))
}

func parseArgs(args []string) (options, string, error) {
	fs := flag.NewFlagSet("wf", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts options
	fs.StringVar(&opts.UI, "ui", "", "override ui backend: auto|bubbletea|huh|tview|plain")
	fs.StringVar(&opts.CommandsDir, "commands", "", "override commands directory")
	fs.IntVar(&opts.MinScore, "min-score", 0, "override minimum match score (1-100)")
	fs.IntVar(&opts.MaxResults, "max-results", 0, "override maximum ranked results")
	fs.BoolVar(&opts.JSON, "json", false, "print the resolution as JSON instead of executing")
	fs.BoolVar(&opts.Quiet, "quiet", false, "suppress banners; print only the resolved command name")
	fs.BoolVar(&opts.List, "list", false, "list available commands and exit")
	fs.BoolVar(&opts.Quick, "quick", false, "execute immediately when a single high-confidence match exists")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "resolve but do not execute")
	fs.BoolVar(&opts.Save, "save", false, "persist flag overrides to the config file")
	fs.BoolVar(&opts.ShowConfig, "show-config", false, "show effective settings and exit")
	fs.BoolVar(&opts.Version, "version", false, "print version")

	if err := fs.Parse(args); err != nil {
		return options{}, "", err
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	return opts, query, nil
}

func mergeFlagOverrides(opts options, changes map[string]string) {
	if strings.TrimSpace(opts.UI) != "" {
		changes["ui.backend"] = strings.TrimSpace(opts.UI)
	}
	if strings.TrimSpace(opts.CommandsDir) != "" {
		changes["registry.dir"] = strings.TrimSpace(opts.CommandsDir)
	}
	if opts.MinScore > 0 {
		changes["match.min_score"] = strconv.Itoa(opts.MinScore)
	}
	if opts.MaxResults > 0 {
		changes["match.max_results"] = strconv.Itoa(opts.MaxResults)
	}
}

func commandsDir(cfg config.Config) (string, error) {
	if dir := strings.TrimSpace(cfg.Registry.Dir); dir != "" {
		return dir, nil
	}
	return appdirs.CommandsDir()
}

func matchConfig(mc config.MatchConfig) match.Config {
	return match.Config{
		MinScore:            mc.MinScore,
		MaxResults:          mc.MaxResults,
		QuickSelectMinScore: mc.QuickSelectMinScore,
		AutoSelectThreshold: mc.AutoSelectThreshold,
		DescriptionWeight:   mc.DescriptionWeight,
	}
}

func handleConfigShow(cfg config.Config, cfgPath string, opts options) {
	if opts.JSON {
		encoded, _ := json.MarshalIndent(cfg, "", "  ")
		fmt.Println(string(encoded))
		return
	}
	payload, err := toml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wf: could not render config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("config: %s\n\n", cfgPath)
	fmt.Print(string(payload))
}

func handleList(snapshot []registry.Candidate, dir string, opts options) {
	if opts.JSON {
		entries := make([]matchEntry, 0, len(snapshot))
		for _, candidate := range snapshot {
			entries = append(entries, matchEntry{Name: candidate.Name, Description: candidate.Description})
		}
		printResponse(response{Outcome: "list", Matches: entries})
		return
	}
	if len(snapshot) == 0 {
		fmt.Printf("No commands found in %s\n", dir)
		fmt.Println("Add one as a JSON file: {\"name\": ..., \"description\": ..., \"code\": ...}")
		return
	}
	fmt.Printf("Available commands (%d):\n", len(snapshot))
	for _, candidate := range snapshot {
		line := "  • " + candidate.Name
		if tag := candidate.Tag(); tag != "" {
			line += " (" + tag + ")"
		}
		if desc := strings.TrimSpace(candidate.Description); desc != "" {
			line += " - " + runewidth.Truncate(desc, 50, "...")
		}
		fmt.Println(line)
	}
}

func handleResolve(query string, snapshot []registry.Candidate, cfg config.Config, opts options) int {
	if len(snapshot) == 0 {
		if opts.JSON {
			printResponse(response{Query: query, Outcome: string(resolve.OutcomeNoMatch), Message: "no commands available"})
		} else {
			fmt.Println("No commands available.")
		}
		return 1
	}

	matchCfg := matchConfig(cfg.Match)
	backend := effectiveUIBackend(cfg, opts)
	controller := resolve.Controller{
		Config:      matchCfg,
		Interactive: canUseInteractiveUI(opts, backend),
		Selector: func(q string, candidates []registry.Candidate) (registry.Candidate, error) {
			return ui.SelectCommand(backend, q, candidates, matchCfg)
		},
	}

	if opts.Quick && query != "" {
		if result, ok := controller.QuickSelect(query, snapshot); ok {
			return runResolved(query, resolve.OutcomeAutoSelected, result.Candidate, result.Reason.Explain(), result.Score, opts)
		}
	}

	outcome := controller.Resolve(query, snapshot)
	switch outcome.Kind {
	case resolve.OutcomeAutoSelected:
		return runResolved(query, outcome.Kind, outcome.Candidate, outcome.Match.Reason.Explain(), outcome.Match.Score, opts)
	case resolve.OutcomeSelected:
		return runResolved(query, outcome.Kind, outcome.Candidate, "selected interactively", 0, opts)
	case resolve.OutcomeCancelled:
		if opts.JSON {
			printResponse(response{Query: query, Outcome: string(outcome.Kind), Message: "selection cancelled"})
		} else {
			fmt.Println("Cancelled. Command not executed.")
		}
		return outcome.ExitCode()
	case resolve.OutcomeSuggestions:
		if opts.JSON {
			printResponse(response{Query: query, Outcome: string(outcome.Kind), Matches: matchEntries(outcome.Ranked)})
		} else {
			fmt.Println(suggest.Report(query, outcome.Ranked))
		}
		return outcome.ExitCode()
	default:
		if opts.JSON {
			printResponse(response{Query: query, Outcome: string(resolve.OutcomeNoMatch), Message: fmt.Sprintf("no match for %q", query)})
		} else {
			fmt.Println(suggest.Report(query, nil))
		}
		return 1
	}
}

func runResolved(query string, kind resolve.OutcomeKind, candidate registry.Candidate, reason string, score int, opts options) int {
	if opts.JSON {
		printResponse(response{
			Query:   query,
			Outcome: string(kind),
			Command: candidate.Name,
			Score:   score,
			Reason:  reason,
		})
		return 0
	}
	if opts.Quiet {
		fmt.Println(candidate.Name)
	} else {
		fmt.Printf("Running: %s (%s)\n", candidate.Name, reason)
	}
	if opts.DryRun {
		if code := strings.TrimSpace(candidate.Code); code != "" && !opts.Quiet {
			fmt.Println(code)
		}
		return 0
	}
	return executeCandidate(candidate)
}

func executeCandidate(candidate registry.Candidate) int {
	code := strings.TrimSpace(candidate.Code)
	if code == "" {
		fmt.Fprintf(os.Stderr, "wf: command %q has no code to execute\n", candidate.Name)
		return 1
	}

	var cmd *exec.Cmd
	switch strings.ToLower(strings.TrimSpace(candidate.Language)) {
	case "", "shell", "sh", "bash", "zsh":
		cmd = exec.Command(detectShell(), "-c", code)
	case "python":
		interpreter, err := exec.LookPath("python3")
		if err != nil {
			interpreter, err = exec.LookPath("python")
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "wf: no python interpreter found on PATH")
			return 1
		}
		cmd = exec.Command(interpreter, "-c", code)
	default:
		fmt.Fprintf(os.Stderr, "wf: unsupported command language %q\n", candidate.Language)
		return 1
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "wf: could not execute %q: %v\n", candidate.Name, err)
		return 1
	}
	return 0
}

func detectShell() string {
	shellPath := strings.TrimSpace(os.Getenv("SHELL"))
	if shellPath == "" {
		return "sh"
	}
	switch base := filepath.Base(shellPath); base {
	case "zsh", "bash", "fish", "sh":
		return base
	default:
		return "sh"
	}
}

func matchEntries(ranked match.RankedList) []matchEntry {
	entries := make([]matchEntry, 0, len(ranked))
	for _, result := range ranked {
		entries = append(entries, matchEntry{
			Name:        result.Candidate.Name,
			Score:       result.Score,
			Reason:      result.Reason.Explain(),
			Description: result.Candidate.Description,
		})
	}
	return entries
}

func printResponse(payload response) {
	encoded, _ := json.MarshalIndent(payload, "", "  ")
	fmt.Println(string(encoded))
}

func canUseInteractiveUI(opts options, backend string) bool {
	if opts.JSON || opts.Quiet {
		return false
	}
	if !ui.IsInteractiveBackend(backend) {
		return false
	}
	return ui.InteractiveTerminal()
}

func effectiveUIBackend(cfg config.Config, opts options) string {
	if strings.TrimSpace(opts.UI) != "" {
		return ui.NormalizeBackend(strings.TrimSpace(opts.UI))
	}
	return ui.NormalizeBackend(cfg.UI.Backend)
}
