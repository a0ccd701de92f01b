package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/wf-cli/wf/internal/match"
	"github.com/wf-cli/wf/internal/registry"
	"github.com/wf-cli/wf/internal/resolve"
)

const maxRowDescription = 60

var (
	selectorTitleStyle  = lipgloss.NewStyle().Bold(true)
	selectorCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectorDimStyle    = lipgloss.NewStyle().Faint(true)
)

// SelectCommand prompts the user to pick one candidate, re-ranking live as
// the query is edited. It returns resolve.ErrCancelled when the user backs
// out and resolve.ErrNotInteractive when no capable terminal is attached.
func SelectCommand(backend string, query string, candidates []registry.Candidate, cfg match.Config) (registry.Candidate, error) {
	if !InteractiveTerminal() {
		return registry.Candidate{}, resolve.ErrNotInteractive
	}

	var firstErr error
	for _, name := range backendCandidates(backend) {
		var (
			selected registry.Candidate
			err      error
		)
		switch name {
		case BackendBubbleTea:
			selected, err = selectWithBubbleTea(query, candidates, cfg)
		case BackendHuh:
			selected, err = selectWithHuh(query, candidates, cfg)
		case BackendTView:
			selected, err = selectWithTView(query, candidates, cfg)
		default:
			continue
		}
		if err != nil {
			if errors.Is(err, resolve.ErrCancelled) {
				return registry.Candidate{}, err
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return selected, nil
	}
	if firstErr != nil {
		return registry.Candidate{}, firstErr
	}
	return registry.Candidate{}, resolve.ErrNotInteractive
}

type selectorRow struct {
	candidate registry.Candidate
	score     int
	scored    bool
}

type selectorModel struct {
	input      textinput.Model
	candidates []registry.Candidate
	cfg        match.Config
	rows       []selectorRow
	cursor     int
	width      int
	height     int
	chosen     bool
	cancelled  bool
}

func newSelectorModel(query string, candidates []registry.Candidate, cfg match.Config) selectorModel {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "type to search"
	input.SetValue(strings.TrimSpace(query))
	input.Focus()
	input.CursorEnd()

	m := selectorModel{
		input:      input,
		candidates: candidates,
		cfg:        cfg,
		width:      80,
		height:     24,
	}
	m.rows = buildRows(input.Value(), candidates, cfg)
	return m
}

// buildRows produces the visible list for the current query. An empty query
// lists every candidate alphabetically without scoring; anything else is a
// full re-rank.
func buildRows(query string, candidates []registry.Candidate, cfg match.Config) []selectorRow {
	query = strings.TrimSpace(query)
	if query == "" {
		all := make([]registry.Candidate, len(candidates))
		copy(all, candidates)
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		if cfg.MaxResults > 0 && len(all) > cfg.MaxResults {
			all = all[:cfg.MaxResults]
		}
		rows := make([]selectorRow, 0, len(all))
		for _, candidate := range all {
			rows = append(rows, selectorRow{candidate: candidate})
		}
		return rows
	}

	ranked := match.Rank(query, candidates, cfg)
	rows := make([]selectorRow, 0, len(ranked))
	for _, result := range ranked {
		rows = append(rows, selectorRow{candidate: result.Candidate, score: result.Score, scored: true})
	}
	return rows
}

func formatRow(row selectorRow) string {
	parts := []string{row.candidate.Name}
	if tag := row.candidate.Tag(); tag != "" {
		parts = append(parts, "("+tag+")")
	}
	if row.scored {
		parts = append(parts, fmt.Sprintf("[%d%%]", row.score))
	}
	if desc := strings.TrimSpace(row.candidate.Description); desc != "" {
		parts = append(parts, "- "+runewidth.Truncate(desc, maxRowDescription, "..."))
	}
	return strings.Join(parts, " ")
}

func (m selectorModel) Init() tea.Cmd { return textinput.Blink }

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if len(m.rows) > 0 {
				m.chosen = true
				return m, tea.Quit
			}
			return m, nil
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.rows = buildRows(value, m.candidates, m.cfg)
		m.cursor = 0
	}
	return m, cmd
}

func (m selectorModel) View() string {
	var b strings.Builder
	b.WriteString(selectorTitleStyle.Render("wf command picker"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(selectorDimStyle.Render("no matching commands"))
		b.WriteString("\n")
	}
	for idx, row := range m.rows {
		line := formatRow(row)
		if idx == m.cursor {
			b.WriteString(selectorCursorStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(selectorDimStyle.Render("↑/↓ move · enter select · esc cancel"))
	return b.String()
}

func selectWithBubbleTea(query string, candidates []registry.Candidate, cfg match.Config) (registry.Candidate, error) {
	model := newSelectorModel(query, candidates, cfg)
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return registry.Candidate{}, err
	}
	out, ok := final.(selectorModel)
	if !ok || out.cancelled || !out.chosen || out.cursor >= len(out.rows) {
		return registry.Candidate{}, resolve.ErrCancelled
	}
	return out.rows[out.cursor].candidate, nil
}

func selectWithHuh(query string, candidates []registry.Candidate, cfg match.Config) (registry.Candidate, error) {
	rows := buildRows(query, candidates, cfg)
	if len(rows) == 0 {
		rows = buildRows("", candidates, cfg)
	}
	if len(rows) == 0 {
		return registry.Candidate{}, resolve.ErrCancelled
	}

	options := make([]huh.Option[string], 0, len(rows))
	lookup := map[string]registry.Candidate{}
	for _, row := range rows {
		options = append(options, huh.NewOption(formatRow(row), row.candidate.Name))
		lookup[row.candidate.Name] = row.candidate
	}

	choice := options[0].Value
	prompt := huh.NewSelect[string]().
		Title("wf command picker").
		Description(fmt.Sprintf("Choose command for: %q", strings.TrimSpace(query))).
		Options(options...).
		Filtering(true).
		Height(huhSelectHeight(len(options))).
		Value(&choice).
		WithTheme(huh.ThemeCharm())

	if err := prompt.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return registry.Candidate{}, resolve.ErrCancelled
		}
		return registry.Candidate{}, err
	}
	selected, ok := lookup[choice]
	if !ok {
		return registry.Candidate{}, resolve.ErrCancelled
	}
	return selected, nil
}

func selectWithTView(query string, candidates []registry.Candidate, cfg match.Config) (registry.Candidate, error) {
	rows := buildRows(query, candidates, cfg)
	if len(rows) == 0 {
		rows = buildRows("", candidates, cfg)
	}
	if len(rows) == 0 {
		return registry.Candidate{}, resolve.ErrCancelled
	}

	app := tview.NewApplication()
	listView := tview.NewList()
	listView.SetBorder(true)
	listView.SetTitle(fmt.Sprintf("wf command picker: %s", strings.TrimSpace(query)))
	listView.ShowSecondaryText(false)

	var selected registry.Candidate
	chosen := false
	for _, row := range rows {
		current := row.candidate
		listView.AddItem(formatRow(row), "", 0, func() {
			selected = current
			chosen = true
			app.Stop()
		})
	}
	listView.SetDoneFunc(func() {
		app.Stop()
	})

	if err := app.SetRoot(listView, true).SetFocus(listView).Run(); err != nil {
		return registry.Candidate{}, err
	}
	if !chosen {
		return registry.Candidate{}, resolve.ErrCancelled
	}
	return selected, nil
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func huhSelectHeight(optionCount int) int {
	if optionCount < 1 {
		optionCount = 1
	}
	return clampInt(optionCount+1, 4, 10)
}
