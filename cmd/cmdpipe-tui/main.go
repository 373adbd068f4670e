// Command cmdpipe-tui is an interactive pipeline builder: a huh form collects
// one stage at a time (name plus space-separated args), and a bubbletea
// model runs the resulting pipeline and renders its result, styled with
// lipgloss the way kk and tcpo render theirs.
package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"

	"cmdpipe/pkg/builtins"
	"cmdpipe/pkg/cmdpipe"
	"cmdpipe/pkg/lib"
)

// builtinItem/builtinDelegate let bubbles/list browse registered builtin
// names before the huh form collects that stage's arguments, the same
// listItem/listItemDelegate split kk uses for its file picker.
type builtinItem string

func (i builtinItem) FilterValue() string { return string(i) }
func (i builtinItem) Title() string       { return string(i) }
func (i builtinItem) Description() string { return "registered builtin" }

type builtinDelegate struct{}

func (d builtinDelegate) Height() int                             { return 1 }
func (d builtinDelegate) Spacing() int                            { return 0 }
func (d builtinDelegate) Update(tea.Msg, *list.Model) tea.Cmd      { return nil }
func (d builtinDelegate) Render(w io.Writer, _ list.Model, _ int, item list.Item) {
	if bi, ok := item.(builtinItem); ok {
		fmt.Fprint(w, string(bi))
	}
}

// pickBuiltinModel is a tiny bubbletea program: arrow keys + enter choose a
// registered builtin name, or Esc leaves the field blank (external command).
type pickBuiltinModel struct {
	list     list.Model
	chosen   string
	quitting bool
}

func (m pickBuiltinModel) Init() tea.Cmd { return nil }

func (m pickBuiltinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			if bi, ok := m.list.SelectedItem().(builtinItem); ok {
				m.chosen = string(bi)
			}
			m.quitting = true
			return m, tea.Quit
		case "esc", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickBuiltinModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// pickBuiltin shows the registered-builtins list and returns the chosen
// name, or "" if the user skipped it (meaning: this stage is external).
func pickBuiltin() string {
	names := cmdpipe.RegisteredBuiltins()
	if len(names) == 0 {
		return ""
	}
	items := make([]list.Item, len(names))
	for i, n := range names {
		items[i] = builtinItem(n)
	}
	l := list.New(items, builtinDelegate{}, 40, 10)
	l.Title = "Registered builtins (Esc to skip)"

	m, err := tea.NewProgram(pickBuiltinModel{list: l}).Run()
	if err != nil {
		return ""
	}
	return m.(pickBuiltinModel).chosen
}

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Padding(0, 1)
	styleErr   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)
	styleStage = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// buildStagesForm runs a huh form loop collecting stage lines until the user
// leaves one blank, returning the raw "name arg1 arg2 ..." lines in order.
func buildStagesForm() ([]string, error) {
	var stages []string

	for {
		name := pickBuiltin()

		var line string
		title := fmt.Sprintf("Stage %d (blank to finish)", len(stages)+1)
		if name != "" {
			line = name + " "
			title = fmt.Sprintf("Stage %d: %s args (blank for none)", len(stages)+1, name)
		}
		field := huh.NewInput().Title(title).Value(&line)

		if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			return stages, nil
		}
		stages = append(stages, line)
	}
}

// runModel is the bubbletea model that runs the built pipeline once and
// immediately quits, showing the result.
type runModel struct {
	stages  []string
	started time.Time
	result  string
	err     error
	done    bool
}

func (m runModel) Init() tea.Cmd {
	started := m.started
	return func() tea.Msg {
		p := cmdpipe.NewPipeline()
		for _, s := range m.stages {
			st := cmdpipe.NewStage()
			for _, tok := range strings.Fields(s) {
				st.AddArg(tok)
			}
			p.Pipe(st)
		}
		out, err := cmdpipe.NewGroup().Add(p, nil).RunString()
		return runResultMsg{out: out, err: err, started: started}
	}
}

type runResultMsg struct {
	out     string
	err     error
	started time.Time
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runResultMsg:
		m.result, m.err, m.done = msg.out, msg.err, true
		return m, tea.Quit
	case tea.KeyMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m runModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("cmdpipe") + "\n")
	for i, s := range m.stages {
		b.WriteString(styleStage.Render(fmt.Sprintf("  %d: %s", i+1, s)) + "\n")
	}
	if !m.done {
		b.WriteString("running...\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(styleErr.Render("error: "+m.err.Error()) + "\n")
	} else {
		b.WriteString(styleOK.Render(m.result) + "\n")
	}
	b.WriteString(styleStage.Render("started "+humanize.RelTime(m.started, time.Now(), "ago", "from now")) + "\n")
	return b.String()
}

func main() {
	builtins.RegisterPick()
	builtins.RegisterPsinfo()
	builtins.RegisterClip()

	stages, err := buildStagesForm()
	if err != nil {
		lib.Exit(err)
	}
	if len(stages) == 0 {
		lib.Exit(fmt.Errorf("no stages entered"))
	}

	if _, err := tea.NewProgram(runModel{stages: stages, started: time.Now()}).Run(); err != nil {
		lib.Exit(err)
	}
}
