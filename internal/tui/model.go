// Package tui is a full-screen browser over the same session engine the
// line REPL drives: identical cache, sort, and display semantics, with
// cursor-based navigation instead of typed indices.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"idu/internal/du"
	"idu/internal/session"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Parent  key.Binding
	Base    key.Binding
	Sort    key.Binding
	Display key.Binding
	Human   key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Parent, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Parent},
		{k.Base, k.Sort, k.Display, k.Human},
		{k.Refresh, k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
	Enter:   key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "open directory")),
	Parent:  key.NewBinding(key.WithKeys("u", "backspace"), key.WithHelp("u", "parent directory")),
	Base:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "set base here")),
	Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort name/size")),
	Display: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "relative/absolute")),
	Human:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "human sizes")),
	Refresh: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "refresh")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// Model is the bubbletea model wrapping a session.
type Model struct {
	session *session.Session
	cursor  int
	keys    keyMap
	help    help.Model
	status  string
	width   int
	height  int
}

// New wraps an already-loaded session. The caller performs the initial scan
// before starting the program so startup failures stay fatal.
func New(s *session.Session) *Model {
	return &Model{
		session: s,
		keys:    defaultKeys,
		help:    help.New(),
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.session.VisibleEntries())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Enter):
		if entry, ok := m.session.EntryAt(m.cursor); ok {
			m.navigate(entry.Path, false)
		}
	case key.Matches(msg, m.keys.Parent):
		m.navigate("..", false)
	case key.Matches(msg, m.keys.Refresh):
		m.navigate(m.session.CurrentDir(), true)
	case key.Matches(msg, m.keys.Base):
		if err := m.session.SetBase(m.session.CurrentDir()); err != nil {
			m.status = err.Error()
		} else {
			m.status = "base set to " + m.session.BaseDir()
		}
	case key.Matches(msg, m.keys.Sort):
		m.session.ToggleSort()
		m.status = "sorting by " + m.session.SortMode().String()
	case key.Matches(msg, m.keys.Display):
		m.session.ToggleDisplay()
		m.status = m.session.DisplayMode().String() + " paths"
	case key.Matches(msg, m.keys.Human):
		m.session.ToggleHumanSizes()
	}
	m.clampCursor()
	return m, nil
}

// navigate moves the session; a failed scan reports in the status line and
// leaves the listing untouched, mirroring the REPL's recovery behavior.
func (m *Model) navigate(dir string, refresh bool) {
	if dir == ".." {
		if err := m.session.NavigateUp(context.Background()); err != nil {
			m.status = err.Error()
			return
		}
	} else if err := m.session.Update(context.Background(), dir, refresh); err != nil {
		m.status = err.Error()
		return
	}
	m.cursor = 0
	m.status = ""
}

func (m *Model) clampCursor() {
	if n := len(m.session.VisibleEntries()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Cursor returns the highlighted row index, for tests.
func (m *Model) Cursor() int { return m.cursor }

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder

	header := m.session.BaseDir()
	if m.session.DisplayMode() == du.Absolute {
		header = m.session.CurrentDir()
	}
	b.WriteString(TitleStyle.Render(header))
	b.WriteString("\n")

	entries := m.session.VisibleEntries()
	for i, e := range entries {
		line := fmt.Sprintf("%10s  %s", m.session.FormatSize(e.Size), m.session.FormatPath(e.Path))
		style := EntryStyle
		if e.Path == m.session.CurrentDir() {
			style = SelfEntryStyle
		}
		if i == m.cursor {
			style = SelectedStyle
			line = "> " + line
		} else {
			line = "  " + line
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(ErrorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
