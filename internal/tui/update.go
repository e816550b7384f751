package tui

import (
	"fmt"

	"dtv/internal/annotation"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

// MsgIndexReady indicates that an annotated file has been indexed.
type MsgIndexReady struct {
	Index *annotation.Index
}

// MsgError indicates an error occurred.
type MsgError error

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.DetailsViewport.Width = max(msg.Width/2-4, 10)
		m.DetailsViewport.Height = max(msg.Height-8, 3) // minus footer/header/borders
		m.refreshDetails()
		return m, nil

	case MsgIndexReady:
		m.Loading = false
		m.Err = nil
		m.setIndex(msg.Index)
		m.Status = fmt.Sprintf("Loaded %d lines from %s", msg.Index.Len(), msg.Index.Source())
		return m, nil

	case MsgError:
		m.Loading = false
		if m.Index == nil {
			m.Err = msg
		} else {
			// Keep showing the previous index
			m.Status = fmt.Sprintf("Reload failed: %v", error(msg))
		}
		return m, nil

	case tea.KeyMsg:
		if m.InputMode {
			switch msg.Type {
			case tea.KeyEnter:
				m.InputMode = false
				m.InputBuffer.Blur()
				m.performSearch()
				return m, nil
			case tea.KeyEsc:
				m.InputMode = false
				m.InputBuffer.Blur()
				return m, nil
			}
			m.InputBuffer, cmd = m.InputBuffer.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.Navigator.Query() != "" {
				m.Navigator.Reset()
				m.InputBuffer.SetValue("")
				m.Status = ""
			}
			m.ShowDiagnostics = false
		case "up", "k":
			m.moveSelection(-1)
		case "down", "j":
			m.moveSelection(1)
		case "pgup":
			m.moveSelection(-m.pageSize())
		case "pgdown":
			m.moveSelection(m.pageSize())
		case "home", "g":
			m.moveSelection(-len(m.Rows))
		case "end", "G":
			m.moveSelection(len(m.Rows))
		case "ctrl+d":
			m.DetailsViewport.LineDown(m.DetailsViewport.Height / 2)
		case "ctrl+u":
			m.DetailsViewport.LineUp(m.DetailsViewport.Height / 2)
		case "/":
			m.InputMode = true
			m.InputBuffer.Focus()
			return m, textinput.Blink
		case "n":
			m.findNext(true)
		case "N":
			m.findNext(false)
		case "d":
			m.ShowDiagnostics = !m.ShowDiagnostics
			m.refreshDetails()
		case "r":
			if m.Session != nil && m.Index != nil {
				m.Status = "Reloading..."
				return m, ReloadCmd(m.Session)
			}
		}
	}

	return m, cmd
}

func (m *AppModel) moveSelection(delta int) {
	if len(m.Rows) == 0 {
		return
	}
	m.SelectedIdx = min(max(m.SelectedIdx+delta, 0), len(m.Rows)-1)
	m.refreshDetails()
}

func (m AppModel) pageSize() int {
	return max(m.WindowSize.Height-10, 1)
}

// performSearch applies the text input. A new query jumps to its first match;
// submitting the same query again moves to the next one.
func (m *AppModel) performSearch() {
	q := m.InputBuffer.Value()
	if q == "" {
		return
	}

	var (
		line int
		ok   bool
	)
	if m.Navigator.SetQuery(q) {
		line, ok = m.Navigator.Current()
	} else {
		line, ok = m.Navigator.Advance()
	}
	m.reportSearch(line, ok)
}

func (m *AppModel) findNext(forward bool) {
	if m.Navigator.Query() == "" {
		return
	}
	var (
		line int
		ok   bool
	)
	if forward {
		line, ok = m.Navigator.Advance()
	} else {
		line, ok = m.Navigator.Retreat()
	}
	m.reportSearch(line, ok)
}

func (m *AppModel) reportSearch(line int, ok bool) {
	if !ok {
		m.Status = fmt.Sprintf("No match for %q", m.Navigator.Query())
		return
	}
	pos, count := m.Navigator.Position()
	m.Status = fmt.Sprintf("Match %d/%d for %q", pos+1, count, m.Navigator.Query())
	m.selectLine(line)
}

// LoadCmd indexes the source in the background.
func LoadCmd(session *annotation.Session, source string) tea.Cmd {
	return func() tea.Msg {
		// Standard input is read before the program starts, since the
		// terminal then has to take over the keyboard.
		if source == annotation.StdinSource {
			if idx := session.Current(); idx != nil {
				return MsgIndexReady{Index: idx}
			}
			return MsgError(errors.Wrap(annotation.ErrIOFailure, "standard input was not loaded"))
		}
		idx, err := session.Load(source)
		if err != nil {
			return MsgError(err)
		}
		return MsgIndexReady{Index: idx}
	}
}

// ReloadCmd re-reads the current source. The session keeps the old index if
// this fails.
func ReloadCmd(session *annotation.Session) tea.Cmd {
	return func() tea.Msg {
		idx, err := session.Reload()
		if err != nil {
			return MsgError(err)
		}
		return MsgIndexReady{Index: idx}
	}
}
