package tui

import (
	"dtv/internal/annotation"
	"dtv/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Session   *annotation.Session
	Source    string // File (or "-") to load on start
	Index     *annotation.Index
	Rows      []model.Row
	rowByLine map[int]int // Output line number -> index of its primary row
	Loading   bool
	Err       error
	Status    string

	// UI State
	SelectedIdx     int
	WindowSize      tea.WindowSizeMsg
	ContextLines    int
	ShowDiagnostics bool

	// Search State
	InputMode   bool
	InputBuffer textinput.Model
	Navigator   *annotation.Navigator

	// Components
	DetailsViewport viewport.Model
}

// InitialModel returns the initial state.
func InitialModel(session *annotation.Session, source string, contextLines int) AppModel {
	ti := textinput.New()
	ti.Placeholder = "Text in DTS content..."
	ti.CharLimit = 120
	ti.Width = 30

	return AppModel{
		Session:         session,
		Source:          source,
		Loading:         true,
		InputBuffer:     ti,
		ContextLines:    contextLines,
		Navigator:       annotation.NewNavigator(nil),
		DetailsViewport: viewport.New(40, 10),
	}
}

// setIndex swaps in a freshly loaded index. Search state belongs to the old
// index and is dropped.
func (m *AppModel) setIndex(idx *annotation.Index) {
	m.Index = idx
	m.Rows = annotation.Rows(idx)
	m.rowByLine = make(map[int]int, len(m.Rows))
	for i, r := range m.Rows {
		if _, ok := m.rowByLine[r.LineNumber]; !ok {
			m.rowByLine[r.LineNumber] = i
		}
	}
	m.Navigator = annotation.NewNavigator(idx)
	if m.SelectedIdx >= len(m.Rows) {
		m.SelectedIdx = max(len(m.Rows)-1, 0)
	}
	m.refreshDetails()
}

// selectLine moves the selection to the primary row of an output line.
func (m *AppModel) selectLine(lineNumber int) {
	if i, ok := m.rowByLine[lineNumber]; ok {
		m.SelectedIdx = i
		m.refreshDetails()
	}
}

// SelectedRow returns the row under the cursor.
func (m AppModel) SelectedRow() (model.Row, bool) {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.Rows) {
		return model.Row{}, false
	}
	return m.Rows[m.SelectedIdx], true
}
