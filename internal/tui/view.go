package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dtv/internal/annotation"
	"dtv/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	deletedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true).
			Strikethrough(true)

	adviceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")) // Orange

	sourceHighlightStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("81")). // Sky Blue/Cyan
				Bold(true)

	borderColor = lipgloss.Color("63")
)

// groupColor maps a grouping key to a light background, one tint per source file.
func groupColor(key int) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", 255-key*2, 240, 192+key))
}

func (m AppModel) View() string {
	if m.Loading {
		return "\n  Indexing annotated output... please wait.\n"
	}
	if m.Err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  Press q to quit.\n", m.Err)
	}

	width := max(m.WindowSize.Width-6, 40)
	leftWidth := width / 2
	rightWidth := width - leftWidth
	interiorHeight := max(m.WindowSize.Height-8, 4)

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Render(m.renderRows(leftWidth, interiorHeight))

	right := lipgloss.NewStyle().
		Width(rightWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Render(m.DetailsViewport.View())

	help := "↑/↓: Navigate • /: Find • n/N: Next/Prev • ctrl+d/u: Scroll source • d: Diagnostics • r: Reload • q: Quit"
	footer := "\n" + dimStyle.Render(m.Status) + "\n" + help
	if m.InputMode {
		footer = fmt.Sprintf("\n\nFind: %s", m.InputBuffer.View())
	}

	header := titleStyle.Render(fmt.Sprintf("DTV - %s", m.Index.Source()))
	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, right) + footer
}

func (m AppModel) renderRows(width, height int) string {
	if len(m.Rows) == 0 {
		return "No lines."
	}

	// Windowing: keep the selection in the middle of the panel
	visible := max(height, 1)
	startIdx := 0
	endIdx := len(m.Rows)
	if len(m.Rows) > visible {
		if m.SelectedIdx >= visible/2 {
			startIdx = m.SelectedIdx - visible/2
		}
		if startIdx+visible > len(m.Rows) {
			startIdx = len(m.Rows) - visible
		}
		endIdx = startIdx + visible
	}

	fileWidth := min(24, width/3)
	codeWidth := max(width-fileWidth-9, 8)

	var b strings.Builder
	for i := startIdx; i < endIdx; i++ {
		row := m.Rows[i]

		num := fmt.Sprintf("%5d", row.LineNumber)
		icon := model.IconOK
		switch {
		case row.IsParent:
			num = dimStyle.Render(num)
			icon = model.IconParent
		case row.Deleted:
			icon = model.IconDeleted
		case row.ChainIndex < 0:
			icon = model.IconNoOrigin
		}

		code := fit(strings.ReplaceAll(row.Code, "\t", "  "), codeWidth)
		file := fit(row.File, fileWidth)

		codeStyle := lipgloss.NewStyle()
		if row.File != "" && !row.IsParent {
			codeStyle = codeStyle.
				Background(groupColor(annotation.GroupKey(row.Ref.Path))).
				Foreground(lipgloss.Color("#000000"))
		}
		if row.Deleted && !row.IsParent {
			codeStyle = deletedStyle
		}

		line := fmt.Sprintf("%s %s %s %s", num, icon, codeStyle.Render(code), file)
		if i == m.SelectedIdx {
			line = selectedStyle.Render(fmt.Sprintf("%5d %s %s %s", row.LineNumber, icon, code, file))
		}
		b.WriteString(line)
		if i < endIdx-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// refreshDetails rebuilds the right panel for the selected row.
func (m *AppModel) refreshDetails() {
	m.DetailsViewport.SetContent(m.detailsContent())
	m.DetailsViewport.GotoTop()
}

func (m AppModel) detailsContent() string {
	if m.Index == nil {
		return ""
	}
	if m.ShowDiagnostics {
		return m.diagnosticsContent()
	}

	row, ok := m.SelectedRow()
	if !ok {
		return "No line selected."
	}
	line, err := m.Index.Get(row.LineNumber)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Output line %d", line.LineNumber)))
	if line.Deleted {
		b.WriteString(adviceStyle.Render("  (deleted by overlay)"))
	}
	fmt.Fprintf(&b, "\n\nCode:    %s", strings.TrimSpace(line.Code))

	chain := make([]string, 0, len(line.Chain))
	for _, ref := range line.Chain {
		if !ref.IsEmpty() {
			chain = append(chain, ref.Short())
		}
	}
	if len(chain) == 0 {
		b.WriteString("\nOrigin:  none")
		return b.String()
	}
	fmt.Fprintf(&b, "\nChain:   %s", strings.Join(chain, " "+model.IconBreadcrumb+" "))

	if row.Ref.IsEmpty() {
		return b.String()
	}

	label := "Origin:  "
	if row.IsParent {
		label = fmt.Sprintf("Parent %d: ", row.ChainIndex+1)
	}
	fmt.Fprintf(&b, "\n%s%s", label, row.Ref.Short())
	fmt.Fprintf(&b, "\nPath:    %s", row.Ref.Path)

	fmt.Fprintf(&b, "\n\n--- Source (%s) ---\n", row.Ref.Short())
	b.WriteString(m.sourceContent(row.Ref))
	return b.String()
}

// sourceContent resolves the reference, with context lines when configured.
func (m AppModel) sourceContent(ref model.SourceReference) string {
	text, err := model.Resolve(ref)
	if err != nil {
		return adviceStyle.Render(fmt.Sprintf("Source unavailable: %v", err))
	}
	if m.ContextLines == 0 {
		return text
	}

	ctx := model.GetLineContext(ref.Path, ref.StartLine, ref.EndLine, m.ContextLines)
	if ctx.ErrorMsg != "" {
		return text
	}

	var b strings.Builder
	for i, cl := range ctx.Lines {
		if cl.Target {
			b.WriteString(sourceHighlightStyle.Render(fmt.Sprintf("%s %4d  %s", model.IconTarget, cl.Number, cl.Text)))
		} else {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %4d  %s", cl.Number, cl.Text)))
		}
		if i < len(ctx.Lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m AppModel) diagnosticsContent() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Diagnostics"))
	b.WriteString("\n\n")

	diags := m.Index.Diagnostics()
	if len(diags) == 0 {
		b.WriteString("No malformed references.")
		return b.String()
	}
	for _, d := range diags {
		b.WriteString(adviceStyle.Render(d.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// fit pads or truncates s to exactly width runes.
func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 3 {
			return string(r[:width])
		}
		return string(r[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-len(r))
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, LoadCmd(m.Session, m.Source))
}
