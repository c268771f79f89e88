package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/vietdv277/secops/internal/config"
)

const (
	listHeight       = 8
	detailLabelWidth = 14
	minWidth         = 60
	maxWidth         = 120
)

// contextItem holds display data for a single context entry.
type contextItem struct {
	name    string
	ctx     *config.Context
	current bool
}

// ContextModel is the bubbletea model for interactive context selection.
type ContextModel struct {
	items        []contextItem
	filtered     []contextItem
	cursor       int
	offset       int
	search       string
	selected     string
	quitting     bool
	cancelled    bool
	termWidth    int
	contentWidth int
	colWidths    []int // [Name, Location, Project, Customer]
}

func newContextModel(items []contextItem) ContextModel {
	m := ContextModel{
		items:     items,
		filtered:  items,
		termWidth: 80,
	}
	m.calculateContextWidths()
	return m
}

func (m *ContextModel) calculateContextWidths() {
	m.contentWidth = m.termWidth - 2
	if m.contentWidth < minWidth {
		m.contentWidth = minWidth
	}
	if m.contentWidth > maxWidth {
		m.contentWidth = maxWidth
	}

	locW, projW, custW := 8, 10, 10
	for _, item := range m.items {
		locW = max(locW, runewidth.StringWidth(dash(item.ctx.Location)))
		projW = max(projW, runewidth.StringWidth(dash(item.ctx.Project)))
		custW = max(custW, runewidth.StringWidth(dash(item.ctx.CustomerID)))
	}

	// cursor+marker(3) + name(dynamic) + sp(2) + loc + sp(2) + proj + sp(2) + cust
	fixedW := 3 + 2 + locW + 2 + projW + 2 + custW
	nameW := m.contentWidth - fixedW
	if nameW < 10 {
		nameW = 10
	}

	m.colWidths = []int{nameW, locW, projW, custW}
}

// Init implements tea.Model.
func (m ContextModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update implements tea.Model.
func (m ContextModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.calculateContextWidths()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyEnter:
			if len(m.filtered) > 0 {
				m.selected = m.filtered[m.cursor].name
				m.quitting = true
				return m, tea.Quit
			}

		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}

		case tea.KeyDown:
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				if m.cursor >= m.offset+listHeight {
					m.offset = m.cursor - listHeight + 1
				}
			}

		case tea.KeyBackspace:
			if len(m.search) > 0 {
				m.search = m.search[:len(m.search)-1]
				m.filterContexts()
			}

		case tea.KeyRunes:
			m.search += string(msg.Runes)
			m.filterContexts()
		}
	}

	return m, nil
}

func (m *ContextModel) filterContexts() {
	if m.search == "" {
		m.filtered = m.items
	} else {
		query := strings.ToLower(m.search)
		m.filtered = nil
		for _, item := range m.items {
			if strings.Contains(strings.ToLower(item.name), query) ||
				strings.Contains(strings.ToLower(item.ctx.Project), query) {
				m.filtered = append(m.filtered, item)
			}
		}
	}
	if m.cursor >= len(m.filtered) {
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		} else {
			m.cursor = 0
		}
	}
	m.offset = 0
}

// View implements tea.Model.
func (m ContextModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	w := m.contentWidth

	// Top border
	sb.WriteString(BorderStyle.Render(TopLeft + strings.Repeat(Horizontal, w) + TopRight))
	sb.WriteString("\n")

	// Search input
	sb.WriteString(m.boxLine(NameStyle.Render(padToWidth(" > "+m.search, w))))
	sb.WriteString(m.boxLine(strings.Repeat(" ", w)))

	// Context list
	visibleEnd := min(m.offset+listHeight, len(m.filtered))
	for i := m.offset; i < visibleEnd; i++ {
		sb.WriteString(m.renderContextRow(i))
	}
	for i := visibleEnd; i < m.offset+listHeight; i++ {
		sb.WriteString(m.boxLine(strings.Repeat(" ", w)))
	}
	sb.WriteString(m.boxLine(strings.Repeat(" ", w)))

	// Separator
	sb.WriteString(BorderStyle.Render(LeftT + strings.Repeat(Horizontal, w) + RightT))
	sb.WriteString("\n")

	// Details panel
	sb.WriteString(m.renderContextDetailsPanel())

	// Bottom border
	sb.WriteString(BorderStyle.Render(BottomLeft + strings.Repeat(Horizontal, w) + BottomRight))
	sb.WriteString("\n")

	// Status bar
	sb.WriteString(m.renderContextStatusBar())

	return sb.String()
}

func (m ContextModel) boxLine(content string) string {
	return BorderStyle.Render(Vertical) + content + BorderStyle.Render(Vertical) + "\n"
}

func (m ContextModel) renderContextRow(idx int) string {
	item := m.filtered[idx]
	w := m.contentWidth

	var line strings.Builder
	plainWidth := 0

	// 3-char prefix: space + cursor(>) + current-marker(*)
	cursor := " "
	if idx == m.cursor {
		cursor = ">"
	}
	marker := " "
	if item.current {
		marker = "*"
	}
	line.WriteString(" " + cursor + marker)
	plainWidth += 3

	nameText := padRight(item.name, m.colWidths[0])
	if item.current {
		line.WriteString(SuccessStyle.Render(nameText))
	} else {
		line.WriteString(NameStyle.Render(nameText))
	}
	line.WriteString("  ")
	plainWidth += m.colWidths[0] + 2

	line.WriteString(GCPStyle.Render(padRight(dash(item.ctx.Location), m.colWidths[1])))
	line.WriteString("  ")
	plainWidth += m.colWidths[1] + 2

	line.WriteString(MutedStyle.Render(padRight(dash(item.ctx.Project), m.colWidths[2])))
	line.WriteString("  ")
	plainWidth += m.colWidths[2] + 2

	line.WriteString(ValueStyle.Render(padRight(dash(item.ctx.CustomerID), m.colWidths[3])))
	plainWidth += m.colWidths[3]

	// Pad remaining space
	if plainWidth < w {
		line.WriteString(strings.Repeat(" ", w-plainWidth))
	}

	return m.boxLine(line.String())
}

func (m ContextModel) renderContextDetailsPanel() string {
	var sb strings.Builder
	w := m.contentWidth

	sb.WriteString(m.boxLine(HeaderStyle.Render(padToWidth(" Context Details", w))))
	sb.WriteString(m.boxLine(MutedStyle.Render(padToWidth(" "+strings.Repeat(Horizontal, 20), w))))

	if len(m.filtered) == 0 {
		sb.WriteString(m.boxLine(MutedStyle.Render(padToWidth(" No contexts found", w))))
		// keep the panel height stable
		for i := 0; i < 6; i++ {
			sb.WriteString(m.boxLine(strings.Repeat(" ", w)))
		}
		return sb.String()
	}

	item := m.filtered[m.cursor]
	details := []struct {
		label string
		value string
		style lipgloss.Style
	}{
		{"Context:", item.name, NameStyle},
		{"Location:", dash(item.ctx.Location), GCPStyle},
		{"Project:", dash(item.ctx.Project), MutedStyle},
		{"Customer ID:", dash(item.ctx.CustomerID), ValueStyle},
		{"Forwarder:", dash(item.ctx.ForwarderID), ValueStyle},
		{"Log type:", dash(item.ctx.LogType), ValueStyle},
	}

	for _, d := range details {
		labelText := padRight(d.label, detailLabelWidth)
		valueText := d.value
		maxValueWidth := w - 1 - detailLabelWidth
		if runewidth.StringWidth(valueText) > maxValueWidth {
			valueText = runewidth.Truncate(valueText, maxValueWidth, "...")
		}

		plainWidth := 1 + detailLabelWidth + runewidth.StringWidth(valueText)
		line := MutedStyle.Render(" "+labelText) + d.style.Render(valueText)
		if plainWidth < w {
			line += strings.Repeat(" ", w-plainWidth)
		}
		sb.WriteString(m.boxLine(line))
	}

	// Trailing empty line
	sb.WriteString(m.boxLine(strings.Repeat(" ", w)))

	return sb.String()
}

func (m ContextModel) renderContextStatusBar() string {
	w := m.contentWidth + 2

	countInfo := fmt.Sprintf("  %d/%d contexts", len(m.filtered), len(m.items))
	hintsPlain := "[Enter:select] [Esc:quit]"

	padding := w - runewidth.StringWidth(countInfo) - runewidth.StringWidth(hintsPlain)

	var sb strings.Builder
	sb.WriteString(countInfo)
	if padding > 0 {
		sb.WriteString(strings.Repeat(" ", padding))
	}
	sb.WriteString(HintStyle.Render(hintsPlain))
	sb.WriteString("\n")

	return sb.String()
}

// Selected returns the chosen context name and whether the user cancelled.
func (m ContextModel) Selected() (string, bool) {
	return m.selected, m.cancelled
}

// NewContextModel builds the selector model with the cursor on the current context.
func NewContextModel(contexts map[string]*config.Context, current string) ContextModel {
	names := config.SortedNames(contexts)
	items := make([]contextItem, len(names))
	for i, name := range names {
		items[i] = contextItem{
			name:    name,
			ctx:     contexts[name],
			current: name == current,
		}
	}

	m := newContextModel(items)

	// Pre-position cursor on the current context
	for i, item := range items {
		if item.current {
			m.cursor = i
			if m.cursor >= listHeight {
				m.offset = m.cursor - listHeight + 1
			}
			break
		}
	}
	return m
}

// SelectContext runs the interactive context selector TUI and returns the selected context name.
func SelectContext(contexts map[string]*config.Context, current string) (string, error) {
	if len(contexts) == 0 {
		return "", fmt.Errorf("no contexts available")
	}

	p := tea.NewProgram(NewContextModel(contexts, current))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running selector: %w", err)
	}

	selected, cancelled := finalModel.(ContextModel).Selected()
	if cancelled {
		return "", fmt.Errorf("selection cancelled")
	}

	return selected, nil
}
