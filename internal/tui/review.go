// Package tui provides the interactive duplicate review screen.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/led-inventory/internal/dedup"
	"github.com/Veraticus/led-inventory/internal/model"
)

// headerLines is the space taken by the title, summary and footer.
const headerLines = 6

// Model is the review state. Every group starts selected.
type Model struct {
	selected  map[string]bool
	help      help.Model
	keymap    KeyMap
	theme     Theme
	plan      dedup.Plan
	cursor    int
	offset    int
	height    int
	width     int
	confirmed bool
	quitting  bool
}

// NewModel creates a review model over plan.
func NewModel(plan dedup.Plan) Model {
	selected := make(map[string]bool, len(plan.Groups))
	for _, g := range plan.Groups {
		selected[g.Code] = true
	}
	return Model{
		plan:     plan,
		selected: selected,
		help:     help.New(),
		keymap:   DefaultKeyMap(),
		theme:    DefaultTheme,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scroll()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := len(m.plan.Groups) - 1

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Confirm):
		m.confirmed = true
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Up):
		m.cursor = max(m.cursor-1, 0)

	case key.Matches(msg, m.keymap.Down):
		m.cursor = max(min(m.cursor+1, last), 0)

	case key.Matches(msg, m.keymap.Home):
		m.cursor = 0

	case key.Matches(msg, m.keymap.End):
		m.cursor = max(last, 0)

	case key.Matches(msg, m.keymap.Toggle):
		if last >= 0 {
			code := m.plan.Groups[m.cursor].Code
			m.selected[code] = !m.selected[code]
		}

	case key.Matches(msg, m.keymap.SelectAll):
		for _, g := range m.plan.Groups {
			m.selected[g.Code] = true
		}

	case key.Matches(msg, m.keymap.DeselectAll):
		for _, g := range m.plan.Groups {
			m.selected[g.Code] = false
		}

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *Model) scroll() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m Model) visibleRows() int {
	if m.height <= headerLines {
		return max(len(m.plan.Groups), 1)
	}
	return m.height - headerLines
}

// Confirmed reports whether the user asked to delete the selection.
func (m Model) Confirmed() bool {
	return m.confirmed
}

// Selection returns the plan restricted to the selected groups.
func (m Model) Selection() dedup.Plan {
	return m.plan.Filter(func(g dedup.GroupPlan) bool {
		return m.selected[g.Code]
	})
}

// View renders the review screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Duplicate review"))
	b.WriteString("\n")

	sel := m.Selection()
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("%d of %d groups selected, %d panels to delete",
		len(sel.Groups), len(m.plan.Groups), len(sel.DeletionIDs()))))
	b.WriteString("\n\n")

	if len(m.plan.Groups) == 0 {
		b.WriteString(m.theme.Muted.Render("No duplicates found"))
		b.WriteString("\n")
	}

	end := min(m.offset+m.visibleRows(), len(m.plan.Groups))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderGroup(i))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.Footer.Render(m.help.View(m.keymap)))
	return b.String()
}

func (m Model) renderGroup(i int) string {
	g := m.plan.Groups[i]

	check := "[ ]"
	if m.selected[g.Code] {
		check = "[x]"
	}

	deletes := make([]string, len(g.DeletedIDs))
	for j, id := range g.DeletedIDs {
		deletes[j] = fmt.Sprintf("#%d %s", id, dims(g.DeletedDimensions[j]))
	}

	line := fmt.Sprintf("%s %-16s %s  %s",
		check,
		g.Code,
		m.theme.Keep.Render(fmt.Sprintf("keep #%d %s", g.SurvivorID, dims(g.SurvivorDimensions))),
		m.theme.Delete.Render("delete "+strings.Join(deletes, ", ")),
	)

	if i == m.cursor {
		return m.theme.Cursor.Render("› " + line)
	}
	return m.theme.Normal.Render("  " + line)
}

func dims(d model.Dimensions) string {
	return fmt.Sprintf("%dx%d", d.WidthPx, d.HeightPx)
}
