package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jaekwang-park/taskboard/internal/board"
	"github.com/jaekwang-park/taskboard/internal/model"
)

const barWidth = 20

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Taskboard"))
	b.WriteString("\n")

	switch m.mode {
	case modeLogin:
		b.WriteString(m.viewLogin())
	case modeForm:
		b.WriteString(m.viewForm())
	default:
		b.WriteString(m.viewList())
	}

	if m.status.text != "" {
		style := m.theme.Info
		if m.status.isErr {
			style = m.theme.Error
		}
		b.WriteString("\n" + style.Render(m.status.text) + "\n")
	}
	return b.String()
}

func (m Model) viewLogin() string {
	heading, action := "Log in", "enter log in"
	if m.register {
		heading, action = "Register", "enter create account"
	}
	return strings.Join([]string{
		m.theme.Text.Bold(true).Render(heading),
		m.username.View(),
		m.password.View(),
		"",
		m.help(action, "tab switch field", "ctrl+n login/register", "esc quit"),
	}, "\n")
}

func (m Model) viewForm() string {
	heading := "New task"
	if m.form.editID != 0 {
		heading = "Edit task"
	}
	lines := []string{m.theme.Text.Bold(true).Render(heading)}
	for i, in := range m.form.inputs {
		label := m.theme.Muted.Render(fmt.Sprintf("%-18s", fieldLabels[i]))
		lines = append(lines, label+" "+in.View())
	}
	lines = append(lines, "", m.help("enter save", "tab next field", "esc cancel"))
	return strings.Join(lines, "\n")
}

func (m Model) viewList() string {
	var b strings.Builder
	st := m.ctrl.Board().State()

	if user, ok := m.ctrl.User(); ok {
		b.WriteString(m.theme.Muted.Render("Hello, "+user) + "\n")
	}
	b.WriteString(m.theme.Muted.Render(fmt.Sprintf("filter: %s  sort: %s %s", st.Filter, st.SortKey, st.SortDir)))
	if st.Tag != "" {
		b.WriteString(m.theme.Tag.Render("  #" + st.Tag))
	}
	if m.mode == modeSearch {
		b.WriteString("\n" + m.search.View())
	} else if st.DebouncedQuery != "" {
		b.WriteString(m.theme.Muted.Render("  search: " + st.DebouncedQuery))
	}
	b.WriteString("\n\n")

	view := m.ctrl.View()
	if len(view) == 0 {
		b.WriteString(m.theme.Muted.Render("No tasks.") + "\n")
	}
	now := m.opts.Now()
	for i, t := range view {
		b.WriteString(m.renderRow(t, i == m.cursor, board.DueStateOf(t, now)))
		b.WriteString("\n")
	}

	if m.showStats {
		b.WriteString("\n" + m.renderStats(m.ctrl.Stats()) + "\n")
	}

	b.WriteString("\n" + m.help("a add", "e edit", "space done", "p pin", "d delete", "/ search",
		"f filter", "# tag", "s sort", "r reverse", "t stats", "x export", "D theme", "L logout", "q quit"))
	return b.String()
}

func (m Model) renderRow(t model.Task, selected bool, due board.DueState) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	pin := "  "
	if t.Pinned {
		pin = m.theme.Pin.Render("★ ")
	}

	title := m.theme.Text.Render(t.Title)
	switch {
	case m.fading[t.ID]:
		title = m.theme.Fading.Render(t.Title)
	case t.Completed:
		title = m.theme.Done.Render(t.Title)
	case selected:
		title = m.theme.Selected.Render(t.Title)
	}

	parts := []string{pin + check, title}
	if t.Priority != "" {
		parts = append(parts, m.theme.Muted.Render("("+string(t.Priority)+")"))
	}
	if t.DueDate != nil {
		parts = append(parts, m.theme.Due[due].Render(t.DueDate.String()))
	}
	for _, tag := range board.ParseTags(t.Tags) {
		parts = append(parts, m.theme.Tag.Render("#"+tag))
	}

	cursor := "  "
	if selected {
		cursor = "> "
	}
	row := cursor + strings.Join(parts, " ")
	if t.Description != "" {
		row += "\n      " + m.theme.Muted.Render(t.Description)
	}
	return row
}

func (m Model) renderStats(s board.Stats) string {
	lines := []string{
		fmt.Sprintf("Total %d   Completed %d   Active %d   Overdue %d", s.Total, s.Completed, s.Active, s.Overdue),
		"",
		m.theme.Text.Bold(true).Render("Priority"),
	}
	maxPriority := max(s.High, s.Medium, s.Low, 1)
	for _, row := range []struct {
		label string
		n     int
	}{{"high", s.High}, {"medium", s.Medium}, {"low", s.Low}} {
		lines = append(lines, m.bar(row.label, row.n, maxPriority))
	}

	lines = append(lines, "", m.theme.Text.Bold(true).Render("Due this week"))
	maxDay := 1
	for _, n := range s.Week {
		maxDay = max(maxDay, n)
	}
	for i, n := range s.Week {
		lines = append(lines, m.bar(board.Weekdays[i], n, maxDay))
	}
	return m.theme.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) bar(label string, n, maxN int) string {
	width := n * barWidth / maxN
	return fmt.Sprintf("%-7s %s %d", label, m.theme.Bar.Render(strings.Repeat("█", width)), n)
}

func (m Model) help(items ...string) string {
	rendered := make([]string, len(items))
	for i, item := range items {
		key, desc, _ := strings.Cut(item, " ")
		rendered[i] = m.theme.HelpKey.Render(key) + " " + m.theme.Muted.Render(desc)
	}
	return strings.Join(rendered, "  ")
}
