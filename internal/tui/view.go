package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	clistyles "github.com/thenoetrevino/chores/internal/cli/styles"
	"github.com/thenoetrevino/chores/internal/models"
)

const (
	titleWidth  = 26
	statusWidth = 10
	lastWidth   = 12
	daysWidth   = 10
	limitWidth  = 6
)

// View renders the dashboard
func (m Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	// Wait for terminal size to be initialized
	if m.width == 0 {
		view.Content = "Loading..."
		return view
	}

	switch m.mode {
	case detailMode:
		view.Content = m.viewDetail()
	default:
		view.Content = m.viewList()
	}
	return view
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")

	switch {
	case !m.loaded:
		b.WriteString(m.styles.subtle.Render("Loading chores..."))
		b.WriteString("\n")
	case len(m.statuses) == 0:
		b.WriteString(m.styles.subtle.Render("No chores yet. Add one with 'chores add --title=...'"))
		b.WriteString("\n")
	case len(m.visible) == 0:
		b.WriteString(m.styles.subtle.Render(fmt.Sprintf("No %s chores", m.filter)))
		b.WriteString("\n")
	default:
		b.WriteString(m.styles.header.Render(formatRow("TITLE", "STATUS", "LAST DONE", "SINCE", "SOFT", "HARD")))
		b.WriteString("\n")
		for i, st := range m.visible {
			b.WriteString(m.viewRow(st, i == m.cursor))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.viewSummary())
		b.WriteString("\n")
	}

	b.WriteString(m.viewFooter())
	return b.String()
}

func (m Model) viewHeader() string {
	filter := "all"
	if m.filter != "" {
		filter = string(m.filter)
	}
	order := "file order"
	if m.sortUrgency {
		order = "by urgency"
	}

	info := fmt.Sprintf("filter: %s · sort: %s · %s", filter, order, m.Connection)
	return m.styles.title.Render("Chores") + "  " + m.styles.subtle.Render(info)
}

func (m Model) viewRow(st models.ChoreStatus, selected bool) string {
	lastDone := st.LastDone
	if lastDone == "" {
		lastDone = "-"
	}
	status := m.styles.status[st.Classification].Width(statusWidth).Render(string(st.Classification))

	if selected {
		return m.styles.selected.Render("> "+pad(st.Title, titleWidth)) + status +
			m.styles.selected.Render(formatTail(lastDone, clistyles.FormatDays(st), st))
	}
	return m.styles.row.Render("  "+pad(st.Title, titleWidth)) + status +
		m.styles.row.Render(formatTail(lastDone, clistyles.FormatDays(st), st))
}

func (m Model) viewSummary() string {
	counts := make(map[models.Classification]int)
	for _, st := range m.statuses {
		counts[st.Classification]++
	}

	parts := make([]string, 0, len(models.AllClassifications))
	for i := len(models.AllClassifications) - 1; i >= 0; i-- {
		c := models.AllClassifications[i]
		if counts[c] == 0 {
			continue
		}
		parts = append(parts, m.styles.status[c].Render(fmt.Sprintf("%d %s", counts[c], c)))
	}
	return strings.Join(parts, m.styles.subtle.Render(" · "))
}

func (m Model) viewFooter() string {
	var b strings.Builder
	if m.notice != "" {
		style := m.noticeStyle()
		b.WriteString(style.Render(wordwrap.String(m.notice, max(20, m.width))))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) viewDetail() string {
	footer := m.styles.subtle.Render("esc back · " + m.keys.MarkDone.Help().Key + " mark done · ↑/↓ scroll")
	if m.notice != "" {
		style := m.noticeStyle()
		footer = style.Render(m.notice) + "\n" + footer
	}
	return m.detail.View() + "\n" + footer
}

// renderDetail rebuilds the detail viewport for the selected chore
func (m *Model) renderDetail() {
	sel := m.Selected()
	if sel == nil {
		m.detail.SetContent("")
		return
	}

	width := max(40, m.width-4)
	label := m.styles.subtle.Width(16)

	var b strings.Builder
	b.WriteString(m.styles.title.Render(sel.Title))
	b.WriteString("\n")
	b.WriteString(m.styles.subtle.Render(sel.ID))
	b.WriteString("\n\n")

	lastDone := sel.LastDone
	if lastDone == "" {
		lastDone = "never"
	}
	fields := [][2]string{
		{"Status", m.styles.status[sel.Classification].Render(string(sel.Classification))},
		{"Last done", lastDone},
		{"Since", clistyles.FormatDays(*sel)},
		{"Soft deadline", clistyles.FormatDeadline(sel.SoftDeadline)},
		{"Hard deadline", clistyles.FormatDeadline(sel.HardDeadline)},
	}
	for _, f := range fields {
		b.WriteString(label.Render(f[0]+":") + f[1] + "\n")
	}

	if sel.Description != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.title.Render("Description"))
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(clistyles.RenderMarkdown(sel.Description, width-4), "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.title.Render("History"))
	b.WriteString("\n")
	if len(m.history) == 0 {
		b.WriteString(m.styles.subtle.Render("No completions recorded"))
		b.WriteString("\n")
	}
	for _, c := range m.history {
		b.WriteString("  " + c.DoneAt.Local().Format("2006-01-02 15:04") + "\n")
	}

	m.detail.SetContent(m.styles.detail.Width(width).Render(strings.TrimRight(b.String(), "\n")))
}

func (m Model) noticeStyle() lipgloss.Style {
	switch m.noticeLevel {
	case noticeError:
		return m.styles.errText
	case noticeWarn:
		return m.styles.warning
	default:
		return m.styles.info
	}
}

func formatRow(title, status, last, days, soft, hard string) string {
	return "  " + pad(title, titleWidth) + pad(status, statusWidth) +
		pad(last, lastWidth) + pad(days, daysWidth) + pad(soft, limitWidth) + pad(hard, limitWidth)
}

func formatTail(last, days string, st models.ChoreStatus) string {
	return pad(last, lastWidth) + pad(days, daysWidth) +
		pad(clistyles.FormatDeadline(st.SoftDeadline), limitWidth) +
		pad(clistyles.FormatDeadline(st.HardDeadline), limitWidth)
}

// pad truncates or right-pads s to exactly width cells, keeping one
// trailing space as the column gap
func pad(s string, width int) string {
	s = truncate.StringWithTail(s, uint(width-1), "…")
	return s + strings.Repeat(" ", max(1, width-lipgloss.Width(s)))
}
