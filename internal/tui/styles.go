package tui

import (
	"charm.land/lipgloss/v2"
	"github.com/thenoetrevino/chores/internal/config"
	"github.com/thenoetrevino/chores/internal/models"
)

// styles are the dashboard styles derived from one color scheme
type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	row      lipgloss.Style
	selected lipgloss.Style
	subtle   lipgloss.Style
	info     lipgloss.Style
	warning  lipgloss.Style
	errText  lipgloss.Style
	detail   lipgloss.Style
	status   map[models.Classification]lipgloss.Style
}

func newStyles(c config.ColorScheme) styles {
	statusStyle := func(hex string) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(hex))
	}

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.Title)),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.Subtle)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(c.Border)),
		row: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Normal)),
		selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.Accent)).
			Background(lipgloss.Color(c.SelectedBg)),
		subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.Subtle)),
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color(c.InfoFg)),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color(c.WarningFg)),
		errText: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.ErrorFg)),
		detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.Accent)).
			Padding(0, 1),
		status: map[models.Classification]lipgloss.Style{
			models.StatusOK:      statusStyle(c.OK),
			models.StatusDueSoon: statusStyle(c.DueSoon),
			models.StatusOverdue: statusStyle(c.Overdue),
			models.StatusUnknown: statusStyle(c.Unknown),
		},
	}
}
