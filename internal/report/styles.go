package report

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	rule    lipgloss.Style
	project lipgloss.Style
	label   lipgloss.Style
	good    lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	dim     lipgloss.Style
	total   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		rule: r.NewStyle().
			Foreground(lipgloss.Color("8")),
		project: r.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true),
		label: r.NewStyle().
			Foreground(lipgloss.Color("8")),
		good: r.NewStyle().
			Foreground(lipgloss.Color("10")),
		warn: r.NewStyle().
			Foreground(lipgloss.Color("11")),
		bad: r.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true),
		dim: r.NewStyle().
			Foreground(lipgloss.Color("8")),
		total: r.NewStyle().
			Bold(true),
	}
}
