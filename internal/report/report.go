package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/christopherklint97/timething/internal/reconcile"
	"github.com/christopherklint97/timething/internal/summary"
)

const (
	ruleWidth   = 60
	barWidth    = 20
	filledBlock = "█"
	emptyBlock  = "░"
)

// Render writes one block per project with a positive allocation, then the
// total hours logged across those projects and any notices or warnings.
// Styling follows the terminal capabilities of w.
func Render(w io.Writer, rep *summary.Report) error {
	st := newStyles(lipgloss.NewRenderer(w))
	var b strings.Builder

	b.WriteString(st.title.Render("Utilization " + rep.Period.String()))
	b.WriteString("\n")

	total := 0.0
	rendered := 0
	if rep.Ledger != nil {
		for _, client := range rep.Ledger.SortedClients() {
			for _, p := range client.SortedProjects() {
				if p.Allocation <= 0 {
					continue
				}
				writeProject(&b, st, p)
				total += p.TotalHours
				rendered++
			}
		}
	}

	if rendered == 0 {
		b.WriteString(st.dim.Render("No allocated projects in this period."))
		b.WriteString("\n")
	}
	b.WriteString(st.total.Render(fmt.Sprintf("Total Hours Logged: %s hours", formatNumber(total))))
	b.WriteString("\n")

	for _, n := range rep.Notices {
		b.WriteString(st.warn.Render("! " + n))
		b.WriteString("\n")
	}
	for _, warning := range rep.Warnings {
		b.WriteString(st.warn.Render("! " + warning.Error()))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeProject(b *strings.Builder, st styles, p *reconcile.Project) {
	line := func(label, value string) {
		b.WriteString(st.label.Render(label + ":"))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	b.WriteString(st.rule.Render(strings.Repeat("=", ruleWidth)))
	b.WriteString("\n")
	b.WriteString(st.project.Render(fmt.Sprintf("%s / %s (%d)", p.Code, p.Name, p.ID)))
	b.WriteString("\n")
	b.WriteString(st.rule.Render(strings.Repeat("-", ruleWidth)))
	b.WriteString("\n")

	line("Logged", formatNumber(p.TotalHours)+" hours")
	line("Allocated Daily", formatNumber(p.AllocationHours())+" hours")
	if p.AllocationProgress != nil {
		line("Utilization", formatNumber(*p.AllocationProgress*100)+"% "+progressBar(st, *p.AllocationProgress))
	} else {
		line("Utilization", "n/a")
	}
	line("Remaining Hours", formatNumber(p.RemainingHours())+" hours")

	b.WriteString(st.rule.Render(strings.Repeat("-", ruleWidth)))
	b.WriteString("\n\n")
}

// progressBar renders [████░░░░] colored by how close pct is to the
// allocation: red below a third, yellow below two thirds, green otherwise.
func progressBar(st styles, pct float64) string {
	clamped := math.Max(0, math.Min(1, pct))
	filled := int(clamped * barWidth)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, barWidth-filled)

	style := st.good
	switch {
	case pct > 1:
		style = st.bad
	case pct < 0.33:
		style = st.bad
	case pct < 0.66:
		style = st.warn
	}
	return "[" + style.Render(bar) + "]"
}

// formatNumber rounds to two places and drops trailing zeros.
func formatNumber(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
