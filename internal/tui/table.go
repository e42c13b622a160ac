package tui

import (
	"fmt"
	"strings"

	"github.com/pedrolima/newsmood/internal/aggregate"
)

// renderSummaryTable draws the per-source breakdown, best average mood
// first.
func renderSummaryTable(summaries []aggregate.SourceSummary, width int) string {
	var lines []string
	lines = append(lines, paneTitleStyle.Render("Per-Source Breakdown"))
	lines = append(lines, "")

	if len(summaries) == 0 {
		lines = append(lines, helpDimStyle.Render("No sources in view"))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, helpDimStyle.Render(fmt.Sprintf(
		"%-10s %5s %7s %7s %7s %4s %4s", "Source", "N", "Avg", "Min", "Max", "Pos", "Neg")))

	for _, s := range summaries {
		avgStyle := neutralStyle
		if s.Mean > 0 {
			avgStyle = positiveStyle
		} else if s.Mean < 0 {
			avgStyle = negativeStyle
		}
		lines = append(lines, fmt.Sprintf("%-10s %5d %s %7.3f %7.3f %4d %4d",
			truncateStr(s.Source, 10),
			s.Headlines,
			avgStyle.Render(fmt.Sprintf("%+7.3f", s.Mean)),
			s.Min,
			s.Max,
			s.Positive,
			s.Negative,
		))
	}
	return strings.Join(lines, "\n")
}
