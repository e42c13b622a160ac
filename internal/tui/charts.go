package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pedrolima/newsmood/internal/aggregate"
	"github.com/pedrolima/newsmood/internal/sentiment"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

func labelStyle(l sentiment.Label) lipgloss.Style {
	switch l {
	case sentiment.Positive:
		return positiveStyle
	case sentiment.Negative:
		return negativeStyle
	default:
		return neutralStyle
	}
}

// renderDistribution draws one horizontal bar per label, scaled to the
// largest count.
func renderDistribution(dist []aggregate.LabelCount, width int) string {
	maxCount := 0
	for _, d := range dist {
		if d.Count > maxCount {
			maxCount = d.Count
		}
	}

	barWidth := width - 18 // label + count columns
	if barWidth < 4 {
		barWidth = 4
	}

	var lines []string
	lines = append(lines, paneTitleStyle.Render("Sentiment Distribution"))
	lines = append(lines, "")
	for _, d := range dist {
		n := 0
		if maxCount > 0 {
			n = d.Count * barWidth / maxCount
		}
		if d.Count > 0 && n == 0 {
			n = 1
		}
		bar := labelStyle(d.Label).Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%-9s %s %d", d.Label, bar, d.Count))
	}
	if maxCount == 0 {
		lines = append(lines, "", helpDimStyle.Render("No headlines in view"))
	}
	return strings.Join(lines, "\n")
}

// renderSeries draws one sparkline row per source from the smoothed bucket
// means, newest bucket on the right.
func renderSeries(series []aggregate.BucketMean, width int) string {
	var lines []string
	lines = append(lines, paneTitleStyle.Render("Mean Sentiment Over Time"))
	lines = append(lines, "")

	bySource := make(map[string][]aggregate.BucketMean)
	var order []string
	for _, b := range series {
		if _, ok := bySource[b.Source]; !ok {
			order = append(order, b.Source)
		}
		bySource[b.Source] = append(bySource[b.Source], b)
	}

	if len(order) == 0 {
		lines = append(lines, helpDimStyle.Render("No recent data to plot for the selected window"))
		return strings.Join(lines, "\n")
	}

	sparkWidth := width - 20 // source + value columns
	if sparkWidth < 4 {
		sparkWidth = 4
	}

	for _, src := range order {
		buckets := bySource[src]
		if len(buckets) > sparkWidth {
			buckets = buckets[len(buckets)-sparkWidth:]
		}
		var spark strings.Builder
		for _, b := range buckets {
			spark.WriteRune(sparkRune(b.Smoothed))
		}
		latest := buckets[len(buckets)-1].Smoothed
		style := neutralStyle
		if latest > 0 {
			style = positiveStyle
		} else if latest < 0 {
			style = negativeStyle
		}
		lines = append(lines, fmt.Sprintf("%-10s %s %s",
			truncateStr(src, 10),
			style.Render(spark.String()),
			style.Render(fmt.Sprintf("%+.3f", latest))))
	}
	return strings.Join(lines, "\n")
}

// sparkRune maps a compound score in [-1, 1] to one of eight bar heights.
func sparkRune(v float64) rune {
	if v < -1 {
		v = -1
	}
	if v > 1 {
		v = 1
	}
	idx := int((v + 1) / 2 * float64(len(sparkLevels)))
	if idx >= len(sparkLevels) {
		idx = len(sparkLevels) - 1
	}
	return sparkLevels[idx]
}
