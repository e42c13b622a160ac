package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(headlineCount int, filterLabel string, fetchedAt time.Time, width int, searching, refreshing bool) string {
	left := fmt.Sprintf(" %d headlines", headlineCount)
	if filterLabel != "All" {
		left += " · " + filterLabel
	}
	if !fetchedAt.IsZero() {
		left += " · updated " + fetchedAt.UTC().Format("15:04:05Z")
	}
	if refreshing {
		left += " (refreshing...)"
	}

	right := " / search  f sources  r refresh  e export  ? help  q quit "
	if searching {
		right = " esc cancel  enter apply "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
