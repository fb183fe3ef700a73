package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(storyCount int, term string, width int, searching bool, loading bool) string {
	left := fmt.Sprintf(" %d stories", storyCount)
	if term != "" {
		left += " · " + truncateStr(term, 30)
	}
	if loading {
		left += " (loading...)"
	}

	right := " / search  d dismiss  o open  ? help  q quit "
	if searching {
		right = " esc/enter done  tab list "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
