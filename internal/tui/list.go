package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/hnstories/internal/story"
)

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// formatDate renders the story date in local time, or "" when unknown.
func formatDate(s story.Story) string {
	created := s.Created()
	if created.IsZero() {
		return ""
	}
	return created.Local().Format("Jan 2, 2006 3:04 PM") + " (" + relativeTime(created) + ")"
}

func renderListItem(s story.Story, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(s.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(s.Title, width-4))
	}

	link := "  " + itemURLStyle.Render(truncateStr(s.URL, width-2))

	meta := "  " + itemAuthorStyle.Render("Author: "+s.Author) +
		" " + itemTimeStyle.Render("Date: "+formatDate(s)) +
		" " + itemMetaStyle.Render(fmt.Sprintf("Comments: %d  Points: %d", s.NumComments, s.Points))

	return title + "\n" + link + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(list []story.Story, cursor int, height int, width int) string {
	if len(list) == 0 {
		return lipglossCenter("No stories", width, height)
	}

	// Each item is 3 lines + 1 blank line
	itemHeight := 4
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(list) {
		end = len(list)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(list[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
