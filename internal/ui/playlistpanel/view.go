package playlistpanel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/bilimusic/internal/icons"
	"github.com/llehouerou/bilimusic/internal/playlist"
	"github.com/llehouerou/bilimusic/internal/ui/render"
	"github.com/llehouerou/bilimusic/internal/ui/styles"
)

const selectedSymbol = "▶"

// View renders the panel.
func (m Model) View() string {
	if m.Width() == 0 || m.Height() == 0 {
		return ""
	}
	width := m.InnerWidth()

	lines := make([]string, 0, m.ListHeight()+2)
	lines = append(lines, m.renderHeader(width), render.Separator(width))

	for row := range m.ListHeight() {
		i := m.cursor.Offset() + row
		if i >= len(m.entries) {
			lines = append(lines, strings.Repeat(" ", width))
			continue
		}
		lines = append(lines, m.renderEntry(i, width))
	}

	return styles.Panel(m.IsFocused()).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderHeader(width int) string {
	pos := 0
	for i, e := range m.entries {
		if e.ID == m.selectedID {
			pos = i + 1
			break
		}
	}
	left := fmt.Sprintf("Playlist (%d/%d)", pos, len(m.entries))
	right := "loop: " + m.loop.String()
	if icon := icons.Loop(m.loop); icon != "" {
		right += " " + icon
	}
	s := styles.T().S()
	return render.Row(s.Title.Render(left), s.Muted.Render(right), width)
}

// renderEntry renders "▶ name  av123" with the id right-aligned.
func (m Model) renderEntry(i, width int) string {
	e := m.entries[i]
	prefix := "  "
	if e.ID == m.selectedID {
		prefix = selectedSymbol + " "
	}

	idWidth := lipgloss.Width(e.ID)
	nameWidth := max(width-2-idWidth-1, 0)
	line := prefix + render.Fit(displayName(e), nameWidth) + " " + e.ID

	return m.entryStyle(i, e).Render(line)
}

func (m Model) entryStyle(i int, e playlist.Entry) lipgloss.Style {
	s := styles.T().S()
	isCursor := m.IsFocused() && i == m.cursor.Pos()
	isSelected := e.ID == m.selectedID
	switch {
	case isCursor && isSelected:
		return s.Cursor.Inherit(s.Selected)
	case isCursor:
		return s.Cursor
	case isSelected:
		return s.Selected
	default:
		return s.Base
	}
}

// displayName falls back to the id for entries saved without a title.
func displayName(e playlist.Entry) string {
	if e.Name == "" {
		return e.ID
	}
	return e.Name
}
