package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/bilimusic/internal/keymap"
	"github.com/llehouerou/bilimusic/internal/ui/render"
	"github.com/llehouerou/bilimusic/internal/ui/styles"
)

const (
	headerHeight = 1
	inputHeight  = 3
	statusHeight = 1
)

func (m *Model) layout() {
	m.input.SetSize(m.width, inputHeight)
	m.panel.SetSize(m.width, max(m.height-headerHeight-inputHeight-statusHeight, 0))
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	return strings.Join([]string{
		m.renderHeader(),
		m.input.View(),
		m.panel.View(),
		m.renderStatus(),
	}, "\n")
}

func (m Model) renderHeader() string {
	s := styles.T().S()
	left := s.Selected.Render("BILI MUSIC")
	var right string
	if e, ok := m.state.Selected(); ok {
		right = s.Base.Render(render.Truncate(e.Name, max(m.width-lipgloss.Width(left)-1, 0)))
	}
	return render.Row(left, right, m.width)
}

// renderStatus shows the last failure, or the key help for the focused
// component.
func (m Model) renderStatus() string {
	s := styles.T().S()
	if m.status != "" {
		return s.Error.Render(render.Truncate(m.status, m.width))
	}
	return s.Subtle.Render(render.Truncate(helpLine(m.focus.context()), m.width))
}

func helpLine(context string) string {
	var parts []string
	seen := make(map[keymap.Action]bool)
	for _, ctx := range []string{context, keymap.ContextGlobal} {
		for _, b := range keymap.ByContext(ctx) {
			if seen[b.Action] {
				continue
			}
			seen[b.Action] = true
			parts = append(parts, b.Keys[0]+" "+b.Description)
		}
	}
	return strings.Join(parts, " · ")
}
