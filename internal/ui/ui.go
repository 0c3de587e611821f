// Package ui holds sizing helpers shared by the TUI components.
package ui

// Panel geometry.
const (
	// ScrollMargin is how many rows stay visible around the cursor.
	ScrollMargin = 2

	// BorderSize is the rows (or columns) taken by a rounded border.
	BorderSize = 2

	// HeaderHeight covers a panel title and its separator.
	HeaderHeight = 2

	// PanelOverhead is what a bordered panel with a header spends on chrome.
	PanelOverhead = BorderSize + HeaderHeight
)

// Base tracks the size and focus of a component. Embed it in models.
type Base struct {
	width, height int
	focused       bool
}

// SetFocused sets whether the component receives keys.
func (b *Base) SetFocused(focused bool) {
	b.focused = focused
}

// IsFocused reports whether the component receives keys.
func (b Base) IsFocused() bool {
	return b.focused
}

// SetSize sets the outer dimensions.
func (b *Base) SetSize(width, height int) {
	b.width = width
	b.height = height
}

// Width returns the outer width.
func (b Base) Width() int {
	return b.width
}

// Height returns the outer height.
func (b Base) Height() int {
	return b.height
}

// InnerWidth is the width left inside a border.
func (b Base) InnerWidth() int {
	return max(b.width-BorderSize, 0)
}

// ListHeight is the number of rows a bordered panel with a header can list.
func (b Base) ListHeight() int {
	return max(b.height-PanelOverhead, 0)
}
