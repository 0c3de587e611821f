// Package cursor tracks a cursor and scroll offset over a list whose length
// and viewport height are supplied on every call.
package cursor

// Cursor is a position plus the first visible row.
type Cursor struct {
	pos    int
	offset int
	margin int
}

// New returns a cursor at the top that keeps margin rows visible around it.
func New(margin int) Cursor {
	return Cursor{margin: margin}
}

// Pos returns the cursor index.
func (c Cursor) Pos() int {
	return c.pos
}

// Offset returns the first visible index.
func (c Cursor) Offset() int {
	return c.offset
}

// Move shifts the cursor by delta, clamped to the list.
func (c *Cursor) Move(delta, listLen, height int) {
	c.Jump(c.pos+delta, listLen, height)
}

// Jump places the cursor at pos, clamped to the list.
func (c *Cursor) Jump(pos, listLen, height int) {
	if listLen == 0 {
		c.pos, c.offset = 0, 0
		return
	}
	c.pos = clamp(pos, 0, listLen-1)
	c.scroll(listLen, height)
}

// Clamp pulls the cursor back inside a list that may have shrunk.
func (c *Cursor) Clamp(listLen, height int) {
	c.Jump(c.pos, listLen, height)
}

// HandleKey applies a navigation key and reports whether it was one.
func (c *Cursor) HandleKey(key string, listLen, height int) bool {
	switch key {
	case "j", "down":
		c.Move(1, listLen, height)
	case "k", "up":
		c.Move(-1, listLen, height)
	case "g", "home":
		c.Jump(0, listLen, height)
	case "G", "end":
		c.Jump(listLen-1, listLen, height)
	default:
		return false
	}
	return true
}

func (c *Cursor) scroll(listLen, height int) {
	if height <= 0 {
		return
	}
	margin := min(c.margin, (height-1)/2)
	if c.pos < c.offset+margin {
		c.offset = c.pos - margin
	}
	if c.pos >= c.offset+height-margin {
		c.offset = c.pos - height + margin + 1
	}
	c.offset = clamp(c.offset, 0, max(listLen-height, 0))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
