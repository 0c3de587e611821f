package playlist

// Entry is a queued video.
// The JSON names match the payload stored by earlier releases.
type Entry struct {
	ID   string `json:"avId"` // canonical "av" form
	Name string `json:"name"`
	Pic  string `json:"pic"`
}

// Playlist holds an ordered collection of entries with unique IDs.
type Playlist struct {
	entries []Entry
}

// NewPlaylist creates a new empty playlist.
func NewPlaylist() *Playlist {
	return &Playlist{
		entries: make([]Entry, 0),
	}
}

// From creates a playlist holding a copy of entries.
// Later duplicates of an ID win, keeping the most-recently-added ordering.
func From(entries []Entry) *Playlist {
	p := NewPlaylist()
	for _, e := range entries {
		p.Put(e)
	}
	return p
}

// Put appends e, first removing any entry with the same ID.
func (p *Playlist) Put(e Entry) {
	p.RemoveID(e.ID)
	p.entries = append(p.entries, e)
}

// RemoveID removes the entry with the given ID.
// Returns false if no entry has that ID.
func (p *Playlist) RemoveID(id string) bool {
	i := p.IndexOf(id)
	if i < 0 {
		return false
	}
	p.entries = append(p.entries[:i], p.entries[i+1:]...)
	return true
}

// IndexOf returns the position of the entry with the given ID, or -1.
func (p *Playlist) IndexOf(id string) int {
	for i := range p.entries {
		if p.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Entries returns a copy of all entries.
func (p *Playlist) Entries() []Entry {
	result := make([]Entry, len(p.entries))
	copy(result, p.entries)
	return result
}

// Entry returns the entry at the given index, or nil if out of bounds.
func (p *Playlist) Entry(index int) *Entry {
	if index < 0 || index >= len(p.entries) {
		return nil
	}
	return &p.entries[index]
}

// Len returns the number of entries.
func (p *Playlist) Len() int {
	return len(p.entries)
}

// Move moves the entry at fromIndex to toIndex, shifting the entries in
// between. Returns false if either index is out of bounds.
func (p *Playlist) Move(fromIndex, toIndex int) bool {
	if fromIndex < 0 || fromIndex >= len(p.entries) {
		return false
	}
	if toIndex < 0 || toIndex >= len(p.entries) {
		return false
	}
	if fromIndex == toIndex {
		return true
	}

	e := p.entries[fromIndex]
	p.entries = append(p.entries[:fromIndex], p.entries[fromIndex+1:]...)
	p.entries = append(p.entries[:toIndex], append([]Entry{e}, p.entries[toIndex:]...)...)
	return true
}
