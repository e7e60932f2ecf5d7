package lyrics

import (
	"sort"
	"time"
)

// Resolve returns the index of the line that is active at time t, or -1 if
// t lies before the first timed line. Of lines sharing a timestamp, the last
// one is active.
//
// The previous index is only a hint. It is returned as-is when it is still
// correct so steady playback does not need to search.
func Resolve(tl Timeline, t time.Duration, prev int) int {
	n := tl.Timed()
	if prev >= 0 && prev < n && tl[prev].Time <= t && (prev == n-1 || tl[prev+1].Time > t) {
		return prev
	}
	return sort.Search(n, func(i int) bool { return tl[i].Time > t }) - 1
}

// Cursor follows the active line of a timeline as playback time changes.
type Cursor struct {
	timeline Timeline
	index    int
}

// NewCursor returns a cursor for the timeline positioned before the first
// line.
func NewCursor(tl Timeline) *Cursor {
	return &Cursor{timeline: tl, index: -1}
}

// Reset replaces the timeline and moves the cursor before the first line.
func (c *Cursor) Reset(tl Timeline) {
	c.timeline = tl
	c.index = -1
}

// Update moves the cursor to time t. Changed is only true if the active line
// differs from the one before the update.
func (c *Cursor) Update(t time.Duration) (index int, changed bool) {
	i := Resolve(c.timeline, t, c.index)
	changed = i != c.index
	c.index = i
	return i, changed
}

func (c *Cursor) Index() int {
	return c.index
}

func (c *Cursor) Timeline() Timeline {
	return c.timeline
}
