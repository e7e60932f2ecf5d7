package player

import (
	"math/rand"

	"github.com/samber/lo"

	"lyricbox/src/library"
)

// Playlist is an ordered queue of tracks with a cursor pointing at the
// current track. Reordering and shuffling never change which track is
// current, only where it is.
//
// A Playlist is not safe for concurrent use.
type Playlist struct {
	tracks   []library.Track
	index    int
	shuffled bool
	// The order before shuffling.
	original []library.Track
}

// Load replaces the contents of the playlist. The start index is clamped to
// the bounds of the new tracks.
func (pl *Playlist) Load(tracks []library.Track, start int) {
	pl.tracks = append([]library.Track(nil), tracks...)
	pl.original = append([]library.Track(nil), tracks...)
	pl.shuffled = false
	pl.index = lo.Clamp(start, 0, lo.Max([]int{len(tracks) - 1, 0}))
}

// Append adds a track to the end of the playlist. While shuffled, the track is
// also added to the original order so it is kept after unshuffling.
func (pl *Playlist) Append(track library.Track) {
	pl.tracks = append(pl.tracks, track)
	if pl.shuffled {
		pl.original = append(pl.original, track)
	}
}

// Move relocates the track at from so it ends up at index to. The current
// track can not be moved and nothing can be moved onto its position.
//
// False is returned if the move was rejected.
func (pl *Playlist) Move(from, to int) bool {
	if !pl.inRange(from) || !pl.inRange(to) || from == to {
		return false
	}
	if from == pl.index || to == pl.index {
		return false
	}

	track := pl.tracks[from]
	pl.tracks = append(pl.tracks[:from], pl.tracks[from+1:]...)
	pl.tracks = append(pl.tracks[:to], append([]library.Track{track}, pl.tracks[to:]...)...)

	if from < pl.index && to >= pl.index {
		pl.index--
	} else if from > pl.index && to <= pl.index {
		pl.index++
	}
	return true
}

// Shuffle randomizes the order of all tracks except the current one, which is
// moved to the front. The order from before the first shuffle is remembered.
func (pl *Playlist) Shuffle(rng *rand.Rand) {
	if len(pl.tracks) == 0 {
		return
	}
	if !pl.shuffled {
		pl.original = append([]library.Track(nil), pl.tracks...)
		pl.shuffled = true
	}

	current := pl.tracks[pl.index]
	rest := make([]library.Track, 0, len(pl.tracks)-1)
	rest = append(rest, pl.tracks[:pl.index]...)
	rest = append(rest, pl.tracks[pl.index+1:]...)
	rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	pl.tracks = append([]library.Track{current}, rest...)
	pl.index = 0
}

// Unshuffle restores the order from before shuffling and looks up the current
// track in it. False is returned if the playlist was not shuffled.
func (pl *Playlist) Unshuffle() bool {
	if !pl.shuffled {
		return false
	}
	current, hasCurrent := pl.Current()
	pl.tracks = append([]library.Track(nil), pl.original...)
	pl.shuffled = false

	_, index, ok := lo.FindIndexOf(pl.tracks, func(t library.Track) bool {
		return hasCurrent && t.SameAs(current)
	})
	if !ok {
		index = 0
	}
	pl.index = index
	return true
}

// Advance moves to the next track. False is returned at the end of the
// playlist.
func (pl *Playlist) Advance() bool {
	return pl.SetIndex(pl.index + 1)
}

// Retreat moves to the previous track. False is returned at the start of the
// playlist.
func (pl *Playlist) Retreat() bool {
	return pl.SetIndex(pl.index - 1)
}

// SetIndex makes the track at index i current.
func (pl *Playlist) SetIndex(i int) bool {
	if !pl.inRange(i) {
		return false
	}
	pl.index = i
	return true
}

func (pl *Playlist) inRange(i int) bool {
	return i >= 0 && i < len(pl.tracks)
}

func (pl *Playlist) Len() int {
	return len(pl.tracks)
}

// Index returns the index of the current track or -1 if the playlist is
// empty.
func (pl *Playlist) Index() int {
	if len(pl.tracks) == 0 {
		return -1
	}
	return pl.index
}

func (pl *Playlist) Current() (library.Track, bool) {
	if len(pl.tracks) == 0 {
		return library.Track{}, false
	}
	return pl.tracks[pl.index], true
}

// Tracks returns a copy of the tracks in playlist order.
func (pl *Playlist) Tracks() []library.Track {
	return append([]library.Track(nil), pl.tracks...)
}

func (pl *Playlist) Shuffled() bool {
	return pl.shuffled
}
