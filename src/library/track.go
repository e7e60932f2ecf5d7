package library

import (
	"time"
)

// Track holds all information associated with a single piece of music as it
// appears in a playlist.
type Track struct {
	URI       string
	Title     string
	Duration  time.Duration
	LyricsURI string

	Album      string
	AlbumCover string
}

// ID returns the identity under which the track is stored in the liked set.
func (t Track) ID() string {
	return t.Album + "-" + t.Title
}

// SameAs reports whether both tracks denote the same song. Tracks are copied
// into playlists, so identity is structural rather than by URI or position.
func (t Track) SameAs(other Track) bool {
	return t.Album == other.Album && t.Title == other.Title
}

// InterpolateMissingFields derives the title from the URI if it is not set.
func (t *Track) InterpolateMissingFields() {
	if t.Title != "" {
		return
	}
	if match := interpFilename.FindStringSubmatch(t.URI); match != nil {
		t.Title = match[1]
	} else {
		t.Title = t.URI
	}
}
