package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// MapSource is an in-memory Source used for testing.
type MapSource struct {
	Files map[string]string

	lock  sync.Mutex
	opens map[string]int
}

var _ Source = &MapSource{}

// Open implements the library.Source interface.
func (src *MapSource) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	src.lock.Lock()
	defer src.lock.Unlock()
	if src.opens == nil {
		src.opens = map[string]int{}
	}
	src.opens[locator]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, ok := src.Files[locator]
	if !ok {
		return nil, fmt.Errorf("%w: %q", os.ErrNotExist, locator)
	}
	return io.NopCloser(strings.NewReader(text)), nil
}

// Opens returns how many times the locator was opened.
func (src *MapSource) Opens(locator string) int {
	src.lock.Lock()
	defer src.lock.Unlock()
	return src.opens[locator]
}

// TestAlbums returns a small catalog used by tests.
func TestAlbums() []Album {
	return []Album{
		{
			ID:    "b",
			Title: "Beta",
			Year:  2001,
			Tracks: []Track{
				{URI: "b/1.mp3", Title: "One", LyricsURI: "b/1.lrc"},
				{URI: "b/2.mp3", Title: "Two", LyricsURI: "b/2.lrc"},
				{URI: "b/3.mp3", Title: "Three"},
			},
		},
		{
			ID:    "a",
			Title: "alpha",
			Year:  1999,
			Tracks: []Track{
				{URI: "a/1.mp3", Title: "Uno"},
				{URI: "a/2.mp3", Title: "Two Again"},
			},
		},
		{
			ID:    "c",
			Title: "Gamma",
			Year:  2010,
			Tracks: []Track{
				{URI: "c/1.mp3", Title: "Alpha Wave"},
			},
		},
	}
}
