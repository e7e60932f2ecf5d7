package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrAlbumNotFound is returned when an album ID is not in the catalog.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrIndexOutOfRange is returned when a track index does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// SortOrder determines the order in which Sorted returns albums.
type SortOrder string

const (
	SortNameAsc  SortOrder = "name-asc"
	SortNameDesc SortOrder = "name-desc"
	SortYearAsc  SortOrder = "year-asc"
	SortYearDesc SortOrder = "year-desc"
)

// Hit is a search result. TrackIndex is -1 if the album itself matched.
type Hit struct {
	Album      Album
	TrackIndex int
}

// Catalog is the read-only collection of albums available to a session.
type Catalog struct {
	albums []Album
}

// NewCatalog creates a catalog from a list of albums.
func NewCatalog(albums []Album) *Catalog {
	return &Catalog{albums: append([]Album(nil), albums...)}
}

// LoadCatalog reads a JSON list of albums from the source. If the catalog
// can not be loaded, the fallback albums are used instead.
func LoadCatalog(ctx context.Context, src Source, locator string) *Catalog {
	albums, err := readAlbums(ctx, src, locator)
	if err != nil {
		log.WithField("catalog", locator).Errorf("Could not load albums, using fallback: %v", err)
		return NewCatalog(FallbackAlbums())
	}
	log.WithField("catalog", locator).Infof("Loaded %d albums", len(albums))
	return NewCatalog(albums)
}

func readAlbums(ctx context.Context, src Source, locator string) ([]Album, error) {
	rc, err := src.Open(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var albums []Album
	if err := json.NewDecoder(rc).Decode(&albums); err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", locator, err)
	}
	return albums, nil
}

// Albums returns all albums in catalog order.
func (cat *Catalog) Albums() []Album {
	return append([]Album(nil), cat.albums...)
}

// Album looks up an album by its ID.
func (cat *Catalog) Album(id string) (Album, error) {
	album, ok := lo.Find(cat.albums, func(a Album) bool { return a.ID == id })
	if !ok {
		return Album{}, fmt.Errorf("%w: %q", ErrAlbumNotFound, id)
	}
	return album, nil
}

// AlbumTrack returns a queueable copy of a track of an album.
func (cat *Catalog) AlbumTrack(id string, index int) (Track, error) {
	album, err := cat.Album(id)
	if err != nil {
		return Track{}, err
	}
	track, ok := album.Track(index)
	if !ok {
		return Track{}, fmt.Errorf("%w: track %d of %q", ErrIndexOutOfRange, index, id)
	}
	return track, nil
}

// Sorted returns the albums in the specified order. Unknown orders sort by
// ascending name.
func (cat *Catalog) Sorted(order SortOrder) []Album {
	albums := cat.Albums()
	var less func(a, b Album) bool
	switch order {
	case SortNameDesc:
		less = func(a, b Album) bool { return compareTitles(a.Title, b.Title) > 0 }
	case SortYearAsc:
		less = func(a, b Album) bool { return a.Year < b.Year }
	case SortYearDesc:
		less = func(a, b Album) bool { return a.Year > b.Year }
	default:
		less = func(a, b Album) bool { return compareTitles(a.Title, b.Title) < 0 }
	}
	sort.SliceStable(albums, func(i, j int) bool { return less(albums[i], albums[j]) })
	return albums
}

func compareTitles(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Search looks for the term in album and track titles, ignoring case. Each
// album that matches is directly followed by its matching tracks.
func (cat *Catalog) Search(term string) []Hit {
	term = strings.ToLower(term)
	if term == "" {
		return nil
	}
	var hits []Hit
	for _, album := range cat.albums {
		if strings.Contains(strings.ToLower(album.Title), term) {
			hits = append(hits, Hit{Album: album, TrackIndex: -1})
		}
		for i, track := range album.Tracks {
			if strings.Contains(strings.ToLower(track.Title), term) {
				hits = append(hits, Hit{Album: album, TrackIndex: i})
			}
		}
	}
	return hits
}

// LikedTracks resolves liked IDs to the tracks they refer to, in the order of
// the IDs. IDs that are not in the catalog are skipped.
func (cat *Catalog) LikedTracks(ids []string) []Hit {
	return lo.FlatMap(ids, func(id string, _ int) []Hit {
		var hits []Hit
		for _, album := range cat.albums {
			for i, track := range album.PlaylistTracks() {
				if track.ID() == id {
					hits = append(hits, Hit{Album: album, TrackIndex: i})
				}
			}
		}
		return hits
	})
}
