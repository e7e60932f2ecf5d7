package library

import (
	"encoding/json"
	"math"
	"regexp"
	"time"
)

var interpFilename = regexp.MustCompile(`^.*\/(.+)\.\w+$`)

// Album is a catalog entry. Its tracks do not carry the album fields, use
// PlaylistTracks to get tracks that can be queued.
type Album struct {
	ID     string
	Title  string
	Year   int
	Cover  string
	Tracks []Track
}

// PlaylistTracks returns copies of the album's tracks with the album title
// and cover set.
func (album Album) PlaylistTracks() []Track {
	tracks := make([]Track, len(album.Tracks))
	for i, t := range album.Tracks {
		tracks[i] = album.stamp(t)
	}
	return tracks
}

// Track returns a queueable copy of the track at index i.
func (album Album) Track(i int) (Track, bool) {
	if i < 0 || i >= len(album.Tracks) {
		return Track{}, false
	}
	return album.stamp(album.Tracks[i]), true
}

func (album Album) stamp(t Track) Track {
	t.Album = album.Title
	t.AlbumCover = album.Cover
	return t
}

type jsonAlbum struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Year   int         `json:"year"`
	Cover  string      `json:"cover"`
	Tracks []jsonTrack `json:"tracks"`
}

type jsonTrack struct {
	File     string  `json:"file"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	LRC      string  `json:"lrc"`
}

// MarshalJSON encodes the album in the catalog file format.
func (album Album) MarshalJSON() ([]byte, error) {
	ja := jsonAlbum{
		ID:     album.ID,
		Title:  album.Title,
		Year:   album.Year,
		Cover:  album.Cover,
		Tracks: make([]jsonTrack, len(album.Tracks)),
	}
	for i, t := range album.Tracks {
		ja.Tracks[i] = jsonTrack{
			File:     t.URI,
			Title:    t.Title,
			Duration: t.Duration.Seconds(),
			LRC:      t.LyricsURI,
		}
	}
	return json.Marshal(ja)
}

// UnmarshalJSON decodes an album from the catalog file format.
func (album *Album) UnmarshalJSON(b []byte) error {
	var ja jsonAlbum
	if err := json.Unmarshal(b, &ja); err != nil {
		return err
	}
	*album = Album{
		ID:     ja.ID,
		Title:  ja.Title,
		Year:   ja.Year,
		Cover:  ja.Cover,
		Tracks: make([]Track, len(ja.Tracks)),
	}
	for i, jt := range ja.Tracks {
		album.Tracks[i] = Track{
			URI:       jt.File,
			Title:     jt.Title,
			Duration:  time.Duration(math.Round(jt.Duration*1000)) * time.Millisecond,
			LyricsURI: jt.LRC,
		}
		album.Tracks[i].InterpolateMissingFields()
	}
	return nil
}
