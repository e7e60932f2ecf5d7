package library

import (
	"testing"
)

func TestTrackIdentity(t *testing.T) {
	a := Track{URI: "1.mp3", Title: "Airbag", Album: "OK Computer"}
	b := Track{URI: "other.mp3", Title: "Airbag", Album: "OK Computer", AlbumCover: "c.jpg"}
	c := Track{URI: "1.mp3", Title: "Airbag", Album: "Live"}

	if a.ID() != "OK Computer-Airbag" {
		t.Fatalf("Unexpected ID: %q", a.ID())
	}
	if !a.SameAs(b) {
		t.Fatal("Tracks with the same album and title should be the same")
	}
	if a.SameAs(c) {
		t.Fatal("Tracks from different albums should differ")
	}
}

func TestPlaylistTracks(t *testing.T) {
	album := FallbackAlbums()[0]
	tracks := album.PlaylistTracks()
	if len(tracks) != 2 {
		t.Fatalf("Unexpected track count: %d", len(tracks))
	}
	for _, tr := range tracks {
		if tr.Album != album.Title || tr.AlbumCover != album.Cover {
			t.Fatalf("Album fields not set: %#v", tr)
		}
	}
	tracks[0].Title = "changed"
	if album.Tracks[0].Title == "changed" {
		t.Fatal("PlaylistTracks did not copy")
	}
}
