package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"lyricbox/src/library"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestLoadConfig(t *testing.T) {
	file := writeConfig(t, `
bind: ":3000"
storage_dir: "~/.lyricbox"
catalog: "albums.json"
media_root: "https://example.com/media/"
frame_rate: 20
transport: mpd
mpd:
  network: tcp
  address: localhost:6600
  root: "music/"
`)
	conf, err := LoadConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	if errs := conf.Validate(); len(errs) > 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if conf.Address != ":3000" || conf.FrameRate != 20 || conf.MPD.Address != "localhost:6600" || conf.MPD.Password != nil {
		t.Fatalf("Unexpected config: %+v", conf)
	}
}

func TestLoadConfigUnknownField(t *testing.T) {
	file := writeConfig(t, "bind: \":3000\"\ncolors: {}\n")
	if _, err := LoadConfig(file); err == nil {
		t.Fatalf("Expected an error for an unknown field")
	}
}

func TestValidate(t *testing.T) {
	file := writeConfig(t, "frame_rate: -1\ntransport: mpd\n")
	conf, err := LoadConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	// bind, catalog, frame_rate and mpd.address
	if errs := conf.Validate(); len(errs) != 4 {
		t.Fatalf("Unexpected errors: %v", errs)
	}

	conf = &config{Address: ":80", Catalog: "a.json", Transport: "vinyl"}
	if errs := conf.Validate(); len(errs) != 1 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
}

func TestDefaultTransport(t *testing.T) {
	conf, err := LoadConfig(writeConfig(t, "bind: \":80\"\ncatalog: a.json\n"))
	if err != nil {
		t.Fatal(err)
	}
	if conf.Transport != "none" {
		t.Fatalf("Unexpected transport: %q", conf.Transport)
	}
	if errs := conf.Validate(); len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
}

func TestMediaSource(t *testing.T) {
	if _, ok := mediaSource("https://example.com/").(*library.HTTPSource); !ok {
		t.Fatalf("Expected an HTTP source for a URL")
	}
	if _, ok := mediaSource(t.TempDir()).(*library.FSSource); !ok {
		t.Fatalf("Expected a filesystem source for a directory")
	}
}

func TestTrackDurations(t *testing.T) {
	catalog := library.NewCatalog([]library.Album{{
		ID:     "x",
		Tracks: []library.Track{{URI: "x/1.mp3", Duration: 90 * time.Second}},
	}})
	lookup := trackDurations(catalog)
	if d := lookup("x/1.mp3"); d != 90*time.Second {
		t.Fatalf("Unexpected duration: %v", d)
	}
	if d := lookup("y.mp3"); d != 0 {
		t.Fatalf("Unknown tracks should have no duration, got %v", d)
	}
}
