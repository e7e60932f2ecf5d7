package library

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
)

func TestResolveLocator(t *testing.T) {
	cases := []struct {
		root, locator, expected string
	}{
		{"", "lrc/a.lrc", "lrc/a.lrc"},
		{"http://host/media", "lrc/a.lrc", "http://host/media/lrc/a.lrc"},
		{"http://host/media/", "lrc/a.lrc", "http://host/media/lrc/a.lrc"},
		{"http://host/media", "https://other/x.mp3", "https://other/x.mp3"},
	}
	for _, c := range cases {
		if got := ResolveLocator(c.root, c.locator); got != c.expected {
			t.Errorf("ResolveLocator(%q, %q) = %q, expected %q", c.root, c.locator, got, c.expected)
		}
	}
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/lrc/a.lrc" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "[00:01.00]a")
	}))
	defer server.Close()

	src := &HTTPSource{Root: server.URL + "/media"}
	rc, err := src.Open(context.Background(), "lrc/a.lrc")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	if b, _ := io.ReadAll(rc); string(b) != "[00:01.00]a" {
		t.Fatalf("Unexpected body: %q", b)
	}

	if _, err := src.Open(context.Background(), "lrc/missing.lrc"); err == nil {
		t.Fatal("Expected an error for a missing resource")
	}
}

func TestFSSource(t *testing.T) {
	remote := &MapSource{Files: map[string]string{"http://host/x.lrc": "remote"}}
	src := &FSSource{
		FS:     fstest.MapFS{"lrc/a.lrc": {Data: []byte("local")}},
		Remote: remote,
	}
	for locator, expected := range map[string]string{
		"lrc/a.lrc":         "local",
		"/lrc/a.lrc":        "local",
		"http://host/x.lrc": "remote",
	} {
		rc, err := src.Open(context.Background(), locator)
		if err != nil {
			t.Fatalf("%q: %v", locator, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		if string(b) != expected {
			t.Fatalf("%q: unexpected body %q", locator, b)
		}
	}
}
