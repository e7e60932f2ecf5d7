package webui

import (
	"io/fs"
	"testing"
)

func TestFiles(t *testing.T) {
	files, err := Files("release")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Stat(files, "index.html"); err != nil {
		t.Fatalf("index.html is not embedded: %v", err)
	}
	if _, err := Files("beta"); err == nil {
		t.Fatalf("Expected an error for an invalid build")
	}
}
