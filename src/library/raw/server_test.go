package raw

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"lyricbox/src/library"
)

func TestServer(t *testing.T) {
	src := &library.MapSource{Files: map[string]string{
		"covers/a.svg": "<svg></svg>",
	}}
	server := NewServer(src, "/media")

	res := httptest.NewRecorder()
	server.ServeHTTP(res, httptest.NewRequest("GET", "/media/covers/a.svg", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("Unexpected status: %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("Unexpected content type: %q", ct)
	}
	if body, _ := io.ReadAll(res.Body); string(body) != "<svg></svg>" {
		t.Fatalf("Unexpected body: %q", body)
	}

	res = httptest.NewRecorder()
	server.ServeHTTP(res, httptest.NewRequest("GET", "/media/covers/b.svg", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("Unexpected status: %d", res.Code)
	}

	res = httptest.NewRecorder()
	server.ServeHTTP(res, httptest.NewRequest("GET", "/media/../../etc/passwd", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("Escaping the root should not be possible, got %d", res.Code)
	}
}
