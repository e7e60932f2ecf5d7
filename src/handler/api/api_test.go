package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"lyricbox/src/jukebox"
	"lyricbox/src/library"
	"lyricbox/src/lyrics"
	"lyricbox/src/player"
	"lyricbox/src/prefs"
)

func newTestJukebox(t *testing.T) *jukebox.Jukebox {
	t.Helper()
	store, err := prefs.Open("")
	if err != nil {
		t.Fatal(err)
	}
	src := &library.MapSource{Files: map[string]string{
		"b/1.lrc": "[00:00.00]first\n[00:02.00]second",
	}}
	ctrl := player.NewController(&player.DummyTransport{}, &player.ManualScheduler{}, lyrics.NewCache(src))
	return jukebox.NewJukebox(context.Background(), library.NewCatalog(library.TestAlbums()), store, ctrl)
}

func newTestServer(t *testing.T, jb *jukebox.Jukebox) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/data", func(r chi.Router) {
		InitRouter(r, jb)
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func request(t *testing.T, server *httptest.Server, method, path, body string, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("Could not decode response of %s %s: %v", method, path, err)
		}
	}
	return res.StatusCode
}

func TestAlbumList(t *testing.T) {
	server := newTestServer(t, newTestJukebox(t))

	var list struct {
		Albums []struct {
			ID     string `json:"id"`
			Tracks []struct {
				Album string `json:"album"`
			} `json:"tracks"`
		} `json:"albums"`
	}
	if code := request(t, server, "GET", "/data/albums?sort=year-desc", "", &list); code != http.StatusOK {
		t.Fatalf("Unexpected status: %d", code)
	}
	var ids []string
	for _, a := range list.Albums {
		ids = append(ids, a.ID)
	}
	if expected := []string{"c", "b", "a"}; !reflect.DeepEqual(ids, expected) {
		t.Fatalf("Unexpected order: %v, expected %v", ids, expected)
	}
	if album := list.Albums[1].Tracks[0].Album; album != "Beta" {
		t.Fatalf("Track is missing its album title: %q", album)
	}

	var search struct {
		Hits []struct {
			Album string `json:"album"`
			Index int    `json:"index"`
		} `json:"hits"`
	}
	request(t, server, "GET", "/data/albums?q=ALPHA", "", &search)
	if len(search.Hits) != 2 || search.Hits[0].Album != "a" || search.Hits[0].Index != -1 || search.Hits[1].Album != "c" || search.Hits[1].Index != 0 {
		t.Fatalf("Unexpected hits: %+v", search.Hits)
	}
}

func TestAlbumNotFound(t *testing.T) {
	server := newTestServer(t, newTestJukebox(t))
	var body struct {
		Error string `json:"error"`
	}
	if code := request(t, server, "GET", "/data/albums/nope", "", &body); code != http.StatusNotFound {
		t.Fatalf("Unexpected status: %d", code)
	}
	if body.Error == "" {
		t.Fatalf("Missing error message")
	}
	if code := request(t, server, "POST", "/data/albums/b/play", `{"index": 9}`, nil); code != http.StatusBadRequest {
		t.Fatalf("Unexpected status: %d", code)
	}
}

func TestPlayback(t *testing.T) {
	server := newTestServer(t, newTestJukebox(t))

	if code := request(t, server, "POST", "/data/albums/b/play", `{"index": 1}`, nil); code != http.StatusOK {
		t.Fatalf("Unexpected status: %d", code)
	}
	var status struct {
		State string `json:"state"`
		Index int    `json:"index"`
		Track struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"track"`
	}
	request(t, server, "GET", "/data/player", "", &status)
	if status.State != "playing" || status.Index != 1 || status.Track.Title != "Two" || status.Track.ID != "Beta-Two" {
		t.Fatalf("Unexpected status: %+v", status)
	}

	var state struct {
		State string `json:"state"`
	}
	request(t, server, "POST", "/data/player/playstate", "", &state)
	if state.State != "paused" {
		t.Fatalf("Unexpected state: %q", state.State)
	}

	request(t, server, "POST", "/data/player/previous", "", nil)
	request(t, server, "GET", "/data/player", "", &status)
	if status.Index != 0 {
		t.Fatalf("Unexpected index after previous: %d", status.Index)
	}

	var repeat struct {
		Repeat string `json:"repeat"`
	}
	request(t, server, "POST", "/data/player/repeat", "", &repeat)
	if repeat.Repeat != "all" {
		t.Fatalf("Unexpected repeat mode: %q", repeat.Repeat)
	}
	request(t, server, "POST", "/data/player/repeat", `{"repeat": "off"}`, &repeat)
	if repeat.Repeat != "off" {
		t.Fatalf("Unexpected repeat mode: %q", repeat.Repeat)
	}
	if code := request(t, server, "POST", "/data/player/repeat", `{"repeat": "twice"}`, nil); code != http.StatusBadRequest {
		t.Fatalf("Unexpected status: %d", code)
	}

	var volume struct {
		Volume int `json:"volume"`
	}
	request(t, server, "POST", "/data/player/volume", `{"volume": 140}`, &volume)
	if volume.Volume != 100 {
		t.Fatalf("Unexpected volume: %d", volume.Volume)
	}
}

func TestPlaylist(t *testing.T) {
	server := newTestServer(t, newTestJukebox(t))
	request(t, server, "POST", "/data/albums/b/play", `{"index": 0}`, nil)
	request(t, server, "POST", "/data/albums/a/queue", `{"index": 1}`, nil)

	var plist struct {
		Index  int `json:"index"`
		Tracks []struct {
			Title string `json:"title"`
		} `json:"tracks"`
	}
	titles := func() []string {
		request(t, server, "GET", "/data/player/playlist", "", &plist)
		var out []string
		for _, tr := range plist.Tracks {
			out = append(out, tr.Title)
		}
		return out
	}
	if expected, got := []string{"One", "Two", "Three", "Two Again"}, titles(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("Unexpected playlist: %v", got)
	}

	if code := request(t, server, "PATCH", "/data/player/playlist", `{"from": 3, "to": 1}`, nil); code != http.StatusOK {
		t.Fatalf("Unexpected status: %d", code)
	}
	if expected, got := []string{"One", "Two Again", "Two", "Three"}, titles(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("Unexpected playlist: %v", got)
	}
	if code := request(t, server, "PATCH", "/data/player/playlist", `{"from": 0, "to": 2}`, nil); code != http.StatusBadRequest {
		t.Fatalf("Moving the current track should fail, got %d", code)
	}

	request(t, server, "POST", "/data/player/playlist/current", `{"index": 3}`, nil)
	titles()
	if plist.Index != 3 {
		t.Fatalf("Unexpected index: %d", plist.Index)
	}
}

func TestLikedAndPrefs(t *testing.T) {
	server := newTestServer(t, newTestJukebox(t))
	request(t, server, "POST", "/data/albums/c/play", "", nil)

	var toggled struct {
		ID    string `json:"id"`
		Liked bool   `json:"liked"`
	}
	request(t, server, "POST", "/data/liked", "", &toggled)
	if toggled.ID != "Gamma-Alpha Wave" || !toggled.Liked {
		t.Fatalf("Unexpected result: %+v", toggled)
	}
	request(t, server, "POST", "/data/liked", `{"id": "Beta-One"}`, &toggled)

	var liked struct {
		Tracks []struct {
			Album string `json:"album"`
			Index int    `json:"index"`
		} `json:"tracks"`
	}
	request(t, server, "GET", "/data/liked", "", &liked)
	if len(liked.Tracks) != 2 || liked.Tracks[0].Album != "c" || liked.Tracks[1].Album != "b" {
		t.Fatalf("Unexpected liked tracks: %+v", liked.Tracks)
	}

	if code := request(t, server, "POST", "/data/prefs/theme", `{"theme": "sepia"}`, nil); code != http.StatusBadRequest {
		t.Fatalf("Unexpected status: %d", code)
	}
	request(t, server, "POST", "/data/prefs/theme", `{"theme": "light"}`, nil)
	var p struct {
		Theme  string `json:"theme"`
		Volume int    `json:"volume"`
	}
	request(t, server, "GET", "/data/prefs", "", &p)
	if p.Theme != "light" || p.Volume != prefs.DefaultVolume {
		t.Fatalf("Unexpected prefs: %+v", p)
	}
}

func TestLyrics(t *testing.T) {
	jb := newTestJukebox(t)
	server := newTestServer(t, jb)
	request(t, server, "POST", "/data/albums/b/play", "", nil)

	var body struct {
		Lines []struct {
			Text string `json:"text"`
		} `json:"lines"`
	}
	deadline := time.Now().Add(time.Second)
	for len(body.Lines) == 0 && time.Now().Before(deadline) {
		request(t, server, "GET", "/data/player/lyrics", "", &body)
		time.Sleep(10 * time.Millisecond)
	}
	if len(body.Lines) != 2 || body.Lines[1].Text != "second" {
		t.Fatalf("Unexpected lyrics: %+v", body.Lines)
	}
}

func TestEvents(t *testing.T) {
	jb := newTestJukebox(t)
	server := newTestServer(t, jb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL+"/data/events", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Unexpected content type: %q", ct)
	}

	lines := make(chan string, 128)
	go func() {
		scanner := bufio.NewScanner(res.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()
	waitFor := func(event, data string) {
		t.Helper()
		timeout := time.After(2 * time.Second)
		var current string
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("Stream closed before %q", event)
				}
				if strings.HasPrefix(line, "event: ") {
					current = strings.TrimPrefix(line, "event: ")
				} else if current == event && strings.HasPrefix(line, "data: ") && strings.Contains(line, data) {
					return
				}
			case <-timeout:
				t.Fatalf("Event %q with %q not received", event, data)
			}
		}
	}

	waitFor("theme", `"dark"`)
	if err := jb.SetTheme(prefs.ThemeLight); err != nil {
		t.Fatal(err)
	}
	waitFor("theme", `"light"`)
	if err := jb.PlayAlbum(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	waitFor("playlist", `"Two Again"`)
	waitFor("state", `"playing"`)
}
