package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"lyricbox/src/jukebox"
	"lyricbox/src/library"
	"lyricbox/src/lyrics"
	"lyricbox/src/player"
)

var errInvalidMove = errors.New("invalid move")

// InitRouter attaches all API routes to the specified router.
func InitRouter(r chi.Router, jukebox *jukebox.Jukebox) {
	api := API{jukebox: jukebox}
	r.Group(func(r chi.Router) {
		r.Use(jsonCtx)
		r.Route("/albums", func(r chi.Router) {
			r.Get("/", api.albumList)
			r.Route("/{albumID}", func(r chi.Router) {
				r.Get("/", api.albumGet)
				r.Post("/play", api.albumPlay)
				r.Post("/queue", api.albumQueue)
			})
		})
		r.Route("/player", func(r chi.Router) {
			r.Get("/", api.playerStatus)
			r.Post("/playstate", api.playerTogglePause)
			r.Post("/next", api.playerNext)
			r.Post("/previous", api.playerPrevious)
			r.Post("/time", api.playerSetTime)
			r.Post("/volume", api.playerSetVolume)
			r.Post("/shuffle", api.playerShuffle)
			r.Post("/repeat", api.playerSetRepeat)
			r.Route("/playlist", func(r chi.Router) {
				r.Get("/", api.playlistContents)
				r.Patch("/", api.playlistMove)
				r.Post("/current", api.playlistSetCurrent)
			})
			r.Get("/lyrics", api.playerLyrics)
		})
		r.Route("/liked", func(r chi.Router) {
			r.Get("/", api.likedList)
			r.Post("/", api.likedToggle)
			r.Post("/play", api.likedPlay)
		})
		r.Route("/prefs", func(r chi.Router) {
			r.Get("/", api.prefsGet)
			r.Post("/theme", api.prefsSetTheme)
		})
	})
	r.Get("/events", api.events)
}

// API contains the state that is accessible over the REST API.
type API struct {
	jukebox *jukebox.Jukebox
}

// WriteError writes an error to the client as a JSON object. Unknown albums
// are reported as not found, all other errors as a bad request.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	log.Errorf("Error serving %s: %v", r.RemoteAddr, err)
	w.Header().Set("Content-Type", "application/json")
	if errors.Is(err, library.ErrAlbumNotFound) {
		w.WriteHeader(http.StatusNotFound)
	} else {
		w.WriteHeader(http.StatusBadRequest)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

func jsonCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func jsonTrack(tr *library.Track) interface{} {
	if tr == nil {
		return nil
	}
	var struc struct {
		ID       string  `json:"id"`
		URI      string  `json:"uri"`
		Title    string  `json:"title"`
		Album    string  `json:"album,omitempty"`
		Cover    string  `json:"cover,omitempty"`
		Lyrics   string  `json:"lyrics,omitempty"`
		Duration float64 `json:"duration"`
	}
	struc.ID = tr.ID()
	struc.URI = tr.URI
	struc.Title = tr.Title
	struc.Album = tr.Album
	struc.Cover = tr.AlbumCover
	struc.Lyrics = tr.LyricsURI
	struc.Duration = seconds(tr.Duration)
	return struc
}

func jsonTracks(inList []library.Track) []interface{} {
	outList := make([]interface{}, len(inList))
	for i, tr := range inList {
		outList[i] = jsonTrack(&tr)
	}
	return outList
}

func jsonAlbum(album library.Album) interface{} {
	return map[string]interface{}{
		"id":     album.ID,
		"title":  album.Title,
		"year":   album.Year,
		"cover":  album.Cover,
		"tracks": jsonTracks(album.PlaylistTracks()),
	}
}

func jsonHits(hits []library.Hit) []interface{} {
	out := make([]interface{}, len(hits))
	for i, hit := range hits {
		var track interface{}
		if t, ok := hit.Album.Track(hit.TrackIndex); ok {
			track = jsonTrack(&t)
		}
		out[i] = map[string]interface{}{
			"album": hit.Album.ID,
			"index": hit.TrackIndex,
			"track": track,
		}
	}
	return out
}

func jsonLyrics(tl lyrics.Timeline, index int) interface{} {
	lines := make([]interface{}, len(tl))
	for i, line := range tl {
		lines[i] = map[string]interface{}{
			"time":  seconds(line.Time),
			"timed": line.Timed,
			"text":  line.Text,
		}
	}
	return map[string]interface{}{
		"lines": lines,
		"index": index,
	}
}

func jsonStatus(status player.Status) interface{} {
	return map[string]interface{}{
		"state":    status.PlayState,
		"repeat":   status.Repeat,
		"shuffled": status.Shuffled,
		"index":    status.TrackIndex,
		"track":    jsonTrack(status.Track),
		"time":     seconds(status.Time),
		"duration": seconds(status.Duration),
		"volume":   status.Volume,
	}
}
