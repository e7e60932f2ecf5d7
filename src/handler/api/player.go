package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"lyricbox/src/jukebox"
	"lyricbox/src/player"
	"lyricbox/src/util/eventsource"
)

// eventKeepAlive is the interval at which idle event streams are pinged so
// dead connections are noticed.
const eventKeepAlive = 30 * time.Second

func (api *API) playerStatus(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(jsonStatus(api.jukebox.Controller().Status()))
}

func (api *API) playerTogglePause(w http.ResponseWriter, r *http.Request) {
	ctrl := api.jukebox.Controller()
	if err := ctrl.TogglePause(r.Context()); err != nil {
		WriteError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"state": ctrl.Status().PlayState,
	})
}

func (api *API) playerNext(w http.ResponseWriter, r *http.Request) {
	if err := api.jukebox.Controller().SkipNext(r.Context()); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) playerPrevious(w http.ResponseWriter, r *http.Request) {
	if err := api.jukebox.Controller().SkipPrevious(r.Context()); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) playerSetTime(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Time float64 `json:"time"`
	}
	if err := decodeBody(r, &data); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := api.jukebox.Controller().Seek(r.Context(), fromSeconds(data.Time)); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) playerSetVolume(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Volume int `json:"volume"`
	}
	if err := decodeBody(r, &data); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := api.jukebox.SetVolume(r.Context(), data.Volume); err != nil {
		WriteError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"volume": api.jukebox.Volume(),
	})
}

func (api *API) playerShuffle(w http.ResponseWriter, r *http.Request) {
	shuffled := api.jukebox.Controller().ToggleShuffle()
	json.NewEncoder(w).Encode(map[string]interface{}{
		"shuffled": shuffled,
	})
}

// playerSetRepeat sets the repeat mode from the body, or cycles to the next
// mode if none is specified.
func (api *API) playerSetRepeat(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Repeat string `json:"repeat"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &data); err != nil {
			WriteError(w, r, err)
			return
		}
	}
	ctrl := api.jukebox.Controller()
	var mode player.RepeatMode
	if data.Repeat == "" {
		mode = ctrl.CycleRepeat()
	} else {
		var err error
		if mode, err = player.ParseRepeatMode(data.Repeat); err != nil {
			WriteError(w, r, err)
			return
		}
		ctrl.SetRepeat(mode)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"repeat": mode,
	})
}

func (api *API) playlistContents(w http.ResponseWriter, r *http.Request) {
	tracks, index := api.jukebox.Controller().Playlist()
	json.NewEncoder(w).Encode(map[string]interface{}{
		"index":  index,
		"tracks": jsonTracks(tracks),
	})
}

func (api *API) playlistMove(w http.ResponseWriter, r *http.Request) {
	var data struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeBody(r, &data); err != nil {
		WriteError(w, r, err)
		return
	}
	if !api.jukebox.Controller().Move(data.From, data.To) {
		WriteError(w, r, errInvalidMove)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) playlistSetCurrent(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Index int `json:"index"`
	}
	if err := decodeBody(r, &data); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := api.jukebox.Controller().Play(r.Context(), data.Index); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) playerLyrics(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(jsonLyrics(api.jukebox.Controller().Lyrics()))
}

func (api *API) events(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	ctrl := api.jukebox.Controller()
	playerEvents := ctrl.Events().Listen(ctx)
	jukeboxEvents := api.jukebox.Events().Listen(ctx)

	es, err := eventsource.Begin(w, r)
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	status := ctrl.Status()
	tracks, index := ctrl.Playlist()
	timeline, lyric := ctrl.Lyrics()
	initial := []struct {
		event string
		body  interface{}
	}{
		{"playlist", map[string]interface{}{"index": index, "tracks": jsonTracks(tracks)}},
		{"state", map[string]interface{}{"state": status.PlayState}},
		{"mode", map[string]interface{}{"repeat": status.Repeat, "shuffled": status.Shuffled}},
		{"time", map[string]interface{}{"time": seconds(status.Time), "duration": seconds(status.Duration)}},
		{"volume", map[string]interface{}{"volume": status.Volume}},
		{"lyrics", jsonLyrics(timeline, lyric)},
		{"theme", map[string]interface{}{"theme": api.jukebox.Theme()}},
	}
	for _, ev := range initial {
		if err := es.EventJSON(ev.event, ev.body); err != nil {
			return
		}
	}

	// Time events are emitted at the frame rate, clients only need whole
	// seconds.
	lastTime := status.Time / time.Second
	lastDuration := status.Duration
	keepAlive := time.NewTicker(eventKeepAlive)
	defer keepAlive.Stop()
	for {
		var event interface{}
		select {
		case event = <-playerEvents:
		case event = <-jukeboxEvents:
		case <-keepAlive.C:
			event = "ping"
		case <-ctx.Done():
			return
		}

		var err error
		switch t := event.(type) {
		case player.PlaylistEvent:
			tracks, _ := ctrl.Playlist()
			err = es.EventJSON("playlist", map[string]interface{}{"index": t.Index, "tracks": jsonTracks(tracks)})
		case player.PlayStateEvent:
			err = es.EventJSON("state", map[string]interface{}{"state": t.State})
		case player.ModeEvent:
			err = es.EventJSON("mode", map[string]interface{}{"repeat": t.Repeat, "shuffled": t.Shuffled})
		case player.TimeEvent:
			if t.Time/time.Second == lastTime && t.Duration == lastDuration {
				continue
			}
			lastTime, lastDuration = t.Time/time.Second, t.Duration
			err = es.EventJSON("time", map[string]interface{}{"time": seconds(t.Time), "duration": seconds(t.Duration)})
		case player.LyricEvent:
			err = es.EventJSON("lyric", map[string]interface{}{"index": t.Index})
		case player.LyricsEvent:
			_, index := ctrl.Lyrics()
			err = es.EventJSON("lyrics", jsonLyrics(t.Timeline, index))
		case player.VolumeEvent:
			err = es.EventJSON("volume", map[string]interface{}{"volume": t.Volume})
		case player.ErrorEvent:
			err = es.EventJSON("error", map[string]interface{}{"uri": t.URI, "error": t.Error})
		case jukebox.LikedEvent:
			err = es.EventJSON("liked", map[string]interface{}{"id": t.ID, "liked": t.Liked})
		case jukebox.ThemeEvent:
			err = es.EventJSON("theme", map[string]interface{}{"theme": t.Theme})
		case string:
			err = es.Event(t, "")
		case nil:
			// The listener was closed.
			return
		default:
			log.Debugf("Unmapped event %#v", event)
		}
		if err != nil {
			log.Debugf("Event stream closed: %v", err)
			return
		}
	}
}
