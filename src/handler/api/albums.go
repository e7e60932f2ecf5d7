package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"lyricbox/src/library"
	"lyricbox/src/prefs"
)

// albumList lists the albums in the order of the sort parameter. If a search
// term is passed in q, the matching albums and tracks are returned instead.
func (api *API) albumList(w http.ResponseWriter, r *http.Request) {
	catalog := api.jukebox.Catalog()
	if q := r.FormValue("q"); q != "" {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": jsonHits(catalog.Search(q)),
		})
		return
	}
	albums := catalog.Sorted(library.SortOrder(r.FormValue("sort")))
	json.NewEncoder(w).Encode(map[string]interface{}{
		"albums": lo.Map(albums, func(album library.Album, _ int) interface{} {
			return jsonAlbum(album)
		}),
	})
}

func (api *API) albumGet(w http.ResponseWriter, r *http.Request) {
	album, err := api.jukebox.Catalog().Album(chi.URLParam(r, "albumID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(jsonAlbum(album))
}

func (api *API) albumPlay(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Index int `json:"index"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &data); err != nil {
			WriteError(w, r, err)
			return
		}
	}
	if err := api.jukebox.PlayAlbumTrack(r.Context(), chi.URLParam(r, "albumID"), data.Index); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) albumQueue(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Index int `json:"index"`
	}
	if err := decodeBody(r, &data); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := api.jukebox.QueueTrack(r.Context(), chi.URLParam(r, "albumID"), data.Index); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) likedList(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tracks": jsonHits(api.jukebox.LikedTracks()),
	})
}

// likedToggle toggles the liked state of the track with the ID in the body.
// Without an ID, the current track is toggled.
func (api *API) likedToggle(w http.ResponseWriter, r *http.Request) {
	var data struct {
		ID string `json:"id"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &data); err != nil {
			WriteError(w, r, err)
			return
		}
	}
	var liked bool
	var err error
	if data.ID == "" {
		data.ID, liked, err = api.jukebox.ToggleCurrentLiked()
	} else {
		liked, err = api.jukebox.ToggleLiked(data.ID)
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":    data.ID,
		"liked": liked,
	})
}

func (api *API) likedPlay(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Index int `json:"index"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &data); err != nil {
			WriteError(w, r, err)
			return
		}
	}
	if err := api.jukebox.PlayLiked(r.Context(), data.Index); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}

func (api *API) prefsGet(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"theme":  api.jukebox.Theme(),
		"volume": api.jukebox.Volume(),
	})
}

func (api *API) prefsSetTheme(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Theme prefs.Theme `json:"theme"`
	}
	if err := decodeBody(r, &data); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := api.jukebox.SetTheme(data.Theme); err != nil {
		WriteError(w, r, err)
		return
	}
	w.Write([]byte("{}"))
}
