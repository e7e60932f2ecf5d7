package jukebox

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"lyricbox/src/library"
	"lyricbox/src/player"
	"lyricbox/src/prefs"
	"lyricbox/src/util"
)

// LikedEvent is emitted after a track was liked or unliked.
type LikedEvent struct {
	ID    string
	Liked bool
}

// ThemeEvent is emitted after the theme was changed.
type ThemeEvent struct {
	Theme prefs.Theme
}

// Jukebox is the session of a single listener. It combines the catalog, the
// preferences and the playback controller into album level commands.
type Jukebox struct {
	util.Emitter

	catalog *library.Catalog
	prefs   *prefs.Store
	ctrl    *player.Controller
}

// NewJukebox creates a session and applies the stored volume to the
// controller. A transport that rejects the volume is logged, not fatal.
func NewJukebox(ctx context.Context, catalog *library.Catalog, store *prefs.Store, ctrl *player.Controller) *Jukebox {
	jb := &Jukebox{
		catalog: catalog,
		prefs:   store,
		ctrl:    ctrl,
	}
	if err := ctrl.SetVolume(ctx, store.Volume()); err != nil {
		log.Warnf("Could not apply the stored volume: %v", err)
	}
	return jb
}

// Events implements the util.Eventer interface.
func (jb *Jukebox) Events() *util.Emitter {
	return &jb.Emitter
}

func (jb *Jukebox) Catalog() *library.Catalog {
	return jb.catalog
}

func (jb *Jukebox) Controller() *player.Controller {
	return jb.ctrl
}

// PlayAlbum replaces the playlist with the tracks of the album and starts
// playing the first one.
func (jb *Jukebox) PlayAlbum(ctx context.Context, albumID string) error {
	return jb.PlayAlbumTrack(ctx, albumID, 0)
}

// PlayAlbumTrack replaces the playlist with the tracks of the album and
// starts playing at the track with the index.
func (jb *Jukebox) PlayAlbumTrack(ctx context.Context, albumID string, index int) error {
	album, err := jb.catalog.Album(albumID)
	if err != nil {
		return err
	}
	if _, ok := album.Track(index); !ok {
		return fmt.Errorf("%w: track %d of %q", library.ErrIndexOutOfRange, index, albumID)
	}
	return jb.ctrl.LoadTracks(ctx, album.PlaylistTracks(), index)
}

// QueueTrack appends a track of an album to the playlist. If nothing is
// playing, the track is played immediately.
func (jb *Jukebox) QueueTrack(ctx context.Context, albumID string, index int) error {
	track, err := jb.catalog.AlbumTrack(albumID, index)
	if err != nil {
		return err
	}
	tracks, _ := jb.ctrl.Playlist()
	if len(tracks) == 0 {
		return jb.ctrl.LoadTracks(ctx, []library.Track{track}, 0)
	}
	jb.ctrl.Append(track)
	return nil
}

// PlayLiked replaces the playlist with the liked tracks and starts playing at
// index.
func (jb *Jukebox) PlayLiked(ctx context.Context, index int) error {
	hits := jb.LikedTracks()
	if len(hits) == 0 {
		return player.ErrEmptyPlaylist
	}
	if index < 0 || index >= len(hits) {
		return fmt.Errorf("%w: %d", library.ErrIndexOutOfRange, index)
	}
	tracks := lo.Map(hits, func(hit library.Hit, _ int) library.Track {
		track, _ := hit.Album.Track(hit.TrackIndex)
		return track
	})
	return jb.ctrl.LoadTracks(ctx, tracks, index)
}

// IsLiked reports whether the track with the ID is liked.
func (jb *Jukebox) IsLiked(id string) bool {
	return jb.prefs.IsLiked(id)
}

// ToggleLiked likes or unlikes the track with the ID and returns whether it
// is liked afterwards.
func (jb *Jukebox) ToggleLiked(id string) (bool, error) {
	liked, err := jb.prefs.ToggleLiked(id)
	if err != nil {
		return liked, err
	}
	jb.Emit(LikedEvent{ID: id, Liked: liked})
	return liked, nil
}

// ToggleCurrentLiked toggles the liked state of the track that is currently
// loaded in the controller. It returns the ID of that track.
func (jb *Jukebox) ToggleCurrentLiked() (string, bool, error) {
	status := jb.ctrl.Status()
	if status.Track == nil {
		return "", false, player.ErrEmptyPlaylist
	}
	id := status.Track.ID()
	liked, err := jb.ToggleLiked(id)
	return id, liked, err
}

// LikedTracks returns the liked tracks that are present in the catalog.
func (jb *Jukebox) LikedTracks() []library.Hit {
	return jb.catalog.LikedTracks(jb.prefs.Liked())
}

// Volume returns the stored volume.
func (jb *Jukebox) Volume() int {
	return jb.prefs.Volume()
}

// SetVolume changes the volume of the controller and stores it.
func (jb *Jukebox) SetVolume(ctx context.Context, vol int) error {
	vol, err := jb.prefs.SetVolume(vol)
	if err != nil {
		log.Errorf("Could not store the volume: %v", err)
	}
	return jb.ctrl.SetVolume(ctx, vol)
}

func (jb *Jukebox) Theme() prefs.Theme {
	return jb.prefs.Theme()
}

// SetTheme stores the theme, see prefs.Store.SetTheme.
func (jb *Jukebox) SetTheme(theme prefs.Theme) error {
	if err := jb.prefs.SetTheme(theme); err != nil {
		return err
	}
	jb.Emit(ThemeEvent{Theme: theme})
	return nil
}
