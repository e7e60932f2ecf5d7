package player

import (
	"errors"
	"fmt"
	"time"

	"lyricbox/src/library"
	"lyricbox/src/lyrics"
)

var (
	// ErrMediaLoad is returned when the transport could not load or start a
	// track. The controller is stopped but keeps accepting commands.
	ErrMediaLoad = errors.New("could not load media")
	// ErrEmptyPlaylist is returned by commands that need a track to operate on.
	ErrEmptyPlaylist = errors.New("playlist is empty")
	// ErrIndexOutOfRange is returned when a track index does not exist.
	ErrIndexOutOfRange = library.ErrIndexOutOfRange
	// ErrUnavailable is returned by transports that can not be used in the
	// current environment.
	ErrUnavailable = errors.New("transport unavailable")
)

// PlayState describes whether the controller is producing audio.
type PlayState string

const (
	PlayStateStopped = PlayState("stopped")
	PlayStatePlaying = PlayState("playing")
	PlayStatePaused  = PlayState("paused")
)

// RepeatMode determines what happens when a track ends.
type RepeatMode string

const (
	RepeatOff = RepeatMode("off")
	RepeatAll = RepeatMode("all")
	RepeatOne = RepeatMode("one")
)

// ParseRepeatMode parses the name of a repeat mode.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch m := RepeatMode(s); m {
	case RepeatOff, RepeatAll, RepeatOne:
		return m, nil
	}
	return "", fmt.Errorf("unknown repeat mode: %q", s)
}

// Next returns the mode that follows m in the cycle off, all, one.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// Status is a snapshot of the controller state.
type Status struct {
	PlayState  PlayState
	Repeat     RepeatMode
	Shuffled   bool
	TrackIndex int
	Track      *library.Track
	Time       time.Duration
	Duration   time.Duration
	Volume     int
}

// PlaylistEvent is emitted after the contents of the playlist or the current
// index have changed.
type PlaylistEvent struct {
	Index int
}

// PlayStateEvent is emitted after the playstate was changed.
type PlayStateEvent struct {
	State PlayState
}

// ModeEvent is emitted after the repeat mode or shuffle state was changed.
type ModeEvent struct {
	Repeat   RepeatMode
	Shuffled bool
}

// TimeEvent is emitted after the playback time or duration was changed.
type TimeEvent struct {
	Time     time.Duration
	Duration time.Duration
}

// LyricEvent is emitted when a different lyric line becomes active. Index is
// -1 if no line is active.
type LyricEvent struct {
	Index int
}

// LyricsEvent is emitted when the lyrics of the current track have been
// loaded.
type LyricsEvent struct {
	Timeline lyrics.Timeline
}

// VolumeEvent is emitted after the volume was changed.
type VolumeEvent struct {
	Volume int
}

// ErrorEvent signals a failure to play a track.
type ErrorEvent struct {
	URI   string
	Error string
}
