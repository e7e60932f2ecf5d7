package player

import (
	"context"
	"time"

	"lyricbox/src/util"
)

// A Transport plays the media of one track at a time.
//
// Implementations report what happens to the media through their emitter:
// EndedEvent when the track played to its end, MetadataEvent once the
// duration is known and ErrorEvent when playback failed.
type Transport interface {
	util.Eventer

	// Load replaces the current media. The media is paused after loading.
	Load(ctx context.Context, uri string) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, t time.Duration) error
	// SetVolume sets the volume in the range 0 to 100.
	SetVolume(ctx context.Context, vol int) error

	Time() time.Duration
	// Duration returns the length of the loaded media, or 0 if that is not
	// known yet.
	Duration() time.Duration
}

// EndedEvent is emitted by a transport when the media played to its end.
type EndedEvent struct{}

// MetadataEvent is emitted by a transport when the media duration became
// known.
type MetadataEvent struct {
	Duration time.Duration
}
