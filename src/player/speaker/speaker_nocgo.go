//go:build !cgo

package speaker

import (
	"context"
	"fmt"
	"time"

	"lyricbox/src/library"
	"lyricbox/src/player"
	"lyricbox/src/util"
)

// Transport is unavailable in builds without cgo, the native audio libraries
// require it.
type Transport struct {
	util.Emitter
}

var _ player.Transport = &Transport{}

// New always fails with player.ErrUnavailable.
func New(source library.Source) (*Transport, error) {
	return nil, fmt.Errorf("%w: built without cgo", player.ErrUnavailable)
}

// Events implements the util.Eventer interface.
func (tr *Transport) Events() *util.Emitter { return &tr.Emitter }

// Load implements the player.Transport interface.
func (tr *Transport) Load(ctx context.Context, uri string) error { return player.ErrUnavailable }

// Play implements the player.Transport interface.
func (tr *Transport) Play(ctx context.Context) error { return player.ErrUnavailable }

// Pause implements the player.Transport interface.
func (tr *Transport) Pause(ctx context.Context) error { return player.ErrUnavailable }

// Seek implements the player.Transport interface.
func (tr *Transport) Seek(ctx context.Context, t time.Duration) error { return player.ErrUnavailable }

// SetVolume implements the player.Transport interface.
func (tr *Transport) SetVolume(ctx context.Context, vol int) error { return player.ErrUnavailable }

// Time implements the player.Transport interface.
func (tr *Transport) Time() time.Duration { return 0 }

// Duration implements the player.Transport interface.
func (tr *Transport) Duration() time.Duration { return 0 }
