//go:build cgo

package speaker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"

	"lyricbox/src/library"
	"lyricbox/src/player"
	"lyricbox/src/util"
)

const sampleRate = beep.SampleRate(44100)

// Transport decodes tracks fetched from a source and plays them on the
// speaker.
type Transport struct {
	util.Emitter

	source library.Source

	lock       sync.Mutex
	streamer   beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	vol        int
	generation uint64
}

var _ player.Transport = &Transport{}

// New initializes the speaker. Only one speaker transport should exist per
// process.
func New(source library.Source) (*Transport, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("%w: %v", player.ErrUnavailable, err)
	}
	return &Transport{source: source, vol: 100}, nil
}

// Events implements the util.Eventer interface.
func (tr *Transport) Events() *util.Emitter {
	return &tr.Emitter
}

// Load implements the player.Transport interface.
func (tr *Transport) Load(ctx context.Context, uri string) error {
	rc, err := tr.source.Open(ctx, uri)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return err
	}
	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", uri, err)
	}

	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.closeLocked()

	tr.generation++
	generation := tr.generation
	tr.streamer, tr.format = streamer, format
	tr.ctrl = &beep.Ctrl{Streamer: beep.Resample(4, format.SampleRate, sampleRate, streamer), Paused: true}
	level, silent := volumeLevel(tr.vol)
	tr.volume = &effects.Volume{Streamer: tr.ctrl, Base: 2, Volume: level, Silent: silent}

	speaker.Play(beep.Seq(tr.volume, beep.Callback(func() {
		// The callback runs with the speaker locked.
		go tr.ended(generation)
	})))

	tr.Emit(player.MetadataEvent{Duration: format.SampleRate.D(streamer.Len())})
	return nil
}

func (tr *Transport) ended(generation uint64) {
	tr.lock.Lock()
	current := generation == tr.generation
	tr.lock.Unlock()
	if current {
		tr.Emit(player.EndedEvent{})
	}
}

func (tr *Transport) closeLocked() {
	if tr.streamer == nil {
		return
	}
	speaker.Clear()
	tr.streamer.Close()
	tr.streamer, tr.ctrl, tr.volume = nil, nil, nil
}

func (tr *Transport) setPaused(paused bool) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.ctrl == nil {
		return fmt.Errorf("no media loaded")
	}
	speaker.Lock()
	tr.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

// Play implements the player.Transport interface.
func (tr *Transport) Play(ctx context.Context) error {
	return tr.setPaused(false)
}

// Pause implements the player.Transport interface.
func (tr *Transport) Pause(ctx context.Context) error {
	return tr.setPaused(true)
}

// Seek implements the player.Transport interface.
func (tr *Transport) Seek(ctx context.Context, t time.Duration) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.streamer == nil {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()
	pos := tr.format.SampleRate.N(t)
	if n := tr.streamer.Len(); pos >= n {
		pos = n - 1
	}
	if pos < 0 {
		pos = 0
	}
	return tr.streamer.Seek(pos)
}

// SetVolume implements the player.Transport interface.
func (tr *Transport) SetVolume(ctx context.Context, vol int) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.vol = vol
	if tr.volume != nil {
		level, silent := volumeLevel(vol)
		speaker.Lock()
		tr.volume.Volume, tr.volume.Silent = level, silent
		speaker.Unlock()
	}
	return nil
}

// Time implements the player.Transport interface.
func (tr *Transport) Time() time.Duration {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := tr.streamer.Position()
	speaker.Unlock()
	return tr.format.SampleRate.D(pos)
}

// Duration implements the player.Transport interface.
func (tr *Transport) Duration() time.Duration {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.streamer == nil {
		return 0
	}
	return tr.format.SampleRate.D(tr.streamer.Len())
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
