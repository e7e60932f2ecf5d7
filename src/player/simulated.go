package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lyricbox/src/util"
)

// SimulatedTransport plays nothing but keeps a clock that runs with the wall
// time while playing. Tracks of known length end on their own, tracks of
// unknown length play until another track is loaded.
type SimulatedTransport struct {
	util.Emitter

	durationOf func(uri string) time.Duration
	now        func() time.Time

	lock      sync.Mutex
	uri       string
	duration  time.Duration
	offset    time.Duration
	startedAt time.Time
	endTimer  *time.Timer
	// Incremented when the end timer is replaced so a superseded timer does
	// not end the track.
	timerGen uint64
}

var _ Transport = &SimulatedTransport{}

// NewSimulatedTransport creates a transport that looks up the length of
// tracks with durationOf. A nil durationOf treats all lengths as unknown.
func NewSimulatedTransport(durationOf func(uri string) time.Duration) *SimulatedTransport {
	if durationOf == nil {
		durationOf = func(string) time.Duration { return 0 }
	}
	return &SimulatedTransport{durationOf: durationOf, now: time.Now}
}

// Events implements the util.Eventer interface.
func (tr *SimulatedTransport) Events() *util.Emitter {
	return &tr.Emitter
}

// Load implements the player.Transport interface.
func (tr *SimulatedTransport) Load(ctx context.Context, uri string) error {
	tr.lock.Lock()
	tr.stopTimerLocked()
	tr.uri = uri
	tr.duration = tr.durationOf(uri)
	tr.offset = 0
	tr.startedAt = time.Time{}
	duration := tr.duration
	tr.lock.Unlock()

	if duration > 0 {
		tr.Emit(MetadataEvent{Duration: duration})
	}
	return nil
}

// Play implements the player.Transport interface.
func (tr *SimulatedTransport) Play(ctx context.Context) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.uri == "" {
		return fmt.Errorf("no media loaded")
	}
	if tr.startedAt.IsZero() {
		tr.startedAt = tr.now()
		tr.scheduleEndLocked()
	}
	return nil
}

// Pause implements the player.Transport interface.
func (tr *SimulatedTransport) Pause(ctx context.Context) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.offset = tr.timeLocked()
	tr.startedAt = time.Time{}
	tr.stopTimerLocked()
	return nil
}

// Seek implements the player.Transport interface.
func (tr *SimulatedTransport) Seek(ctx context.Context, t time.Duration) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if t < 0 {
		t = 0
	}
	if tr.duration > 0 && t > tr.duration {
		t = tr.duration
	}
	tr.offset = t
	if !tr.startedAt.IsZero() {
		tr.startedAt = tr.now()
		tr.scheduleEndLocked()
	}
	return nil
}

// SetVolume implements the player.Transport interface.
func (tr *SimulatedTransport) SetVolume(ctx context.Context, vol int) error {
	return nil
}

// Time implements the player.Transport interface.
func (tr *SimulatedTransport) Time() time.Duration {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.timeLocked()
}

// Duration implements the player.Transport interface.
func (tr *SimulatedTransport) Duration() time.Duration {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.duration
}

func (tr *SimulatedTransport) timeLocked() time.Duration {
	t := tr.offset
	if !tr.startedAt.IsZero() {
		t += tr.now().Sub(tr.startedAt)
	}
	if tr.duration > 0 && t > tr.duration {
		t = tr.duration
	}
	return t
}

func (tr *SimulatedTransport) stopTimerLocked() {
	tr.timerGen++
	if tr.endTimer != nil {
		tr.endTimer.Stop()
		tr.endTimer = nil
	}
}

func (tr *SimulatedTransport) scheduleEndLocked() {
	tr.stopTimerLocked()
	if tr.duration <= 0 {
		return
	}
	gen := tr.timerGen
	tr.endTimer = time.AfterFunc(tr.duration-tr.timeLocked(), func() {
		tr.lock.Lock()
		if gen != tr.timerGen {
			tr.lock.Unlock()
			return
		}
		tr.offset = tr.duration
		tr.startedAt = time.Time{}
		tr.endTimer = nil
		tr.lock.Unlock()
		tr.Emit(EndedEvent{})
	})
}
