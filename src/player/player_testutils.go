package player

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"lyricbox/src/util"
)

// DummyTransport is a Transport that plays nothing. It is used for testing and
// when no real transport is configured.
type DummyTransport struct {
	util.Emitter

	// Fail maps URIs to the error that loading them returns.
	Fail map[string]error

	lock     sync.Mutex
	uri      string
	playing  bool
	time     time.Duration
	duration time.Duration
	volume   int
	loads    []string
}

var _ Transport = &DummyTransport{}

// Events implements the util.Eventer interface.
func (tr *DummyTransport) Events() *util.Emitter {
	return &tr.Emitter
}

// Load implements the player.Transport interface.
func (tr *DummyTransport) Load(ctx context.Context, uri string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.loads = append(tr.loads, uri)
	if err, ok := tr.Fail[uri]; ok {
		tr.uri = ""
		return err
	}
	tr.uri = uri
	tr.playing = false
	tr.time = 0
	tr.duration = 0
	return nil
}

// Play implements the player.Transport interface.
func (tr *DummyTransport) Play(ctx context.Context) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.uri == "" {
		return fmt.Errorf("no media loaded")
	}
	tr.playing = true
	return nil
}

// Pause implements the player.Transport interface.
func (tr *DummyTransport) Pause(ctx context.Context) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.playing = false
	return nil
}

// Seek implements the player.Transport interface.
func (tr *DummyTransport) Seek(ctx context.Context, t time.Duration) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.time = t
	return nil
}

// SetVolume implements the player.Transport interface.
func (tr *DummyTransport) SetVolume(ctx context.Context, vol int) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.volume = vol
	return nil
}

// Time implements the player.Transport interface.
func (tr *DummyTransport) Time() time.Duration {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.time
}

// Duration implements the player.Transport interface.
func (tr *DummyTransport) Duration() time.Duration {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.duration
}

// SetTime moves the clock of the loaded media.
func (tr *DummyTransport) SetTime(t time.Duration) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.time = t
}

// SetDuration sets the media length and emits a MetadataEvent.
func (tr *DummyTransport) SetDuration(d time.Duration) {
	tr.lock.Lock()
	tr.duration = d
	tr.lock.Unlock()
	tr.Emit(MetadataEvent{Duration: d})
}

// End emits an EndedEvent as if the loaded media played to its end.
func (tr *DummyTransport) End() {
	tr.lock.Lock()
	tr.playing = false
	tr.lock.Unlock()
	tr.Emit(EndedEvent{})
}

func (tr *DummyTransport) URI() string {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.uri
}

func (tr *DummyTransport) Playing() bool {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.playing
}

func (tr *DummyTransport) Volume() int {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.volume
}

// Loads returns all URIs that were loaded, in order.
func (tr *DummyTransport) Loads() []string {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return append([]string(nil), tr.loads...)
}

// ManualScheduler is a Scheduler that only runs its functions when Fire is
// called.
type ManualScheduler struct {
	lock   sync.Mutex
	nextID int
	fns    map[int]func()
}

var _ Scheduler = &ManualScheduler{}

// Every implements the player.Scheduler interface.
func (sched *ManualScheduler) Every(fn func()) func() {
	sched.lock.Lock()
	defer sched.lock.Unlock()
	if sched.fns == nil {
		sched.fns = map[int]func(){}
	}
	id := sched.nextID
	sched.nextID++
	sched.fns[id] = fn
	return func() {
		sched.lock.Lock()
		defer sched.lock.Unlock()
		delete(sched.fns, id)
	}
}

// Active returns the number of scheduled functions.
func (sched *ManualScheduler) Active() int {
	sched.lock.Lock()
	defer sched.lock.Unlock()
	return len(sched.fns)
}

// Fire calls every scheduled function once.
func (sched *ManualScheduler) Fire() {
	sched.lock.Lock()
	ids := make([]int, 0, len(sched.fns))
	for id := range sched.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), len(ids))
	for i, id := range ids {
		fns[i] = sched.fns[id]
	}
	sched.lock.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// TestTransportImplementation tests the implementation of the
// player.Transport interface. The URI must be loadable by the transport.
func TestTransportImplementation(t *testing.T, tr Transport, uri string) {
	ctx := context.Background()
	if err := tr.Load(ctx, uri); err != nil {
		t.Fatal(err)
	}
	t.Run("play_pause", func(t *testing.T) {
		if err := tr.Play(ctx); err != nil {
			t.Fatal(err)
		}
		if err := tr.Pause(ctx); err != nil {
			t.Fatal(err)
		}
	})
	t.Run("seek", func(t *testing.T) {
		const target = 2 * time.Second
		if err := tr.Seek(ctx, target); err != nil {
			t.Fatal(err)
		}
		if tm := tr.Time(); tm < target || tm > target+time.Second {
			t.Fatalf("Unexpected time after seeking to %v: %v", target, tm)
		}
	})
	t.Run("volume", func(t *testing.T) {
		if err := tr.SetVolume(ctx, 40); err != nil {
			t.Fatal(err)
		}
	})
	t.Run("reload", func(t *testing.T) {
		if err := tr.Load(ctx, uri); err != nil {
			t.Fatal(err)
		}
		if tm := tr.Time(); tm > time.Second {
			t.Fatalf("Time was not reset after loading: %v", tm)
		}
	})
}
