package mpd

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	log "github.com/sirupsen/logrus"

	"lyricbox/src/library"
	"lyricbox/src/player"
	"lyricbox/src/util"
)

// Transport plays tracks through an MPD daemon. The MPD queue is owned by the
// transport and holds only the track that is currently loaded.
type Transport struct {
	util.Emitter

	network, address, password string
	// Root is the base URL for relative track URIs.
	root string

	// Running the idle routine on the same connection as the main connection
	// will mess things up badly.
	watcher *mpd.Watcher

	lock sync.Mutex
	// Whether we started the loaded media and are waiting for it to end.
	active bool
	status status
	// When the status was last read, used to extrapolate the elapsed time.
	statusAt time.Time
}

var _ player.Transport = &Transport{}

type status struct {
	state    string
	elapsed  time.Duration
	duration time.Duration
	err      string
}

// Connect opens a connection to the MPD daemon at the address. Relative track
// URIs are resolved against root.
func Connect(network, address string, mpdPassword *string, root string) (*Transport, error) {
	var passwd string
	if mpdPassword != nil {
		passwd = *mpdPassword
	}

	watcher, err := mpd.NewWatcher(network, address, passwd, "player")
	if err != nil {
		return nil, fmt.Errorf("could not watch MPD at %s: %w", address, err)
	}

	tr := &Transport{
		network:  network,
		address:  address,
		password: passwd,
		root:     root,
		watcher:  watcher,
	}
	if err := tr.refresh(); err != nil {
		watcher.Close()
		return nil, err
	}
	go tr.eventLoop()
	return tr, nil
}

// Close stops watching the daemon.
func (tr *Transport) Close() error {
	return tr.watcher.Close()
}

// Events implements the util.Eventer interface.
func (tr *Transport) Events() *util.Emitter {
	return &tr.Emitter
}

func (tr *Transport) withMpd(fn func(*mpd.Client) error) error {
	client, err := mpd.DialAuthenticated(tr.network, tr.address, tr.password)
	if err != nil {
		return fmt.Errorf("could not connect to MPD: %w", err)
	}
	defer client.Close()
	return fn(client)
}

func (tr *Transport) eventLoop() {
	for {
		select {
		case _, ok := <-tr.watcher.Event:
			if !ok {
				return
			}
			if err := tr.refresh(); err != nil {
				log.WithField("mpd", tr.address).Errorf("Could not read status: %v", err)
			}
		case err, ok := <-tr.watcher.Error:
			if !ok {
				return
			}
			log.WithField("mpd", tr.address).Errorf("Watcher error: %v", err)
		}
	}
}

// refresh reads the player status and emits the events that it implies.
func (tr *Transport) refresh() error {
	var attrs mpd.Attrs
	err := tr.withMpd(func(mpdc *mpd.Client) (err error) {
		attrs, err = mpdc.Status()
		return
	})
	if err != nil {
		return err
	}
	st := parseStatus(attrs)

	tr.lock.Lock()
	prev := tr.status
	tr.status, tr.statusAt = st, time.Now()
	ended := tr.active && st.state == "stop"
	if ended {
		tr.active = false
	}
	tr.lock.Unlock()

	if st.duration > 0 && st.duration != prev.duration {
		tr.Emit(player.MetadataEvent{Duration: st.duration})
	}
	if ended {
		tr.Emit(player.EndedEvent{})
	}
	if st.err != "" && st.err != prev.err {
		tr.Emit(player.ErrorEvent{Error: st.err})
	}
	return nil
}

func parseStatus(attrs mpd.Attrs) status {
	return status{
		state:    attrs["state"],
		elapsed:  parseSeconds(attrs["elapsed"]),
		duration: parseSeconds(attrs["duration"]),
		err:      attrs["error"],
	}
}

func parseSeconds(str string) time.Duration {
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0
	}
	return time.Duration(math.Round(f*1000)) * time.Millisecond
}

// Load implements the player.Transport interface.
func (tr *Transport) Load(ctx context.Context, uri string) error {
	tr.lock.Lock()
	tr.active = false
	tr.lock.Unlock()

	err := tr.withMpd(func(mpdc *mpd.Client) error {
		if err := mpdc.Clear(); err != nil {
			return err
		}
		return mpdc.Add(library.ResolveLocator(tr.root, uri))
	})
	if err != nil {
		return err
	}
	return tr.refresh()
}

// Play implements the player.Transport interface.
func (tr *Transport) Play(ctx context.Context) error {
	err := tr.withMpd(func(mpdc *mpd.Client) error {
		status, err := mpdc.Status()
		if err != nil {
			return err
		}
		if status["state"] == "stop" {
			return mpdc.Play(0)
		}
		return mpdc.Pause(false)
	})
	if err != nil {
		return err
	}
	tr.lock.Lock()
	tr.active = true
	tr.lock.Unlock()
	return tr.refresh()
}

// Pause implements the player.Transport interface.
func (tr *Transport) Pause(ctx context.Context) error {
	err := tr.withMpd(func(mpdc *mpd.Client) error {
		return mpdc.Pause(true)
	})
	if err != nil {
		return err
	}
	return tr.refresh()
}

// Seek implements the player.Transport interface.
func (tr *Transport) Seek(ctx context.Context, t time.Duration) error {
	err := tr.withMpd(func(mpdc *mpd.Client) error {
		return mpdc.SeekCur(t, false)
	})
	if err != nil {
		return err
	}
	return tr.refresh()
}

// SetVolume implements the player.Transport interface.
func (tr *Transport) SetVolume(ctx context.Context, vol int) error {
	return tr.withMpd(func(mpdc *mpd.Client) error {
		return mpdc.SetVolume(vol)
	})
}

// Time implements the player.Transport interface. The time is extrapolated
// from the last status so it can be polled without querying the daemon.
func (tr *Transport) Time() time.Duration {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.status.timeAt(tr.statusAt, time.Now())
}

func (st status) timeAt(readAt, now time.Time) time.Duration {
	t := st.elapsed
	if st.state == "play" {
		t += now.Sub(readAt)
	}
	if st.duration > 0 && t > st.duration {
		t = st.duration
	}
	return t
}

// Duration implements the player.Transport interface.
func (tr *Transport) Duration() time.Duration {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.status.duration
}
