package player

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"lyricbox/src/library"
	"lyricbox/src/lyrics"
	"lyricbox/src/util"
)

// RestartThreshold is how far into a track skipping back restarts the track
// instead of going to the previous one.
const RestartThreshold = 3 * time.Second

// A LyricsLoader returns the timeline for a lyric locator. It must not fail,
// lyrics that can not be loaded are an empty timeline.
type LyricsLoader interface {
	Get(ctx context.Context, locator string) lyrics.Timeline
}

var _ LyricsLoader = &lyrics.Cache{}

// Controller drives playback of a playlist through a transport and keeps the
// active lyric line in sync with the playback time.
//
// Changes are announced as events. All methods are safe for concurrent use.
type Controller struct {
	util.Emitter

	transport Transport
	scheduler Scheduler
	lyrics    LyricsLoader

	lock       sync.Mutex
	rng        *rand.Rand
	playlist   Playlist
	state      PlayState
	repeat     RepeatMode
	time       time.Duration
	duration   time.Duration
	volume     int
	cursor     *lyrics.Cursor
	generation uint64
	cancelTick func()
	// Incremented whenever the tick is (re)scheduled or cancelled. Frames
	// that read the clock under an older epoch are dropped.
	tickEpoch uint64

	loads sync.WaitGroup
}

// NewController creates a stopped controller with an empty playlist.
func NewController(transport Transport, scheduler Scheduler, loader LyricsLoader) *Controller {
	return &Controller{
		transport: transport,
		scheduler: scheduler,
		lyrics:    loader,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		state:     PlayStateStopped,
		repeat:    RepeatOff,
		volume:    100,
		cursor:    lyrics.NewCursor(nil),
	}
}

// Events implements the util.Eventer interface.
func (c *Controller) Events() *util.Emitter {
	return &c.Emitter
}

// Run handles the events of the transport until the context is done.
func (c *Controller) Run(ctx context.Context) {
	for event := range c.transport.Events().Listen(ctx) {
		switch t := event.(type) {
		case EndedEvent:
			if err := c.TrackEnded(ctx); err != nil {
				log.Warnf("Could not continue after the end of a track: %v", err)
			}
		case MetadataEvent:
			c.lock.Lock()
			c.duration = t.Duration
			c.Emit(TimeEvent{Time: c.time, Duration: c.duration})
			c.lock.Unlock()
		case ErrorEvent:
			log.WithField("uri", t.URI).Errorf("Playback failed: %s", t.Error)
			c.lock.Lock()
			c.stopLocked()
			c.Emit(t)
			c.lock.Unlock()
		default:
			log.Debugf("Unmapped transport event %#v", event)
		}
	}
}

// Play starts playing the track at the index from its beginning.
func (c *Controller) Play(ctx context.Context, index int) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.playLocked(ctx, index)
}

func (c *Controller) playLocked(ctx context.Context, index int) error {
	if c.playlist.Len() == 0 {
		return ErrEmptyPlaylist
	}
	if !c.playlist.SetIndex(index) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	track, _ := c.playlist.Current()

	c.generation++
	c.time, c.duration = 0, 0
	c.cursor.Reset(nil)
	c.stopTick()
	c.Emit(PlaylistEvent{Index: index})

	err := c.transport.Load(ctx, track.URI)
	if err == nil {
		err = c.transport.Play(ctx)
	}
	if err != nil {
		c.stopLocked()
		c.Emit(ErrorEvent{URI: track.URI, Error: err.Error()})
		return fmt.Errorf("%w %q: %v", ErrMediaLoad, track.URI, err)
	}

	c.loads.Add(1)
	go c.loadLyrics(c.generation, track)

	c.setState(PlayStatePlaying)
	c.startTick()
	return nil
}

func (c *Controller) loadLyrics(generation uint64, track library.Track) {
	defer c.loads.Done()
	tl := c.lyrics.Get(context.Background(), track.LyricsURI)

	c.lock.Lock()
	defer c.lock.Unlock()
	current, ok := c.playlist.Current()
	if generation != c.generation || !ok || !current.SameAs(track) {
		log.WithField("track", track.ID()).Debug("Discarding lyrics of a track that is no longer playing")
		return
	}
	c.cursor.Reset(tl)
	c.Emit(LyricsEvent{Timeline: tl})
	if index, changed := c.cursor.Update(c.time); changed {
		c.Emit(LyricEvent{Index: index})
	}
}

// TogglePause switches between playing and paused. Stopped controllers are
// not affected.
func (c *Controller) TogglePause(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	switch c.state {
	case PlayStatePlaying:
		if err := c.transport.Pause(ctx); err != nil {
			return err
		}
		c.stopTick()
		c.setState(PlayStatePaused)
	case PlayStatePaused:
		if err := c.transport.Play(ctx); err != nil {
			return err
		}
		c.setState(PlayStatePlaying)
		c.startTick()
	}
	return nil
}

// Tick advances the playback clock. Ticks are ignored unless playing.
func (c *Controller) Tick(t time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.tickLocked(c.tickEpoch, t)
}

func (c *Controller) tickLocked(epoch uint64, t time.Duration) {
	if c.state != PlayStatePlaying {
		return
	}
	if epoch != c.tickEpoch {
		log.Debugf("Dropping a stale frame at %v", t)
		return
	}
	c.setTimeLocked(t)
}

func (c *Controller) setTimeLocked(t time.Duration) {
	c.time = t
	if d := c.transport.Duration(); d > 0 {
		c.duration = d
	}
	c.Emit(TimeEvent{Time: c.time, Duration: c.duration})
	if index, changed := c.cursor.Update(t); changed {
		c.Emit(LyricEvent{Index: index})
	}
}

// TrackEnded decides what to play after the current track has finished.
func (c *Controller) TrackEnded(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.state == PlayStateStopped {
		return nil
	}
	index := c.playlist.Index()
	switch {
	case c.repeat == RepeatOne:
		return c.playLocked(ctx, index)
	case index+1 < c.playlist.Len():
		return c.playLocked(ctx, index+1)
	case c.repeat == RepeatAll:
		return c.playLocked(ctx, 0)
	default:
		c.stopLocked()
		return nil
	}
}

// SkipNext plays the next track, wrapping around if all tracks are repeated.
func (c *Controller) SkipNext(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	index := c.playlist.Index()
	switch {
	case index < 0:
		return nil
	case index+1 < c.playlist.Len():
		return c.playLocked(ctx, index+1)
	case c.repeat == RepeatAll:
		return c.playLocked(ctx, 0)
	}
	return nil
}

// SkipPrevious restarts the current track if it has been playing for more
// than RestartThreshold. Otherwise the previous track is played, wrapping
// around if all tracks are repeated.
func (c *Controller) SkipPrevious(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	index := c.playlist.Index()
	switch {
	case index < 0:
		return nil
	case c.time > RestartThreshold && c.state != PlayStateStopped:
		return c.seekLocked(ctx, 0)
	case c.time > RestartThreshold:
		return c.playLocked(ctx, index)
	case index > 0:
		return c.playLocked(ctx, index-1)
	case c.repeat == RepeatAll:
		return c.playLocked(ctx, c.playlist.Len()-1)
	}
	return nil
}

// Seek jumps to a position in the current track. The active lyric line is
// updated immediately.
func (c *Controller) Seek(ctx context.Context, t time.Duration) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.playlist.Len() == 0 {
		return nil
	}
	return c.seekLocked(ctx, t)
}

func (c *Controller) seekLocked(ctx context.Context, t time.Duration) error {
	t = lo.Max([]time.Duration{t, 0})
	if err := c.transport.Seek(ctx, t); err != nil {
		return err
	}
	if c.state == PlayStatePlaying {
		// A frame that read the clock before the seek must not undo it.
		c.startTick()
	}
	c.setTimeLocked(t)
	return nil
}

// SetVolume sets the volume, which is clamped to the range 0 to 100.
func (c *Controller) SetVolume(ctx context.Context, vol int) error {
	vol = lo.Clamp(vol, 0, 100)
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.transport.SetVolume(ctx, vol); err != nil {
		return err
	}
	c.volume = vol
	c.Emit(VolumeEvent{Volume: vol})
	return nil
}

// ToggleShuffle shuffles the playlist or restores its order. The new shuffle
// state is returned.
func (c *Controller) ToggleShuffle() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.playlist.Unshuffle() {
		c.playlist.Shuffle(c.rng)
	}
	c.Emit(PlaylistEvent{Index: c.playlist.Index()})
	c.Emit(ModeEvent{Repeat: c.repeat, Shuffled: c.playlist.Shuffled()})
	return c.playlist.Shuffled()
}

func (c *Controller) SetRepeat(mode RepeatMode) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.repeat = mode
	c.Emit(ModeEvent{Repeat: c.repeat, Shuffled: c.playlist.Shuffled()})
}

// CycleRepeat switches to the next repeat mode and returns it.
func (c *Controller) CycleRepeat() RepeatMode {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.repeat = c.repeat.Next()
	c.Emit(ModeEvent{Repeat: c.repeat, Shuffled: c.playlist.Shuffled()})
	return c.repeat
}

// LoadTracks replaces the playlist and plays the track at start.
func (c *Controller) LoadTracks(ctx context.Context, tracks []library.Track, start int) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.playlist.Load(tracks, start)
	if c.playlist.Len() == 0 {
		c.stopLocked()
		c.Emit(PlaylistEvent{Index: -1})
		return ErrEmptyPlaylist
	}
	return c.playLocked(ctx, c.playlist.Index())
}

// Append adds a track to the end of the playlist.
func (c *Controller) Append(track library.Track) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.playlist.Append(track)
	c.Emit(PlaylistEvent{Index: c.playlist.Index()})
}

// Move reorders the playlist, see Playlist.Move.
func (c *Controller) Move(from, to int) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.playlist.Move(from, to) {
		return false
	}
	c.Emit(PlaylistEvent{Index: c.playlist.Index()})
	return true
}

func (c *Controller) Status() Status {
	c.lock.Lock()
	defer c.lock.Unlock()
	status := Status{
		PlayState:  c.state,
		Repeat:     c.repeat,
		Shuffled:   c.playlist.Shuffled(),
		TrackIndex: c.playlist.Index(),
		Time:       c.time,
		Duration:   c.duration,
		Volume:     c.volume,
	}
	if track, ok := c.playlist.Current(); ok {
		status.Track = &track
	}
	return status
}

// Playlist returns the tracks in the playlist and the index of the current
// track.
func (c *Controller) Playlist() ([]library.Track, int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.playlist.Tracks(), c.playlist.Index()
}

// Lyrics returns the timeline of the current track and the active line.
func (c *Controller) Lyrics() (lyrics.Timeline, int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.cursor.Timeline(), c.cursor.Index()
}

func (c *Controller) setState(state PlayState) {
	if c.state == state {
		return
	}
	c.state = state
	c.Emit(PlayStateEvent{State: state})
}

// stopLocked keeps the current index so the last track stays on display.
func (c *Controller) stopLocked() {
	c.stopTick()
	c.setState(PlayStateStopped)
}

func (c *Controller) startTick() {
	c.stopTick()
	epoch := c.tickEpoch
	c.cancelTick = c.scheduler.Every(func() {
		t := c.transport.Time()
		c.lock.Lock()
		defer c.lock.Unlock()
		c.tickLocked(epoch, t)
	})
}

func (c *Controller) stopTick() {
	c.tickEpoch++
	if c.cancelTick != nil {
		c.cancelTick()
		c.cancelTick = nil
	}
}
