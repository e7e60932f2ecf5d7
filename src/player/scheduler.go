package player

import (
	"sync"
	"time"
)

// DefaultFrameRate is the rate at which the playback clock is polled.
const DefaultFrameRate = 30

// A Scheduler repeatedly runs a function until it is cancelled.
type Scheduler interface {
	// Every schedules fn to be called repeatedly. The returned function
	// cancels the schedule and may be called more than once. It does not wait
	// for a running call of fn to complete.
	Every(fn func()) (cancel func())
}

// FrameScheduler calls functions at a fixed rate.
type FrameScheduler struct {
	Interval time.Duration
}

var _ Scheduler = FrameScheduler{}

// NewFrameScheduler returns a scheduler running at the specified number of
// frames per second. A non-positive rate selects DefaultFrameRate.
func NewFrameScheduler(fps int) FrameScheduler {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return FrameScheduler{Interval: time.Second / time.Duration(fps)}
}

// Every implements the player.Scheduler interface.
func (sched FrameScheduler) Every(fn func()) func() {
	interval := sched.Interval
	if interval <= 0 {
		interval = time.Second / DefaultFrameRate
	}
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				fn()
			case <-stop:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}
}
