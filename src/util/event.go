package util

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

const defaultListenerBuffer = 64

// An Eventer is a type that exposes its events through an Emitter.
type Eventer interface {
	Events() *Emitter
}

// Emitter broadcasts events to all of its listeners. The zero value is ready
// to use.
//
// Emitting never blocks. A listener that does not keep up with the events
// sent to it misses events rather than stalling the emitter.
type Emitter struct {
	// Buffer is the capacity of each listener channel. Zero selects
	// defaultListenerBuffer.
	Buffer int

	lock sync.Mutex
	// Maps each listener to the number of events it missed since it last
	// received one.
	listeners map[chan interface{}]int
}

// Emit sends the event to every current listener.
func (emitter *Emitter) Emit(event interface{}) {
	emitter.lock.Lock()
	defer emitter.lock.Unlock()
	for listener, missed := range emitter.listeners {
		select {
		case listener <- event:
			if missed > 0 {
				log.WithField("missed", missed).Info("Listener caught up")
				emitter.listeners[listener] = 0
			}
		default:
			if missed == 0 {
				log.WithField("event", fmt.Sprintf("%T", event)).Warn("Listener is lagging, dropping events")
			}
			emitter.listeners[listener] = missed + 1
		}
	}
}

// Listen registers a new listener. The returned channel is closed once the
// context is done.
func (emitter *Emitter) Listen(ctx context.Context) <-chan interface{} {
	size := emitter.Buffer
	if size <= 0 {
		size = defaultListenerBuffer
	}
	ch := make(chan interface{}, size)

	emitter.lock.Lock()
	if emitter.listeners == nil {
		emitter.listeners = map[chan interface{}]int{}
	}
	emitter.listeners[ch] = 0
	emitter.lock.Unlock()

	go func() {
		<-ctx.Done()
		emitter.lock.Lock()
		delete(emitter.listeners, ch)
		close(ch)
		emitter.lock.Unlock()
	}()
	return ch
}

// NumListeners returns the number of registered listeners.
func (emitter *Emitter) NumListeners() int {
	emitter.lock.Lock()
	defer emitter.lock.Unlock()
	return len(emitter.listeners)
}
