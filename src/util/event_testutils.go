package util

import (
	"context"
	"reflect"
	"testing"
	"time"
)

// ListenFor asserts that the trigger causes the emitter to emit an event equal
// to the specified event. Other events are skipped.
func ListenFor(t testing.TB, emitter *Emitter, event interface{}, trigger func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := emitter.Listen(ctx)
	trigger()
	timeout := time.After(time.Second)
	for {
		select {
		case msg := <-l:
			t.Logf("%T %#v", msg, msg)
			if reflect.DeepEqual(msg, event) {
				return
			}
		case <-timeout:
			t.Fatalf("Event %#v was not emitted", event)
		}
	}
}

// Drain returns all events that are currently buffered in the listener.
func Drain(l <-chan interface{}) []interface{} {
	var events []interface{}
	for {
		select {
		case ev, ok := <-l:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}
