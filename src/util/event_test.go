package util

import (
	"context"
	"reflect"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestEmission(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var em Emitter

	l := em.Listen(ctx)
	em.Emit("test")

	select {
	case msg := <-l:
		if msg != "test" {
			t.Errorf("Event malformed: %v", msg)
			return
		}
	case <-time.After(time.Millisecond * 100):
		t.Error("Event was not emitted")
	}
}

func TestEmissionToAllListeners(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var em Emitter
	a, b := em.Listen(ctx), em.Listen(ctx)
	em.Emit(1)
	em.Emit(2)

	for _, l := range []<-chan interface{}{a, b} {
		if got := Drain(l); !reflect.DeepEqual(got, []interface{}{1, 2}) {
			t.Fatalf("Unexpected events: %v", got)
		}
	}
}

func TestLaggingListenerDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	em := Emitter{Buffer: 2}
	l := em.Listen(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			em.Emit(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full listener")
	}
	if got := Drain(l); !reflect.DeepEqual(got, []interface{}{0, 1}) {
		t.Fatalf("Unexpected events: %v", got)
	}
}

func TestUnlistenOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var em Emitter
	l := em.Listen(ctx)
	cancel()

	select {
	case _, ok := <-l:
		if ok {
			t.Fatal("Expected the listener to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("Listener was not closed")
	}
	if n := em.NumListeners(); n != 0 {
		t.Fatalf("Listener was not removed: %d left", n)
	}
	em.Emit("after")
}

func TestListenFor(t *testing.T) {
	var em Emitter
	ListenFor(t, &em, "b", func() {
		em.Emit("a")
		em.Emit("b")
	})
}

func TestLaggingListenerIsLoggedOnce(t *testing.T) {
	hook := logtest.NewGlobal()
	defer log.StandardLogger().ReplaceHooks(log.LevelHooks{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	em := Emitter{Buffer: 1}
	l := em.Listen(ctx)

	countWarnings := func() int {
		n := 0
		for _, entry := range hook.AllEntries() {
			if entry.Level == log.WarnLevel && entry.Message == "Listener is lagging, dropping events" {
				n++
			}
		}
		return n
	}

	for i := 0; i < 30; i++ {
		em.Emit(i)
	}
	if n := countWarnings(); n != 1 {
		t.Fatalf("Expected a single warning for a lagging listener, got %d", n)
	}

	// Catching up and lagging again is a new episode.
	Drain(l)
	em.Emit("caught up")
	Drain(l)
	em.Emit(1)
	em.Emit(2)
	em.Emit(3)
	if n := countWarnings(); n != 2 {
		t.Fatalf("Expected a warning for the second lag, got %d", n)
	}
}
