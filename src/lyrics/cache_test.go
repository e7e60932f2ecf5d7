package lyrics

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSource struct {
	files map[string]string
	opens int32
	delay time.Duration
}

func (src *countingSource) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	atomic.AddInt32(&src.opens, 1)
	if src.delay > 0 {
		select {
		case <-time.After(src.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	text, ok := src.files[locator]
	if !ok {
		return nil, fmt.Errorf("not found: %q", locator)
	}
	return io.NopCloser(strings.NewReader(text)), nil
}

func TestCacheMemoizes(t *testing.T) {
	src := &countingSource{
		files: map[string]string{"a.lrc": "[00:01.00]a"},
		delay: 20 * time.Millisecond,
	}
	cache := NewCache(src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tl := cache.Get(context.Background(), "a.lrc"); len(tl) != 1 {
				t.Errorf("Unexpected timeline: %#v", tl)
			}
		}()
	}
	wg.Wait()
	cache.Get(context.Background(), "a.lrc")

	if n := atomic.LoadInt32(&src.opens); n != 1 {
		t.Fatalf("Expected a single fetch, got %d", n)
	}
}

func TestCacheFailureIsEmpty(t *testing.T) {
	src := &countingSource{files: map[string]string{}}
	cache := NewCache(src)

	for i := 0; i < 2; i++ {
		if tl := cache.Get(context.Background(), "missing.lrc"); tl == nil || len(tl) != 0 {
			t.Fatalf("Expected an empty timeline, got %#v", tl)
		}
	}
	if n := atomic.LoadInt32(&src.opens); n != 1 {
		t.Fatalf("Expected the failure to be cached, got %d fetches", n)
	}
}

func TestCacheEmptyLocator(t *testing.T) {
	src := &countingSource{}
	cache := NewCache(src)
	if tl := cache.Get(context.Background(), ""); len(tl) != 0 {
		t.Fatalf("Expected an empty timeline, got %#v", tl)
	}
	if n := atomic.LoadInt32(&src.opens); n != 0 {
		t.Fatalf("Expected no fetch, got %d", n)
	}
}

func TestCacheCancelledLoadIsRetried(t *testing.T) {
	src := &countingSource{
		files: map[string]string{"a.lrc": "[00:01.00]a"},
		delay: 50 * time.Millisecond,
	}
	cache := NewCache(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if tl := cache.Get(ctx, "a.lrc"); len(tl) != 0 {
		t.Fatalf("Expected an empty timeline, got %#v", tl)
	}
	if tl := cache.Get(context.Background(), "a.lrc"); len(tl) != 1 {
		t.Fatalf("Expected the lyrics after a retry, got %#v", tl)
	}
}
