package eventsource

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventSource writes a stream of server-sent events to a client.
type EventSource struct {
	lock  sync.Mutex
	w     io.Writer
	flush func()
	id    uint64
}

// Begin starts an event stream on the response. The connection is taken over
// from the HTTP server when possible so no write timeouts apply. Writers that
// can not be hijacked are streamed to by flushing after every event.
func Begin(w http.ResponseWriter, r *http.Request) (*EventSource, error) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	if hj, ok := w.(http.Hijacker); ok && r.ProtoMajor == 1 {
		w.Header().Set("Transfer-Encoding", "identity")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		conn, buf, err := hj.Hijack()
		if err == nil {
			buf.Flush()
			go func() {
				<-r.Context().Done()
				conn.Close()
			}()
			return &EventSource{w: conn, flush: func() {}}, nil
		}
		log.Debugf("Could not hijack event stream connection, falling back to flushing: %v", err)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("could not start event source: %T can not be flushed", w)
	}
	flusher.Flush()
	return &EventSource{w: w, flush: flusher.Flush}, nil
}

// Event writes a single event. Multi-line bodies are split over multiple data
// fields.
func (es *EventSource) Event(event, body string) error {
	es.lock.Lock()
	defer es.lock.Unlock()

	es.id++
	var b strings.Builder
	fmt.Fprintf(&b, "id: %d\n", es.id)
	fmt.Fprintf(&b, "event: %s\n", event)
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	if _, err := io.WriteString(es.w, b.String()); err != nil {
		return err
	}
	es.flush()
	return nil
}

// EventJSON writes an event with the JSON encoding of the body as its data.
func (es *EventSource) EventJSON(event string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		log.Errorf("Could not marshal event %q: %v", event, err)
		return err
	}
	return es.Event(event, string(b))
}
