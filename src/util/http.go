package util

import (
	"bufio"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogHandler provides middleware that logs every request with its response
// status, size and latency. Server errors are logged as errors, client errors
// as warnings and everything else at debug level.
//
// Event streams take over their connection, those are logged when the stream
// ends with hijacked set.
func LogHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		entry := log.WithFields(log.Fields{
			"remote":  r.RemoteAddr,
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  rec.status(),
			"bytes":   rec.written,
			"latency": time.Since(start).Round(time.Microsecond),
		})
		if rec.hijacked {
			entry = entry.WithField("hijacked", true)
		}
		switch code := rec.status(); {
		case code >= 500:
			entry.Error("Request failed")
		case code >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Debug("Request served")
		}
	})
}

type responseRecorder struct {
	http.ResponseWriter
	code     int
	written  int64
	hijacked bool
}

// status is the response code that was sent. Handlers that write nothing
// implicitly respond with 200.
func (rec *responseRecorder) status() int {
	if rec.code == 0 {
		return http.StatusOK
	}
	return rec.code
}

func (rec *responseRecorder) WriteHeader(code int) {
	if rec.code == 0 {
		rec.code = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	if rec.code == 0 {
		rec.code = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.written += int64(n)
	return n, err
}

func (rec *responseRecorder) Flush() {
	if fl, ok := rec.ResponseWriter.(http.Flusher); ok {
		fl.Flush()
	}
}

func (rec *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	conn, buf, err := hj.Hijack()
	if err == nil {
		rec.hijacked = true
	}
	return conn, buf, err
}
