// Package raw serves the files of a media source over HTTP so browsers can
// load album covers and audio referenced by relative locators.
package raw

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"lyricbox/src/library"
)

type Server struct {
	source library.Source
	prefix string
}

// NewServer creates a handler for requests below prefix.
func NewServer(source library.Source, prefix string) *Server {
	return &Server{source: source, prefix: prefix}
}

func (sv *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	name := path.Clean("/" + strings.TrimPrefix(req.URL.Path, sv.prefix))
	if name == "/" {
		http.NotFound(res, req)
		return
	}
	rc, err := sv.source.Open(req.Context(), strings.TrimPrefix(name, "/"))
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(res, req)
		return
	} else if err != nil {
		log.WithField("file", name).Errorf("Could not serve media: %v", err)
		res.WriteHeader(http.StatusBadGateway)
		return
	}
	defer rc.Close()
	if mt := mime.TypeByExtension(path.Ext(name)); mt != "" {
		res.Header().Set("Content-Type", mt)
	}
	io.Copy(res, rc)
}
