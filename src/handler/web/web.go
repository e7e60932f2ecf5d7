package web

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"

	"lyricbox/src/handler/api"
	"lyricbox/src/handler/webui"
	"lyricbox/src/jukebox"
	"lyricbox/src/library"
	"lyricbox/src/library/raw"
	"lyricbox/src/util"
)

const indexPage = "index.html"

type webUI struct {
	build    string
	files    fs.FS
	minifier *minify.M
	started  time.Time

	pageOnce sync.Once
	page     []byte
	pageErr  error
}

// New creates the router serving the browser interface, the API under /data
// and the files of the media source under /media.
func New(build string, jukebox *jukebox.Jukebox, media library.Source) (chi.Router, error) {
	files, err := webui.Files(build)
	if err != nil {
		return nil, err
	}
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	web := &webUI{
		build:    build,
		files:    files,
		minifier: m,
		started:  time.Now(),
	}

	service := chi.NewRouter()
	service.Use(util.LogHandler)
	service.Use(middleware.Compress(5))
	service.Get("/", web.indexPage)
	if media != nil {
		service.Handle("/media/*", raw.NewServer(media, "/media"))
	}
	service.Route("/data", func(r chi.Router) {
		api.InitRouter(r, jukebox)
	})
	return service, nil
}

func (web *webUI) renderPage() ([]byte, error) {
	raw, err := fs.ReadFile(web.files, indexPage)
	if err != nil {
		return nil, err
	}
	b, err := web.minifier.Bytes("text/html", raw)
	if err != nil {
		return nil, fmt.Errorf("could not minify %q: %w", indexPage, err)
	}
	return b, nil
}

// getPage renders the page once for release builds and on every request for
// debug builds.
func (web *webUI) getPage() ([]byte, error) {
	if web.build == "debug" {
		return web.renderPage()
	}
	web.pageOnce.Do(func() {
		web.page, web.pageErr = web.renderPage()
	})
	return web.page, web.pageErr
}

func (web *webUI) indexPage(w http.ResponseWriter, r *http.Request) {
	page, err := web.getPage()
	if err != nil {
		log.Errorf("Could not serve %q: %v", indexPage, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, indexPage, web.started, bytes.NewReader(page))
}
