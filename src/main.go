package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"lyricbox/src/handler/web"
	"lyricbox/src/jukebox"
	"lyricbox/src/library"
	"lyricbox/src/lyrics"
	"lyricbox/src/player"
	"lyricbox/src/player/mpd"
	"lyricbox/src/player/speaker"
	"lyricbox/src/prefs"
)

const confFile = "config.yaml"

var (
	build       = "%BUILD%"
	version     = "%VERSION%"
	versionDate = "%VERSION_DATE%"
)

type config struct {
	Address string `yaml:"bind"`

	StorageDir string `yaml:"storage_dir"`

	// Catalog is the locator of the album list, relative to MediaRoot.
	Catalog string `yaml:"catalog"`
	// MediaRoot is a URL or local directory holding the catalog, the lyrics
	// and the audio files.
	MediaRoot string `yaml:"media_root"`
	FrameRate int    `yaml:"frame_rate"`

	Transport string `yaml:"transport"`
	MPD       *struct {
		Network  string  `yaml:"network"`
		Address  string  `yaml:"address"`
		Password *string `yaml:"password"`
		Root     string  `yaml:"root"`
	} `yaml:"mpd"`
}

func (conf *config) Validate() (errs []error) {
	if conf.Address == "" {
		errs = append(errs, fmt.Errorf("config: `bind` is required"))
	}
	if conf.Catalog == "" {
		errs = append(errs, fmt.Errorf("config: `catalog` is required"))
	}
	if conf.FrameRate < 0 {
		errs = append(errs, fmt.Errorf("config: `frame_rate` must not be negative"))
	}
	switch conf.Transport {
	case "mpd":
		if conf.MPD == nil || conf.MPD.Address == "" {
			errs = append(errs, fmt.Errorf("config: the mpd transport requires `mpd.address`"))
		}
	case "speaker", "none":
	default:
		errs = append(errs, fmt.Errorf("config: unknown transport %q, expected one of mpd, speaker or none", conf.Transport))
	}
	return
}

func LoadConfig(filename string) (*config, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	d := yaml.NewDecoder(fd)
	d.KnownFields(true)
	conf := config{Transport: "none"}
	if err := d.Decode(&conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func main() {
	defaultLogLevel := "warn"
	if build == "debug" {
		defaultLogLevel = "debug"
	}

	configFile := flag.String("conf", confFile, "Path to the configuration file")
	printVersion := flag.Bool("version", false, "Print version information and exit")
	logLevel := flag.String("log", defaultLogLevel, "Sets the log level. [debug, info, warn, error]")
	flag.Parse()

	if ll, err := log.ParseLevel(*logLevel); err != nil {
		log.Fatalf("Could not parse log level: %v", err)
	} else {
		log.SetLevel(ll)
	}
	log.SetReportCaller(true)

	if *printVersion {
		fmt.Printf("Version: %v (%v)\n", version, versionDate)
		fmt.Printf("Build: %v\n", build)
		return
	}

	log.Infof("Version: %v (%v)\n", version, build)
	config, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if errs := config.Validate(); len(errs) > 0 {
		log.Fatalf("Could not load config: %v", errs)
	}

	storeDir := strings.Replace(config.StorageDir, "~", os.Getenv("HOME"), 1)
	if err := os.MkdirAll(storeDir, 0755); err != nil {
		log.Fatalf("Unable to create config dir: %v", err)
	}
	log.Infof("Using %q for storage", storeDir)

	store, err := prefs.Open(path.Join(storeDir, "prefs.yaml"))
	if err != nil {
		log.Fatalf("Unable to open preferences: %v", err)
	}

	ctx := context.Background()
	source := mediaSource(config.MediaRoot)
	catalog := library.LoadCatalog(ctx, source, config.Catalog)

	transport, err := openTransport(config, source, catalog)
	if err != nil {
		log.Fatal(err)
	}
	ctrl := player.NewController(transport, player.NewFrameScheduler(config.FrameRate), lyrics.NewCache(source))
	go ctrl.Run(ctx)

	jukebox := jukebox.NewJukebox(ctx, catalog, store, ctrl)

	service, err := web.New(build, jukebox, source)
	if err != nil {
		log.Fatal(err)
	}

	if build == "debug" {
		service.Get("/debug/pprof/*", pprof.Index)
	}
	log.Infof("Now accepting HTTP connections on %v", config.Address)
	server := &http.Server{
		Addr:           config.Address,
		Handler:        service,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	log.Fatalf("Error running webserver: %v", server.ListenAndServe())
}

// mediaSource returns a source reading from the media root, which is either a
// URL or a local directory.
func mediaSource(root string) library.Source {
	if u, err := url.Parse(root); err == nil && u.IsAbs() {
		return &library.HTTPSource{Root: root}
	}
	if root == "" {
		root = "."
	}
	return &library.FSSource{FS: os.DirFS(root), Remote: &library.HTTPSource{}}
}

func openTransport(config *config, source library.Source, catalog *library.Catalog) (player.Transport, error) {
	switch config.Transport {
	case "mpd":
		tr, err := mpd.Connect(config.MPD.Network, config.MPD.Address, config.MPD.Password, config.MPD.Root)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to MPD: %v", err)
		}
		return tr, nil
	case "speaker":
		tr, err := speaker.New(source)
		if err != nil {
			return nil, fmt.Errorf("unable to open the speaker: %v", err)
		}
		return tr, nil
	default:
		log.Warn("No transport configured, playback is simulated")
		return player.NewSimulatedTransport(trackDurations(catalog)), nil
	}
}

// trackDurations returns a lookup of the catalog length of tracks by URI.
func trackDurations(catalog *library.Catalog) func(uri string) time.Duration {
	durations := map[string]time.Duration{}
	for _, album := range catalog.Albums() {
		for _, track := range album.Tracks {
			durations[track.URI] = track.Duration
		}
	}
	return func(uri string) time.Duration {
		return durations[uri]
	}
}
