// Package prefs persists the small set of user preferences that survive a
// session: the theme, the volume and the liked tracks.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTheme is returned when setting a theme that does not exist.
var ErrInvalidTheme = errors.New("invalid theme")

// Theme is the color scheme of the user interface.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultVolume is the volume used when none has been stored yet.
const DefaultVolume = 80

type values struct {
	Theme  Theme    `yaml:"theme"`
	Volume int      `yaml:"volume"`
	Liked  []string `yaml:"liked"`
}

func defaults() values {
	return values{Theme: ThemeDark, Volume: DefaultVolume, Liked: []string{}}
}

// Store is a key-value file holding preferences. It is safe for concurrent
// use.
type Store struct {
	file string

	lock  sync.Mutex
	value values
}

// Open reads the preferences stored in filename. A missing file yields the
// defaults. An empty filename keeps the preferences in memory only.
func Open(filename string) (*Store, error) {
	store := &Store{file: filename, value: defaults()}
	if filename == "" {
		return store, nil
	}

	b, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return store, nil
	} else if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, &store.value); err != nil {
		return nil, fmt.Errorf("could not read preferences from %q: %w", filename, err)
	}
	store.sanitize()
	return store, nil
}

// sanitize repairs values that may have been edited by hand.
func (store *Store) sanitize() {
	v := &store.value
	if v.Theme != ThemeDark && v.Theme != ThemeLight {
		log.WithField("theme", v.Theme).Warnf("Unknown theme in preferences, using %q", ThemeDark)
		v.Theme = ThemeDark
	}
	v.Volume = lo.Clamp(v.Volume, 0, 100)
	v.Liked = lo.Uniq(v.Liked)
	if v.Liked == nil {
		v.Liked = []string{}
	}
}

func (store *Store) writeLocked() error {
	if store.file == "" {
		return nil
	}
	b, err := yaml.Marshal(store.value)
	if err != nil {
		return err
	}
	if err := os.WriteFile(store.file, b, 0o644); err != nil {
		return fmt.Errorf("could not write preferences: %w", err)
	}
	return nil
}

// Theme returns the current theme.
func (store *Store) Theme() Theme {
	store.lock.Lock()
	defer store.lock.Unlock()
	return store.value.Theme
}

// SetTheme stores the theme. Themes other than dark and light are rejected.
func (store *Store) SetTheme(theme Theme) error {
	if theme != ThemeDark && theme != ThemeLight {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	store.lock.Lock()
	defer store.lock.Unlock()
	store.value.Theme = theme
	return store.writeLocked()
}

// Volume returns the stored volume in the range 0 to 100.
func (store *Store) Volume() int {
	store.lock.Lock()
	defer store.lock.Unlock()
	return store.value.Volume
}

// SetVolume stores the volume clamped into the range 0 to 100 and returns
// the value that was stored.
func (store *Store) SetVolume(vol int) (int, error) {
	vol = lo.Clamp(vol, 0, 100)
	store.lock.Lock()
	defer store.lock.Unlock()
	store.value.Volume = vol
	return vol, store.writeLocked()
}

// IsLiked reports whether the track ID is in the liked set.
func (store *Store) IsLiked(id string) bool {
	store.lock.Lock()
	defer store.lock.Unlock()
	return lo.Contains(store.value.Liked, id)
}

// ToggleLiked adds the ID to the liked set, or removes it if it was already
// present. It returns whether the ID is liked afterwards.
func (store *Store) ToggleLiked(id string) (bool, error) {
	store.lock.Lock()
	defer store.lock.Unlock()
	liked := !lo.Contains(store.value.Liked, id)
	if liked {
		store.value.Liked = append(store.value.Liked, id)
	} else {
		store.value.Liked = lo.Without(store.value.Liked, id)
	}
	return liked, store.writeLocked()
}

// Liked returns the liked IDs in the order in which they were liked.
func (store *Store) Liked() []string {
	store.lock.Lock()
	defer store.lock.Unlock()
	return append([]string{}, store.value.Liked...)
}
