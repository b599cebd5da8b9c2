package presets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sync"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/watch"
)

// Store holds the built-in presets merged with an optional user file and
// keeps them current while watched.
type Store struct {
	path string

	mu      sync.RWMutex
	presets []Preset
	version uint64
	watcher *watch.Watcher
}

// NewStore loads the built-in presets and merges the file at path over
// them. An empty path or a missing file yields the built-ins alone.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the user preset file, or "".
func (s *Store) Path() string { return s.path }

// Reload re-reads the user file. On error the current presets are kept.
func (s *Store) Reload() error {
	ps, err := Builtin()
	if err != nil {
		return err
	}
	if s.path != "" {
		user, err := Load(s.path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return err
		default:
			ps = Merge(ps, user)
		}
	}

	s.mu.Lock()
	s.presets = ps
	s.version++
	v := s.version
	s.mu.Unlock()

	fractal.Logger().Info("presets: loaded", "count", len(ps), "file", s.path, "version", v)
	return nil
}

// Version increments on every successful load.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Get returns the preset called name.
func (s *Store) Get(name string) (Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.presets, func(p Preset) bool { return p.Name == name })
	if i < 0 {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s.presets[i], nil
}

// Names returns the preset names in display order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Names(s.presets)
}

// List returns a copy of all presets.
func (s *Store) List() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.presets)
}

// Watch reloads the user file whenever it changes on disk and then calls
// onChange, if set. A file that fails to parse is logged and the previous
// presets stay active. Watch returns once watching has started; it stops
// with ctx or Close.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	if s.path == "" {
		return errors.New("presets: watch needs a preset file")
	}
	base := filepath.Base(s.path)
	w := watch.New(filepath.Dir(s.path), 0, func(p string) bool {
		return filepath.Base(p) == base
	})

	s.mu.Lock()
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.watcher = w
	s.mu.Unlock()

	return w.Start(ctx, func([]string) {
		if err := s.Reload(); err != nil {
			fractal.Logger().Warn("presets: reload failed, keeping previous presets", "file", s.path, "err", err)
			return
		}
		if onChange != nil {
			onChange()
		}
	})
}

// Close stops watching.
func (s *Store) Close() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}
