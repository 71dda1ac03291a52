package reporters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
)

// Registry manages user-supplied reporter files layered over the built-in
// database. Custom editions shadow built-in ones for the same abbreviation.
// Thread-safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	custom   map[string][]Edition
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, path string)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[string][]Edition)}
}

// NewRegistryWithDirectory creates a registry and loads every reporter file
// from the directory.
func NewRegistryWithDirectory(dir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Find returns the editions for an abbreviation, consulting custom entries
// first and falling back to the cached built-in database. It never triggers
// a database load.
func (r *Registry) Find(abbreviation string) []Edition {
	key := normalizeKey(abbreviation)

	r.mu.RLock()
	editions := r.custom[key]
	r.mu.RUnlock()
	if len(editions) > 0 {
		return editions
	}

	if db, ok := Cached(); ok {
		return db.Find(abbreviation)
	}
	return nil
}

// CustomCount returns the number of custom lookup keys loaded.
func (r *Registry) CustomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.custom)
}

// LoadDirectory loads all YAML reporter files from a directory. A missing
// directory is not an error; there is simply nothing to load.
func (r *Registry) LoadDirectory(dir string) error {
	r.mu.Lock()
	r.dir = dir
	r.mu.Unlock()

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, name)); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading reporter files: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile loads a single reporter file into the registry.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	db, err := Parse(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, editions := range db.editions {
		r.custom[key] = editions
	}
	return nil
}

// Reload clears custom entries and reloads from the configured directory.
func (r *Registry) Reload() error {
	r.mu.Lock()
	dir := r.dir
	r.custom = make(map[string][]Edition)
	r.mu.Unlock()

	if dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}
	return r.LoadDirectory(dir)
}

// SetOnChange sets a callback invoked after the registry reacts to a file
// system event.
func (r *Registry) SetOnChange(fn func(event string, path string)) {
	r.onChange = fn
}

// Watch starts watching the reporter directory for changes.
func (r *Registry) Watch() error {
	r.mu.RLock()
	dir := r.dir
	r.mu.RUnlock()
	if dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})

	go r.watchLoop()

	if err := watcher.Add(dir); err != nil {
		r.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	return nil
}

func (r *Registry) watchLoop() {
	for {
		select {
		case <-r.stopChan:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Write == fsnotify.Write:
				if err := r.LoadFile(event.Name); err != nil {
					continue
				}
				r.notify("modify", event.Name)

			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				// A removed file may have been the only source of some
				// abbreviations; rebuild from the directory.
				if err := r.Reload(); err != nil {
					continue
				}
				r.notify("remove", event.Name)
			}

		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (r *Registry) notify(event, path string) {
	if r.onChange != nil {
		r.onChange(event, path)
	}
}

// StopWatch stops watching the reporter directory.
func (r *Registry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
	}
	if r.watcher != nil {
		r.watcher.Close()
	}
}
