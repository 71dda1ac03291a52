// Package reporters provides the reporter-abbreviation database used to
// validate case citations. The built-in database is embedded and loaded
// lazily once per process; callers that cannot tolerate blocking consult
// Cached and treat absence as degraded mode.
package reporters

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

//go:embed data/reporters.yaml
var embeddedData []byte

// Edition describes one reporter series a given abbreviation can refer to.
type Edition struct {
	Name         string   `yaml:"name" json:"name"`
	Jurisdiction string   `yaml:"jurisdiction" json:"jurisdiction"`
	CiteType     string   `yaml:"cite_type,omitempty" json:"cite_type,omitempty"`
	Variants     []string `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// databaseFile is the on-disk YAML layout: canonical abbreviation → editions.
type databaseFile struct {
	Reporters map[string][]Edition `yaml:"reporters"`
}

// DB is an immutable abbreviation → editions index. Lookups are
// case-insensitive and cover canonical and variant spellings.
type DB struct {
	editions map[string][]Edition
}

// Find returns every edition the abbreviation can refer to, or nil when the
// abbreviation is unknown.
func (db *DB) Find(abbreviation string) []Edition {
	if db == nil {
		return nil
	}
	return db.editions[normalizeKey(abbreviation)]
}

// Count returns the number of distinct lookup keys.
func (db *DB) Count() int {
	if db == nil {
		return 0
	}
	return len(db.editions)
}

// Abbreviations returns every lookup key in sorted order.
func (db *DB) Abbreviations() []string {
	if db == nil {
		return nil
	}
	keys := make([]string, 0, len(db.editions))
	for key := range db.editions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Parse builds a DB from YAML reporter data.
func Parse(data []byte) (*DB, error) {
	var file databaseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing reporter data: %w", err)
	}
	if len(file.Reporters) == 0 {
		return nil, fmt.Errorf("reporter data contains no reporters")
	}

	db := &DB{editions: make(map[string][]Edition)}
	for canonical, editions := range file.Reporters {
		db.add(canonical, editions)
		for _, edition := range editions {
			for _, variant := range edition.Variants {
				db.add(variant, []Edition{edition})
			}
		}
	}
	return db, nil
}

func (db *DB) add(abbreviation string, editions []Edition) {
	key := normalizeKey(abbreviation)
	db.editions[key] = append(db.editions[key], editions...)
}

func normalizeKey(abbreviation string) string {
	return strings.ToLower(strings.Join(strings.Fields(abbreviation), " "))
}

var (
	loadOnce sync.Once
	loadErr  error
	cached   atomic.Pointer[DB]
)

// Preload parses the embedded database and caches it for the process.
// Subsequent calls return the cached result.
func Preload() (*DB, error) {
	loadOnce.Do(func() {
		db, err := Parse(embeddedData)
		if err != nil {
			loadErr = err
			return
		}
		cached.Store(db)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return cached.Load(), nil
}

// Cached returns the database if a Preload has already completed. It never
// triggers a load and never blocks; callers treat a false return as degraded
// mode, not an error.
func Cached() (*DB, bool) {
	db := cached.Load()
	return db, db != nil
}
