package catalog

import (
	"embed"
	"io/fs"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Section files read from the catalog directory, merged in this order.
var sectionFiles = []string{
	"characters.yaml",
	"venues.yaml",
	"synergies.yaml",
	"summon.yaml",
}

//go:embed default/*.yaml
var defaultFS embed.FS

// Loader reads YAML sections and merges them into one catalog.
type Loader struct {
	fsys fs.FS
	dir  string

	mu    sync.RWMutex
	cache *Catalog
}

// NewLoader creates a catalog loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{fsys: os.DirFS(baseDir), dir: baseDir}
}

// NewFSLoader creates a loader over an arbitrary filesystem.
func NewFSLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	sub, err := fs.Sub(defaultFS, "default")
	if err != nil {
		panic(err)
	}
	return Must(NewFSLoader(sub).Load())
}

// Dir returns the on-disk directory, empty for embedded loaders.
func (l *Loader) Dir() string { return l.dir }

// Load reads and merges all sections, validates and normalizes them.
// The result is cached until Invalidate.
func (l *Loader) Load() (*Catalog, error) {
	l.mu.RLock()
	if l.cache != nil {
		c := l.cache
		l.mu.RUnlock()
		return c, nil
	}
	l.mu.RUnlock()

	var merged RawCatalog
	for _, name := range sectionFiles {
		part, err := readYAML(l.fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		merged = mergeRaw(merged, part)
	}

	c, err := Normalize(merged)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache = c
	l.mu.Unlock()
	return c, nil
}

// Catalog implements Provider; it returns nil if loading fails.
func (l *Loader) Catalog() *Catalog {
	c, err := l.Load()
	if err != nil {
		return nil
	}
	return c
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = nil
}

// Parse decodes a single YAML document holding any subset of sections.
func Parse(b []byte) (*Catalog, error) {
	var raw RawCatalog
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return Normalize(raw)
}

// readYAML loads one section file. Missing files return zero cfg, no error.
func readYAML(fsys fs.FS, name string) (RawCatalog, error) {
	var cfg RawCatalog
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RawCatalog{}, nil
		}
		return RawCatalog{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawCatalog{}, err
	}
	return cfg, nil
}

// mergeRaw combines two partial catalogs: list sections from 'b' are appended,
// scalars and the summon block from 'b' override 'a' where set.
func mergeRaw(a, b RawCatalog) RawCatalog {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	out.Characters = append(out.Characters, b.Characters...)
	out.Venues = append(out.Venues, b.Venues...)
	out.Synergies = append(out.Synergies, b.Synergies...)

	switch {
	case out.Summon == nil && b.Summon != nil:
		c := *b.Summon
		c.Costs = append([]int64(nil), b.Summon.Costs...)
		out.Summon = &c
	case out.Summon != nil && b.Summon != nil:
		if b.Summon.Token != "" {
			out.Summon.Token = b.Summon.Token
		}
		if len(b.Summon.Costs) > 0 {
			out.Summon.Costs = append([]int64(nil), b.Summon.Costs...)
		}
	}

	return out
}
