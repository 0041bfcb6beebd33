// Package people loads the YAML directory of employees: ids, display
// names and the enrollment images for each.
package people

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
)

// Entry is one person in the directory file.
type Entry struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Images []string `yaml:"images"`
}

type file struct {
	People []Entry `yaml:"people"`
}

// Directory is an immutable id → entry index. Image paths are resolved
// relative to the file they were loaded from.
type Directory struct {
	entries []Entry
	byID    map[string]Entry
	baseDir string
}

var _ provider.Directory = (*Directory)(nil)

// Load reads a directory file. An empty path yields an empty directory.
func Load(path string) (*Directory, error) {
	if path == "" {
		return New(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read people file: %w", err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.baseDir = filepath.Dir(path)
	return d, nil
}

// Parse decodes the YAML document and validates ids.
func Parse(data []byte) (*Directory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse people file: %w", err)
	}

	seen := make(map[string]bool, len(f.People))
	for i, e := range f.People {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("person %d: id is required", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("person %d: duplicate id %q", i, id)
		}
		seen[id] = true
		f.People[i].ID = id
	}

	return New(f.People), nil
}

func New(entries []Entry) *Directory {
	d := &Directory{
		entries: entries,
		byID:    make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		d.byID[e.ID] = e
	}
	return d
}

// Lookup returns the display name for id, falling back to the id when the
// entry has no name.
func (d *Directory) Lookup(id string) (string, bool) {
	e, ok := d.byID[id]
	if !ok {
		return "", false
	}
	if e.Name == "" {
		return e.ID, true
	}
	return e.Name, true
}

func (d *Directory) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Directory) Len() int { return len(d.entries) }

// Person reads the entry's images and builds the enrollment request.
func (d *Directory) Person(e Entry) (provider.Person, error) {
	if len(e.Images) == 0 {
		return provider.Person{}, fmt.Errorf("%s: %w", e.ID, ErrNoImages)
	}

	p := provider.Person{ID: e.ID, Name: e.Name, Images: make([][]byte, 0, len(e.Images))}
	for _, img := range e.Images {
		path := img
		if !filepath.IsAbs(path) && d.baseDir != "" {
			path = filepath.Join(d.baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return provider.Person{}, fmt.Errorf("%s: read image: %w", e.ID, err)
		}
		p.Images = append(p.Images, data)
	}
	return p, nil
}

var ErrNoImages = errors.New("no images listed")
