// Package settings owns the persisted categorization defaults: the mapping
// rule list and the bucket display order, stored together in one JSON
// document.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/storage/filestore"
)

// Document is the on-disk format.
type Document struct {
	Mapping [][]string `json:"mapping"`
	Order   []string   `json:"order"`
}

func (d Document) clone() Document {
	out := Document{
		Mapping: make([][]string, len(d.Mapping)),
		Order:   append([]string{}, d.Order...),
	}
	for i, rule := range d.Mapping {
		out.Mapping[i] = append([]string{}, rule...)
	}
	return out
}

// Store caches the document in memory and writes it back atomically.
type Store struct {
	path string

	mu  sync.RWMutex
	doc Document

	writeMu sync.Mutex
	logger  *slog.Logger

	watchMu sync.Mutex
	watcher *watcher
}

func New(path string) *Store {
	return &Store{
		path:   path,
		doc:    Document{Mapping: [][]string{}, Order: []string{}},
		logger: slog.Default().With("component", "settings"),
	}
}

// Load reads the document from disk. A missing file leaves empty mapping
// and order.
func (s *Store) Load() error {
	doc, err := s.read()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *Store) read() (Document, error) {
	doc := Document{Mapping: [][]string{}, Order: []string{}}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("reading settings %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing settings %s: %w", s.path, err)
	}
	if doc.Mapping == nil {
		doc.Mapping = [][]string{}
	}
	if doc.Order == nil {
		doc.Order = []string{}
	}
	return doc, nil
}

// Current returns a copy of the cached document.
func (s *Store) Current() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.clone()
}

// Save replaces the document on disk and in memory.
func (s *Store) Save(doc Document) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.saveLocked(doc.clone())
}

func (s *Store) saveLocked(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := filestore.WriteAtomic(s.path, data); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// PruneCategory removes category from the bucket order and persists the
// result. It reports whether anything was removed.
func (s *Store) PruneCategory(category string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc := s.Current()
	before := len(doc.Order)
	doc.Order = slices.DeleteFunc(doc.Order, func(name string) bool { return name == category })
	if len(doc.Order) == before {
		return false, nil
	}
	if err := s.saveLocked(doc); err != nil {
		return false, err
	}
	s.logger.Info("pruned category from bucket order", "category", category)
	return true, nil
}
