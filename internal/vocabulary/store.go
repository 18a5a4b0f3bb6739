package vocabulary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	apperrors "github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/errors"
)

// Persister loads and durably writes full vocabulary snapshots.
type Persister interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// Store is the shared vocabulary. Readers run concurrently; every mutation
// updates the sequence and the index together under the write lock, so a
// reader never sees one without the other.
type Store struct {
	mu      sync.RWMutex
	records []*Record
	index   map[string]*Record
	// written orders records by their last write; deletes use it to re-point
	// an index key at the newest surviving record.
	written map[*Record]uint64
	clock   uint64

	// writeMu serializes mutations through the persist step so snapshots
	// reach the backend in mutation order.
	writeMu    sync.Mutex
	persister  Persister
	generation atomic.Uint64
	logger     *slog.Logger
}

// NewStore creates an empty store. A nil persister keeps the vocabulary in
// memory only.
func NewStore(persister Persister) *Store {
	return &Store{
		index:     make(map[string]*Record),
		written:   make(map[*Record]uint64),
		persister: persister,
		logger:    slog.Default().With("component", "vocabulary"),
	}
}

// Restore loads the persisted snapshot and replaces the store content.
func (s *Store) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	records, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading vocabulary snapshot: %w", err)
	}
	s.Load(records)
	s.logger.Info("vocabulary loaded", "records", len(records))
	return nil
}

// Load replaces the entire store content and rebuilds the index in one pass.
func (s *Store) Load(records []Record) {
	seq := make([]*Record, len(records))
	for i := range records {
		rec := records[i]
		seq[i] = &rec
	}
	idx := buildIndex(seq)
	written := make(map[*Record]uint64, len(seq))
	for i, r := range seq {
		written[r] = uint64(i + 1)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	s.records = seq
	s.index = idx
	s.written = written
	s.clock = uint64(len(seq))
	s.mu.Unlock()
	s.generation.Add(1)
}

// Lookup finds the record for term by normalized key.
func (s *Store) Lookup(term string) (Record, bool) {
	key := NormalizeKey(term)
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.index[key]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Upsert validates and stores a record. An existing record whose stored tag
// equals the new tag literally is replaced in place; otherwise the record is
// appended. The index entry for the tag's normalized key always points at
// the written record.
func (s *Store) Upsert(ctx context.Context, tag, translation, category, subcategory string) (Record, error) {
	rec, err := normalizeInput(tag, translation, category, subcategory)
	if err != nil {
		return Record{}, err
	}
	_, err = s.mutate(ctx, "upsert", true, func() int {
		s.upsertLocked(rec)
		return 1
	})
	return rec, err
}

// DeleteByTag removes every record whose stored tag equals tag.
func (s *Store) DeleteByTag(ctx context.Context, tag string) (int, error) {
	tag = strings.TrimSpace(tag)
	return s.mutate(ctx, "delete_tag", true, func() int {
		return s.removeLocked(func(r *Record) bool { return r.Tag == tag })
	})
}

// DeleteBySubcategory removes every record in (parentCategory, subcategory).
func (s *Store) DeleteBySubcategory(ctx context.Context, subcategory, parentCategory string) (int, error) {
	return s.mutate(ctx, "delete_subcategory", true, func() int {
		return s.removeLocked(func(r *Record) bool {
			return r.Category == parentCategory && r.Subcategory == subcategory
		})
	})
}

// DeleteByCategory removes every record in category.
func (s *Store) DeleteByCategory(ctx context.Context, category string) (int, error) {
	return s.mutate(ctx, "delete_category", true, func() int {
		return s.removeLocked(func(r *Record) bool { return r.Category == category })
	})
}

// Records returns a copy of the sequence in insertion order.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Generation changes whenever the content changes.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// mutate runs fn under the write lock and, when fn changed anything and
// persist is set, writes the resulting snapshot outside the read path.
// A failed write leaves the in-memory change applied and reports a
// PersistenceError together with the count.
func (s *Store) mutate(ctx context.Context, op string, persist bool, fn func() int) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	n := fn()
	var snapshot []Record
	if n > 0 && persist && s.persister != nil {
		snapshot = s.snapshotLocked()
	}
	s.mu.Unlock()

	if n == 0 {
		return 0, nil
	}
	s.generation.Add(1)
	if snapshot == nil {
		return n, nil
	}
	if err := s.persister.Save(ctx, snapshot); err != nil {
		s.logger.Error("vocabulary snapshot write failed; memory and backend diverge",
			"op", op,
			"records", len(snapshot),
			"error", err,
		)
		return n, &apperrors.PersistenceError{Op: op, Cause: err}
	}
	return n, nil
}

func (s *Store) upsertLocked(rec Record) {
	stored := &rec
	replaced := false
	for i, existing := range s.records {
		if existing.Tag == rec.Tag {
			s.records[i] = stored
			delete(s.written, existing)
			replaced = true
			break
		}
	}
	if !replaced {
		s.records = append(s.records, stored)
	}
	s.clock++
	s.written[stored] = s.clock
	s.index[rec.Key()] = stored
}

// removeLocked filters the sequence in one pass. Only index keys that
// pointed at a removed record change; each moves to the most recently
// written survivor with that key, or is dropped when none is left.
func (s *Store) removeLocked(match func(*Record) bool) int {
	kept := make([]*Record, 0, len(s.records))
	var stale []string
	for _, r := range s.records {
		if !match(r) {
			kept = append(kept, r)
			continue
		}
		delete(s.written, r)
		if key := r.Key(); s.index[key] == r {
			stale = append(stale, key)
		}
	}
	removed := len(s.records) - len(kept)
	if removed == 0 {
		return 0
	}
	s.records = kept
	for _, key := range stale {
		s.repointLocked(key)
	}
	return removed
}

func (s *Store) repointLocked(key string) {
	var latest *Record
	for _, r := range s.records {
		if r.Key() == key && (latest == nil || s.written[r] > s.written[latest]) {
			latest = r
		}
	}
	if latest == nil {
		delete(s.index, key)
		return
	}
	s.index[key] = latest
}

func (s *Store) snapshotLocked() []Record {
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = *r
	}
	return out
}

// buildIndex maps normalized keys to records; for duplicate keys the later
// record wins.
func buildIndex(records []*Record) map[string]*Record {
	idx := make(map[string]*Record, len(records))
	for _, r := range records {
		idx[r.Key()] = r
	}
	return idx
}
