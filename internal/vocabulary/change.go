package vocabulary

import (
	"context"
	"fmt"
)

// ChangeKind names a vocabulary mutation.
type ChangeKind string

const (
	ChangeTagSaved           ChangeKind = "tag_saved"
	ChangeTagDeleted         ChangeKind = "tag_deleted"
	ChangeSubcategoryDeleted ChangeKind = "subcategory_deleted"
	ChangeCategoryDeleted    ChangeKind = "category_deleted"
)

// Change describes one mutation. Saved changes carry the full record;
// deletions carry the target (and parent category for subcategories).
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Record Record     `json:"record,omitzero"`
	Target string     `json:"target,omitempty"`
	Parent string     `json:"parent,omitempty"`
}

// Apply performs a change on the in-memory vocabulary without writing a
// snapshot. It is used for changes that were already persisted elsewhere.
func (s *Store) Apply(ch Change) (int, error) {
	switch ch.Kind {
	case ChangeTagSaved:
		rec, err := normalizeInput(ch.Record.Tag, ch.Record.Translation, ch.Record.Category, ch.Record.Subcategory)
		if err != nil {
			return 0, err
		}
		return s.mutate(context.Background(), string(ch.Kind), false, func() int {
			s.upsertLocked(rec)
			return 1
		})
	case ChangeTagDeleted:
		return s.mutate(context.Background(), string(ch.Kind), false, func() int {
			return s.removeLocked(func(r *Record) bool { return r.Tag == ch.Target })
		})
	case ChangeSubcategoryDeleted:
		return s.mutate(context.Background(), string(ch.Kind), false, func() int {
			return s.removeLocked(func(r *Record) bool {
				return r.Category == ch.Parent && r.Subcategory == ch.Target
			})
		})
	case ChangeCategoryDeleted:
		return s.mutate(context.Background(), string(ch.Kind), false, func() int {
			return s.removeLocked(func(r *Record) bool { return r.Category == ch.Target })
		})
	default:
		return 0, fmt.Errorf("unknown change kind %q", ch.Kind)
	}
}
