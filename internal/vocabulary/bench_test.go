package vocabulary

import (
	"fmt"
	"testing"
)

func syntheticRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			Tag:         fmt.Sprintf("tag_%d", i),
			Category:    fmt.Sprintf("cat%d", i%20),
			Subcategory: fmt.Sprintf("sub%d", i%7),
			Translation: fmt.Sprintf("译%d", i),
		}
	}
	return records
}

// BenchmarkLookup measures normalized key lookups against vocabularies of
// realistic size.
func BenchmarkLookup(b *testing.B) {
	for _, n := range []int{1000, 30000} {
		b.Run(fmt.Sprintf("records_%d", n), func(b *testing.B) {
			s := NewStore(nil)
			s.Load(syntheticRecords(n))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Lookup("TAG " + fmt.Sprint(i%n))
			}
		})
	}
}

// BenchmarkSearch measures substring search for a selective query and for
// one that hits the limit immediately.
func BenchmarkSearch(b *testing.B) {
	s := NewStore(nil)
	s.Load(syntheticRecords(30000))
	queries := []struct {
		name  string
		query string
	}{
		{"selective", "tag_29999"},
		{"broad", "tag"},
		{"miss", "zzz"},
	}
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				s.Search(q.query, DefaultSearchLimit)
			}
		})
	}
}

func BenchmarkStructure(b *testing.B) {
	s := NewStore(nil)
	s.Load(syntheticRecords(30000))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s.Structure()
	}
}
