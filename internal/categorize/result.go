package categorize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is one categorized term.
type Item struct {
	Tag         string `json:"tag"`
	Translation string `json:"trans"`
}

// Result maps bucket names to items. Bucket order is explicit: seeded
// buckets first, then buckets created during resolution in creation order.
// It encodes to a JSON object whose keys follow that order.
type Result struct {
	order   []string
	buckets map[string][]Item
}

func newResult(capacity int) *Result {
	return &Result{
		order:   make([]string, 0, capacity),
		buckets: make(map[string][]Item, capacity),
	}
}

// ensure creates an empty bucket at the end of the order if absent.
func (r *Result) ensure(name string) {
	if _, ok := r.buckets[name]; ok {
		return
	}
	r.order = append(r.order, name)
	r.buckets[name] = []Item{}
}

func (r *Result) add(name string, item Item) {
	r.ensure(name)
	r.buckets[name] = append(r.buckets[name], item)
}

// Order returns bucket names in output order.
func (r *Result) Order() []string {
	return append([]string(nil), r.order...)
}

// Bucket returns the items of one bucket.
func (r *Result) Bucket(name string) ([]Item, bool) {
	items, ok := r.buckets[name]
	return items, ok
}

// Len returns the number of buckets.
func (r *Result) Len() int {
	return len(r.order)
}

// MarshalJSON encodes the result as one object whose keys follow bucket
// order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		items, err := json.Marshal(r.buckets[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(items)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object and keeps its key order.
func (r *Result) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("categorize result: expected object, got %v", tok)
	}
	out := newResult(8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("categorize result: unexpected key %v", tok)
		}
		var items []Item
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("categorize result: bucket %q: %w", name, err)
		}
		out.ensure(name)
		out.buckets[name] = append(out.buckets[name], items...)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = *out
	return nil
}
