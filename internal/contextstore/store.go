// Package contextstore accumulates identifier-like values observed in API
// responses so later requests can substitute them into path templates.
package contextstore

import (
	"sort"
	"strings"
)

// maxDepth bounds the response walk. Past it extraction stops quietly
// instead of blowing the stack on pathological nesting.
const maxDepth = 64

// Store maps a field name to the ordered, de-duplicated values seen for it
// across one run. Values are only ever appended; insertion order drives the
// deterministic fan-out of templated paths.
type Store struct {
	values map[string][]string
	seen   map[string]map[string]struct{}
}

// New returns an empty store.
func New() *Store {
	return &Store{
		values: make(map[string][]string),
		seen:   make(map[string]map[string]struct{}),
	}
}

// Record appends value under key unless it was already recorded there.
func (s *Store) Record(key, value string) {
	if s.seen[key] == nil {
		s.seen[key] = make(map[string]struct{})
	}
	if _, dup := s.seen[key][value]; dup {
		return
	}
	s.seen[key][value] = struct{}{}
	s.values[key] = append(s.values[key], value)
}

// ExtractFrom walks a decoded JSON document and records every string value
// whose key looks like an identifier: the key contains "id"
// (case-insensitive) or ends with "_id". A key literally named "id" nested
// under a parent object key is additionally recorded as "<parent>_id".
func (s *Store) ExtractFrom(doc interface{}) {
	s.extract(doc, "", 0)
}

func (s *Store) extract(v interface{}, parent string, depth int) {
	if depth > maxDepth {
		return
	}
	switch val := v.(type) {
	case map[string]interface{}:
		// Sorted keys keep the recorded order, and therefore fan-out
		// order, reproducible across runs.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := val[k]
			if str, ok := child.(string); ok {
				lowered := strings.ToLower(k)
				if strings.Contains(lowered, "id") || strings.HasSuffix(lowered, "_id") {
					s.Record(k, str)
					if parent != "" && k == "id" {
						s.Record(parent+"_id", str)
					}
				}
				continue
			}
			s.extract(child, k, depth+1)
		}
	case []interface{}:
		for _, item := range val {
			s.extract(item, parent, depth+1)
		}
	}
}

// Lookup returns the values recorded for key in insertion order. When
// nothing was ever recorded it returns a single synthetic placeholder
// ("dummy-<key>") so path resolution always has a candidate.
func (s *Store) Lookup(key string) []string {
	vals, ok := s.values[key]
	if !ok || len(vals) == 0 {
		return []string{"dummy-" + key}
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Known reports whether any real value was recorded for key.
func (s *Store) Known(key string) bool {
	return len(s.values[key]) > 0
}
