// Package store holds the in-memory record collections queried by the
// engine and the primitive operations filters are built from.
//
// A Store is not safe for concurrent use. Loading, clearing and querying the
// collections must be serialized by the caller for the whole duration of a
// query; the query engine holds one lock per query for that reason.
package store

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/vegasq/insightql/dataset"
)

// ErrInvalidCriteria is returned when a criteria cannot be evaluated against
// the collections: unknown key, wrong key type or unsupported comparison.
var ErrInvalidCriteria = errors.New("invalid criteria")

// Comparison selects how a numeric field is compared to a threshold.
type Comparison string

const (
	GT Comparison = "GT"
	LT Comparison = "LT"
	EQ Comparison = "EQ"
)

// Criteria describes a single leaf filter.
//
// String keys are matched against Pattern, which the caller anchors.
// Numeric keys are compared to Threshold using Equality.
type Criteria struct {
	Key       dataset.Key
	Pattern   *regexp.Regexp
	Threshold float64
	Equality  Comparison
}

// Store owns the section and room collections.
type Store struct {
	sections RecordSet
	rooms    RecordSet
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Add appends records to the collection of their kind, preserving order.
func (s *Store) Add(records ...dataset.Record) {
	for _, rec := range records {
		switch rec.Kind() {
		case dataset.KindSection:
			s.sections = append(s.sections, rec)
		case dataset.KindRoom:
			s.rooms = append(s.rooms, rec)
		}
	}
}

// Reset clears the collection of kind, or both collections for KindNone.
func (s *Store) Reset(kind dataset.Kind) {
	switch kind {
	case dataset.KindSection:
		s.sections = nil
	case dataset.KindRoom:
		s.rooms = nil
	default:
		s.sections = nil
		s.rooms = nil
	}
}

// Collection returns the full collection of kind.
func (s *Store) Collection(kind dataset.Kind) RecordSet {
	switch kind {
	case dataset.KindSection:
		return s.sections
	case dataset.KindRoom:
		return s.rooms
	default:
		return nil
	}
}

// Count returns the number of records across both collections.
func (s *Store) Count() int {
	return len(s.sections) + len(s.rooms)
}

// Query returns every record satisfying c.
//
// A nil criteria returns the union of both collections. String keys select
// records whose field matches the pattern; numeric keys select records whose
// field is greater than, less than or equal to the threshold, never matching
// absent values.
func (s *Store) Query(c *Criteria) (RecordSet, error) {
	if c == nil {
		return Union(s.sections, s.rooms), nil
	}

	switch {
	case c.Key.IsString():
		return s.matchPattern(c.Key, c.Pattern)
	case c.Key.IsNumeric():
		return s.compareNumeric(c.Key, c.Threshold, c.Equality)
	default:
		return nil, fmt.Errorf("%w: property %q does not exist", ErrInvalidCriteria, c.Key)
	}
}

func (s *Store) matchPattern(key dataset.Key, re *regexp.Regexp) (RecordSet, error) {
	if re == nil {
		return nil, fmt.Errorf("%w: no pattern given for %s", ErrInvalidCriteria, key)
	}

	matched := make(RecordSet, 0)
	for _, rec := range s.Collection(key.Kind()) {
		v, _ := rec.Value(key)
		str, ok := v.(string)
		if ok && re.MatchString(str) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

func (s *Store) compareNumeric(key dataset.Key, threshold float64, eq Comparison) (RecordSet, error) {
	var keep func(float64) bool
	switch eq {
	case GT:
		keep = func(v float64) bool { return v > threshold }
	case LT:
		keep = func(v float64) bool { return v < threshold }
	case EQ:
		keep = func(v float64) bool { return v == threshold }
	default:
		return nil, fmt.Errorf("%w: equality query expected %q, %q or %q, got %q", ErrInvalidCriteria, GT, LT, EQ, eq)
	}

	matched := make(RecordSet, 0)
	for _, rec := range s.Collection(key.Kind()) {
		v, _ := rec.Value(key)
		num, ok := v.(float64)
		if ok && keep(num) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// Complement returns the records of kind's collection that are not in subset.
// An empty subset yields the whole collection.
func (s *Store) Complement(kind dataset.Kind, subset RecordSet) RecordSet {
	all := s.Collection(kind)
	if len(subset) == 0 {
		return all
	}

	exclude := subset.set()
	result := make(RecordSet, 0, len(all))
	for _, rec := range all {
		if _, ok := exclude[rec]; !ok {
			result = append(result, rec)
		}
	}
	return result
}
