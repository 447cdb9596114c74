package store

import "github.com/vegasq/insightql/dataset"

// RecordSet is an ordered collection of records compared by identity.
type RecordSet []dataset.Record

func (rs RecordSet) set() map[dataset.Record]struct{} {
	m := make(map[dataset.Record]struct{}, len(rs))
	for _, rec := range rs {
		m[rec] = struct{}{}
	}
	return m
}

// Contains reports whether rec is a member of the set.
func (rs RecordSet) Contains(rec dataset.Record) bool {
	for _, r := range rs {
		if r == rec {
			return true
		}
	}
	return false
}

// Intersect returns the records present in every set.
//
// The smallest set leads and keeps its order; every other set only filters
// it. Intersect of no sets is empty.
func Intersect(sets ...RecordSet) RecordSet {
	if len(sets) == 0 {
		return RecordSet{}
	}

	lead := 0
	for i := 1; i < len(sets); i++ {
		if len(sets[i]) < len(sets[lead]) {
			lead = i
		}
	}

	result := make(RecordSet, len(sets[lead]))
	copy(result, sets[lead])

	for i, other := range sets {
		if i == lead || len(result) == 0 {
			continue
		}
		members := other.set()
		kept := result[:0]
		for _, rec := range result {
			if _, ok := members[rec]; ok {
				kept = append(kept, rec)
			}
		}
		result = kept
	}

	return result
}

// Union returns every record present in at least one set, deduplicated and
// in first-seen order.
func Union(sets ...RecordSet) RecordSet {
	seen := make(map[dataset.Record]struct{})
	result := make(RecordSet, 0)
	for _, set := range sets {
		for _, rec := range set {
			if _, ok := seen[rec]; ok {
				continue
			}
			seen[rec] = struct{}{}
			result = append(result, rec)
		}
	}
	return result
}
