// Package dataset defines the two record kinds the query engine operates on
// (course sections and rooms) and the closed set of keys that address their
// fields.
//
// Keys are namespaced by dataset id, e.g. "courses_avg" or "rooms_seats".
// Every key belongs to exactly one kind and is either a string key or a
// numeric key; that partition drives query validation.
package dataset

import (
	"errors"
	"fmt"
)

// ErrNotCached is returned when a dataset id has never been ingested.
var ErrNotCached = errors.New("dataset not cached")

// Kind identifies a record kind.
type Kind int

const (
	KindNone Kind = iota
	KindSection
	KindRoom
)

// Dataset ids recognized by the system.
const (
	CoursesID = "courses"
	RoomsID   = "rooms"
)

// ID returns the dataset id for the kind ("courses" or "rooms").
func (k Kind) ID() string {
	switch k {
	case KindSection:
		return CoursesID
	case KindRoom:
		return RoomsID
	default:
		return ""
	}
}

func (k Kind) String() string {
	if id := k.ID(); id != "" {
		return id
	}
	return "none"
}

// ParseKind returns the kind for a dataset id.
func ParseKind(id string) (Kind, error) {
	switch id {
	case CoursesID:
		return KindSection, nil
	case RoomsID:
		return KindRoom, nil
	default:
		return KindNone, fmt.Errorf("dataset id %q is neither %q nor %q", id, CoursesID, RoomsID)
	}
}

// Kinds lists every record kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindSection, KindRoom}
}

// Key identifies a single field of a record kind.
type Key int

const (
	KeyInvalid Key = iota

	// Section keys
	SectionDept
	SectionID
	SectionTitle
	SectionInstructor
	SectionAvg
	SectionPass
	SectionFail
	SectionAudit
	SectionUUID
	SectionYear
	SectionSection

	// Room keys
	RoomFullname
	RoomShortname
	RoomNumber
	RoomName
	RoomAddress
	RoomLat
	RoomLon
	RoomSeats
	RoomType
	RoomFurniture
	RoomHref
)

type keyInfo struct {
	name    string
	kind    Kind
	numeric bool
}

var keyTable = map[Key]keyInfo{
	SectionDept:       {"courses_dept", KindSection, false},
	SectionID:         {"courses_id", KindSection, false},
	SectionTitle:      {"courses_title", KindSection, false},
	SectionInstructor: {"courses_instructor", KindSection, false},
	SectionAvg:        {"courses_avg", KindSection, true},
	SectionPass:       {"courses_pass", KindSection, true},
	SectionFail:       {"courses_fail", KindSection, true},
	SectionAudit:      {"courses_audit", KindSection, true},
	SectionUUID:       {"courses_uuid", KindSection, false},
	SectionYear:       {"courses_year", KindSection, true},
	SectionSection:    {"courses_section", KindSection, false},

	RoomFullname:  {"rooms_fullname", KindRoom, false},
	RoomShortname: {"rooms_shortname", KindRoom, false},
	RoomNumber:    {"rooms_number", KindRoom, false},
	RoomName:      {"rooms_name", KindRoom, false},
	RoomAddress:   {"rooms_address", KindRoom, false},
	RoomLat:       {"rooms_lat", KindRoom, true},
	RoomLon:       {"rooms_lon", KindRoom, true},
	RoomSeats:     {"rooms_seats", KindRoom, true},
	RoomType:      {"rooms_type", KindRoom, false},
	RoomFurniture: {"rooms_furniture", KindRoom, false},
	RoomHref:      {"rooms_href", KindRoom, false},
}

var keysByName = func() map[string]Key {
	m := make(map[string]Key, len(keyTable))
	for k, info := range keyTable {
		m[info.name] = k
	}
	return m
}()

// ParseKey resolves an external key name such as "courses_avg".
// The second return value is false for names outside the closed key set.
func ParseKey(name string) (Key, bool) {
	k, ok := keysByName[name]
	return k, ok
}

// String returns the external, namespaced name of the key.
func (k Key) String() string {
	if info, ok := keyTable[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// Kind returns the record kind that owns the key.
func (k Key) Kind() Kind {
	return keyTable[k].kind
}

// IsNumeric reports whether the key addresses a numeric field.
func (k Key) IsNumeric() bool {
	return keyTable[k].numeric
}

// IsString reports whether the key addresses a string field.
func (k Key) IsString() bool {
	info, ok := keyTable[k]
	return ok && !info.numeric
}

// KeysOf returns every key of a kind in declaration order.
func KeysOf(kind Kind) []Key {
	var keys []Key
	for k := SectionDept; k <= RoomHref; k++ {
		if keyTable[k].kind == kind {
			keys = append(keys, k)
		}
	}
	return keys
}
