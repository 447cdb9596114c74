package query

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vegasq/insightql/dataset"
	"github.com/vegasq/insightql/store"
)

// testSections returns two cpsc 310 sections and a math overall section.
func testSections() []dataset.Record {
	return []dataset.Record{
		&dataset.Section{Dept: "cpsc", ID: "310", Title: "intro sw eng", Instructor: "smith, jane", Avg: 80, Pass: 40, Fail: 2, UUID: "1001", Year: 2015, Section: "101"},
		&dataset.Section{Dept: "cpsc", ID: "310", Title: "intro sw eng", Instructor: "doe, john", Avg: 90, Pass: 50, Fail: 1, UUID: "1002", Year: 2016, Section: "102"},
		&dataset.Section{Dept: "math", ID: "100", Title: "calculus", Instructor: "", Avg: 70, Pass: 30, Fail: 10, UUID: "1003", Year: dataset.OverallYear, Section: "overall"},
	}
}

// testRooms returns two geocoded DMP rooms and one WOOD room without a
// location.
func testRooms() []dataset.Record {
	dmp110 := dataset.NewRoom("Hugh Dempster Pavilion", "DMP", "110", "6245 Agronomy Road V6T 1Z4", 120,
		"Tiered Large Group", "Classroom-Fixed Tables/Movable Chairs", "http://students.ubc.ca/campus/discover/buildings-and-classrooms/room/DMP-110")
	dmp110.SetLocation(49.26125, -123.24807)

	dmp201 := dataset.NewRoom("Hugh Dempster Pavilion", "DMP", "201", "6245 Agronomy Road V6T 1Z4", 40,
		"Small Group", "Classroom-Movable Tables & Chairs", "http://students.ubc.ca/campus/discover/buildings-and-classrooms/room/DMP-201")
	dmp201.SetLocation(49.26125, -123.24807)

	woodB75 := dataset.NewRoom("Woodward (Instructional Resources Centre-IRC)", "WOOD", "B75", "2194 Health Sciences Mall", 25,
		"Open Design General Purpose", "Classroom-Movable Tables & Chairs", "http://students.ubc.ca/campus/discover/buildings-and-classrooms/room/WOOD-B75")

	return []dataset.Record{dmp110, dmp201, woodB75}
}

// memLoader serves datasets from memory.
type memLoader struct {
	data map[dataset.Kind][]dataset.Record
	err  error
}

func (l *memLoader) ListLoadedKinds() ([]dataset.Kind, error) {
	if l.err != nil {
		return nil, l.err
	}
	var kinds []dataset.Kind
	for _, k := range dataset.Kinds() {
		if _, ok := l.data[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

func (l *memLoader) Load(kind dataset.Kind) ([]dataset.Record, error) {
	records, ok := l.data[kind]
	if !ok {
		return nil, dataset.ErrNotCached
	}
	return records, nil
}

// newTestContext returns a context over a store holding the given records,
// with their kinds marked as cached.
func newTestContext(records ...dataset.Record) *ExecutionContext {
	s := store.New()
	s.Add(records...)

	seen := make(map[dataset.Kind]bool)
	var kinds []dataset.Kind
	for _, rec := range records {
		if !seen[rec.Kind()] {
			seen[rec.Kind()] = true
			kinds = append(kinds, rec.Kind())
		}
	}
	return NewExecutionContext(s, kinds)
}

func decodeObject(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		t.Fatalf("invalid test JSON %s: %v", s, err)
	}
	return obj
}

func assertErrorKind(t *testing.T, err, want error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", want)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}
