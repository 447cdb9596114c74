package query

import (
	"testing"

	"github.com/vegasq/insightql/dataset"
	"github.com/vegasq/insightql/store"
)

func TestApplyTransformations_GroupByDept(t *testing.T) {
	tr := &Transformations{
		Group: []dataset.Key{dataset.SectionDept},
		Apply: []ApplySpec{
			{Name: "avgMark", Func: AggAvg, Field: dataset.SectionAvg},
			{Name: "total", Func: AggSum, Field: dataset.SectionPass},
			{Name: "best", Func: AggMax, Field: dataset.SectionAvg},
			{Name: "worst", Func: AggMin, Field: dataset.SectionAvg},
			{Name: "courses", Func: AggCount, Field: dataset.SectionID},
			{Name: "instructors", Func: AggCount, Field: dataset.SectionInstructor},
		},
	}

	rows, err := ApplyTransformations(testSections(), tr)
	if err != nil {
		t.Fatalf("ApplyTransformations() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ApplyTransformations() returned %d groups, want 2", len(rows))
	}

	tests := []struct {
		name string
		row  map[string]interface{}
		want map[string]interface{}
	}{
		{
			name: "cpsc",
			row:  rows[0],
			want: map[string]interface{}{
				"courses_dept": "cpsc",
				"avgMark":      85.0,
				"total":        90.0,
				"best":         90.0,
				"worst":        80.0,
				"courses":      int64(1),
				"instructors":  int64(2),
			},
		},
		{
			name: "math",
			row:  rows[1],
			want: map[string]interface{}{
				"courses_dept": "math",
				"avgMark":      70.0,
				"total":        30.0,
				"best":         70.0,
				"worst":        70.0,
				"courses":      int64(1),
				"instructors":  int64(1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.row) != len(tt.want) {
				t.Errorf("row has %d keys, want %d: %v", len(tt.row), len(tt.want), tt.row)
			}
			for k, want := range tt.want {
				if got := tt.row[k]; got != want {
					t.Errorf("%s = %v (%T), want %v (%T)", k, got, got, want, want)
				}
			}
		})
	}
}

func TestApplyTransformations_DecimalRounding(t *testing.T) {
	tests := []struct {
		name string
		avgs []float64
		fn   AggregateFunc
		want float64
	}{
		{name: "avg rounds half away from zero", avgs: []float64{1.005}, fn: AggAvg, want: 1.01},
		{name: "negative avg rounds away from zero", avgs: []float64{-1.005}, fn: AggAvg, want: -1.01},
		{name: "sum without float drift", avgs: []float64{0.1, 0.2}, fn: AggSum, want: 0.3},
		{name: "avg of thirds", avgs: []float64{1, 1, 2}, fn: AggAvg, want: 1.33},
		{name: "sum rounded", avgs: []float64{10.125, 0}, fn: AggSum, want: 10.13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records store.RecordSet
			for _, avg := range tt.avgs {
				records = append(records, &dataset.Section{Dept: "cpsc", Avg: avg})
			}
			tr := &Transformations{
				Group: []dataset.Key{dataset.SectionDept},
				Apply: []ApplySpec{{Name: "v", Func: tt.fn, Field: dataset.SectionAvg}},
			}

			rows, err := ApplyTransformations(records, tr)
			if err != nil {
				t.Fatalf("ApplyTransformations() error = %v", err)
			}
			if got := rows[0]["v"]; got != tt.want {
				t.Errorf("%s = %v, want %v", tt.fn, got, tt.want)
			}
		})
	}
}

func TestApplyTransformations_FirstSeenOrder(t *testing.T) {
	var records store.RecordSet
	for _, dept := range []string{"zool", "anth", "zool", "biol", "anth"} {
		records = append(records, &dataset.Section{Dept: dept})
	}
	tr := &Transformations{
		Group: []dataset.Key{dataset.SectionDept},
		Apply: []ApplySpec{{Name: "n", Func: AggCount, Field: dataset.SectionUUID}},
	}

	rows, err := ApplyTransformations(records, tr)
	if err != nil {
		t.Fatalf("ApplyTransformations() error = %v", err)
	}

	want := []string{"zool", "anth", "biol"}
	if len(rows) != len(want) {
		t.Fatalf("got %d groups, want %d", len(rows), len(want))
	}
	for i, dept := range want {
		if rows[i]["courses_dept"] != dept {
			t.Errorf("group %d = %v, want %s", i, rows[i]["courses_dept"], dept)
		}
	}
}

func TestApplyTransformations_NoKeyCollisions(t *testing.T) {
	records := store.RecordSet{
		&dataset.Section{Dept: "a|b", ID: "c"},
		&dataset.Section{Dept: "a", ID: "b|c"},
		&dataset.Section{Dept: `a";s"b`, ID: "c"},
		&dataset.Section{Dept: "a", ID: `b";s"c`},
		&dataset.Section{Dept: "ab", ID: "c"},
		&dataset.Section{Dept: "a", ID: "bc"},
	}
	tr := &Transformations{Group: []dataset.Key{dataset.SectionDept, dataset.SectionID}}

	rows, err := ApplyTransformations(records, tr)
	if err != nil {
		t.Fatalf("ApplyTransformations() error = %v", err)
	}
	if len(rows) != len(records) {
		t.Errorf("got %d groups, want %d distinct tuples", len(rows), len(records))
	}
}

func TestApplyTransformations_EmptyApply(t *testing.T) {
	tr := &Transformations{Group: []dataset.Key{dataset.SectionDept, dataset.SectionID}}

	rows, err := ApplyTransformations(testSections(), tr)
	if err != nil {
		t.Fatalf("ApplyTransformations() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d groups, want 2", len(rows))
	}
	for _, row := range rows {
		if len(row) != 2 {
			t.Errorf("row %v has %d keys, want only the 2 GROUP keys", row, len(row))
		}
	}
}

func TestApplyTransformations_NullValues(t *testing.T) {
	tr := &Transformations{
		Group: []dataset.Key{dataset.RoomFurniture},
		Apply: []ApplySpec{
			{Name: "maxLat", Func: AggMax, Field: dataset.RoomLat},
			{Name: "avgLat", Func: AggAvg, Field: dataset.RoomLat},
			{Name: "sumLat", Func: AggSum, Field: dataset.RoomLat},
			{Name: "lats", Func: AggCount, Field: dataset.RoomLat},
		},
	}

	rows, err := ApplyTransformations(testRooms(), tr)
	if err != nil {
		t.Fatalf("ApplyTransformations() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d groups, want 2", len(rows))
	}

	// DMP-110 alone; then DMP-201 with the ungeocoded WOOD-B75.
	fixed, movable := rows[0], rows[1]
	if fixed["maxLat"] != 49.26125 || fixed["lats"] != int64(1) {
		t.Errorf("fixed tables group = %v", fixed)
	}
	if movable["maxLat"] != 49.26125 {
		t.Errorf("maxLat = %v, want absent lat skipped", movable["maxLat"])
	}
	if movable["avgLat"] != 49.26 {
		t.Errorf("avgLat = %v, want 49.26", movable["avgLat"])
	}
	if movable["sumLat"] != 49.26 {
		t.Errorf("sumLat = %v, want 49.26", movable["sumLat"])
	}
	if movable["lats"] != int64(2) {
		t.Errorf("lats = %v, want 2 (absent counts as a value)", movable["lats"])
	}
}

func TestApplyTransformations_AllNull(t *testing.T) {
	rooms := testRooms()
	tr := &Transformations{
		Group: []dataset.Key{dataset.RoomShortname},
		Apply: []ApplySpec{
			{Name: "maxLat", Func: AggMax, Field: dataset.RoomLat},
			{Name: "avgLat", Func: AggAvg, Field: dataset.RoomLat},
			{Name: "sumLat", Func: AggSum, Field: dataset.RoomLat},
		},
	}

	rows, err := ApplyTransformations(store.RecordSet{rooms[2]}, tr)
	if err != nil {
		t.Fatalf("ApplyTransformations() error = %v", err)
	}
	if rows[0]["maxLat"] != nil || rows[0]["avgLat"] != nil {
		t.Errorf("aggregates over absent values = %v, want nil", rows[0])
	}
	if rows[0]["sumLat"] != 0.0 {
		t.Errorf("sumLat = %v, want 0", rows[0]["sumLat"])
	}
}

func TestApplyTransformations_KindMismatch(t *testing.T) {
	tr := &Transformations{Group: []dataset.Key{dataset.RoomShortname}}
	_, err := ApplyTransformations(testSections(), tr)
	assertErrorKind(t, err, ErrSyntax)
}

func TestApplyTransformations_NoRecords(t *testing.T) {
	tr := &Transformations{Group: []dataset.Key{dataset.SectionDept}}
	rows, err := ApplyTransformations(nil, tr)
	if err != nil {
		t.Fatalf("ApplyTransformations() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
