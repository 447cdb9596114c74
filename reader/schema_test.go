package reader

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/vegasq/insightql/dataset"
)

func TestExtractSchemaInfo(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "rooms.parquet")
	writeParquet(t, testFile, []dataset.Room{*dataset.NewRoom("Woodward", "WOOD", "B75", "addr", 25, "t", "f", "h")})

	infos, err := ExtractSchemaInfo(testFile)
	if err != nil {
		t.Fatalf("ExtractSchemaInfo() error = %v", err)
	}

	fieldMap := make(map[string]SchemaInfo)
	for _, info := range infos {
		fieldMap[info.Name] = info
	}

	tests := []struct {
		name     string
		physical string
		optional bool
	}{
		{"rooms_name", "BYTE_ARRAY", false},
		{"rooms_seats", "INT64", false},
		{"rooms_lat", "DOUBLE", true},
		{"rooms_lon", "DOUBLE", true},
	}
	for _, tt := range tests {
		info, ok := fieldMap[tt.name]
		if !ok {
			t.Errorf("column %s missing", tt.name)
			continue
		}
		if info.PhysicalType != tt.physical {
			t.Errorf("%s PhysicalType = %s, want %s", tt.name, info.PhysicalType, tt.physical)
		}
		if info.Optional != tt.optional {
			t.Errorf("%s Optional = %v, want %v", tt.name, info.Optional, tt.optional)
		}
	}
}

func TestExtractSchemaInfo_FileNotFound(t *testing.T) {
	if _, err := ExtractSchemaInfo("/nonexistent/file.parquet"); err == nil {
		t.Error("ExtractSchemaInfo() expected error for non-existent file")
	}
}

func sectionColumns() []SchemaInfo {
	var infos []SchemaInfo
	for _, key := range dataset.KeysOf(dataset.KindSection) {
		physical := "BYTE_ARRAY"
		if key.IsNumeric() {
			physical = "INT64"
		}
		infos = append(infos, SchemaInfo{Name: key.String(), PhysicalType: physical})
	}
	return infos
}

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		name    string
		infos   func() []SchemaInfo
		kind    dataset.Kind
		wantErr string
	}{
		{
			name:  "all section columns",
			infos: sectionColumns,
			kind:  dataset.KindSection,
		},
		{
			name: "missing column",
			infos: func() []SchemaInfo {
				return sectionColumns()[1:]
			},
			kind:    dataset.KindSection,
			wantErr: "missing column courses_dept",
		},
		{
			name: "string column with numeric type",
			infos: func() []SchemaInfo {
				infos := sectionColumns()
				infos[0].PhysicalType = "INT32"
				return infos
			},
			kind:    dataset.KindSection,
			wantErr: "column courses_dept has type INT32",
		},
		{
			name: "numeric column stored as text",
			infos: func() []SchemaInfo {
				infos := sectionColumns()
				for i := range infos {
					if infos[i].Name == "courses_avg" {
						infos[i].PhysicalType = "BYTE_ARRAY"
					}
				}
				return infos
			},
			kind:    dataset.KindSection,
			wantErr: "column courses_avg has type BYTE_ARRAY",
		},
		{
			name:    "rooms file checked as sections",
			infos:   func() []SchemaInfo { return []SchemaInfo{{Name: "rooms_name", PhysicalType: "BYTE_ARRAY"}} },
			kind:    dataset.KindSection,
			wantErr: "missing column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSchema(tt.infos(), tt.kind)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("CheckSchema() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("CheckSchema() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
