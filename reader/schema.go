package reader

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/insightql/dataset"
)

// SchemaInfo represents metadata about a single column in a Parquet file.
type SchemaInfo struct {
	Name         string `json:"name"`
	PhysicalType string `json:"physical_type"`
	Optional     bool   `json:"optional"`
}

// ExtractSchemaInfo extracts the column metadata of a Parquet file.
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	reader, err := NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = reader.Close() }()

	return Fields(reader.Schema()), nil
}

// Fields lists the top-level leaf columns of a schema. Nested groups are
// reported as a single GROUP column; datasets are flat.
func Fields(schema *parquet.Schema) []SchemaInfo {
	fields := schema.Fields()
	infos := make([]SchemaInfo, 0, len(fields))
	for _, field := range fields {
		infos = append(infos, SchemaInfo{
			Name:         field.Name(),
			PhysicalType: getPhysicalType(field),
			Optional:     field.Optional(),
		})
	}
	return infos
}

// derivedOrOptional lists columns a file may omit: rooms_name is recomputed
// on ingestion and coordinates are absent for ungeocoded buildings.
var derivedOrOptional = map[dataset.Key]bool{
	dataset.RoomName: true,
	dataset.RoomLat:  true,
	dataset.RoomLon:  true,
}

// CheckSchema verifies that the columns describe records of kind: every
// key of the kind is present with a compatible physical type.
func CheckSchema(infos []SchemaInfo, kind dataset.Kind) error {
	byName := make(map[string]SchemaInfo, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}

	var problems []string
	for _, key := range dataset.KeysOf(kind) {
		info, ok := byName[key.String()]
		if !ok {
			if !derivedOrOptional[key] {
				problems = append(problems, fmt.Sprintf("missing column %s", key))
			}
			continue
		}
		if !compatible(key, info.PhysicalType) {
			problems = append(problems, fmt.Sprintf("column %s has type %s", key, info.PhysicalType))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("file does not hold %s records: %s", kind, strings.Join(problems, "; "))
	}
	return nil
}

func compatible(key dataset.Key, physicalType string) bool {
	if key.IsNumeric() {
		switch physicalType {
		case "INT32", "INT64", "FLOAT", "DOUBLE":
			return true
		}
		return false
	}
	return physicalType == "BYTE_ARRAY"
}

// getPhysicalType returns the physical type name of a Parquet field.
func getPhysicalType(field parquet.Field) string {
	if field.Type() == nil || !field.Leaf() {
		return "GROUP"
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}
