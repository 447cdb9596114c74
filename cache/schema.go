package cache

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/vegasq/insightql/dataset"
)

const sectionSchema = `{
	"type": "object",
	"required": ["content"],
	"properties": {
		"content": {
			"type": "array",
			"items": {
				"type": "object",
				"required": [
					"courses_dept", "courses_id", "courses_title", "courses_instructor",
					"courses_avg", "courses_pass", "courses_fail", "courses_audit",
					"courses_uuid", "courses_year", "courses_section"
				],
				"properties": {
					"courses_dept": {"type": "string"},
					"courses_id": {"type": "string"},
					"courses_title": {"type": "string"},
					"courses_instructor": {"type": "string"},
					"courses_avg": {"type": "number"},
					"courses_pass": {"type": "integer"},
					"courses_fail": {"type": "integer"},
					"courses_audit": {"type": "integer"},
					"courses_uuid": {"type": "string"},
					"courses_year": {"type": "integer"},
					"courses_section": {"type": "string"}
				}
			}
		}
	}
}`

const roomSchema = `{
	"type": "object",
	"required": ["content"],
	"properties": {
		"content": {
			"type": "array",
			"items": {
				"type": "object",
				"required": [
					"rooms_fullname", "rooms_shortname", "rooms_number", "rooms_name",
					"rooms_address", "rooms_seats", "rooms_type", "rooms_furniture", "rooms_href"
				],
				"properties": {
					"rooms_fullname": {"type": "string"},
					"rooms_shortname": {"type": "string"},
					"rooms_number": {"type": "string"},
					"rooms_name": {"type": "string"},
					"rooms_address": {"type": "string"},
					"rooms_lat": {"type": ["number", "null"]},
					"rooms_lon": {"type": ["number", "null"]},
					"rooms_seats": {"type": "integer", "minimum": 0},
					"rooms_type": {"type": "string"},
					"rooms_furniture": {"type": "string"},
					"rooms_href": {"type": "string"}
				}
			}
		}
	}
}`

// compileSchemas compiles the document schema of every record kind.
func compileSchemas() (map[dataset.Kind]*gojsonschema.Schema, error) {
	sources := map[dataset.Kind]string{
		dataset.KindSection: sectionSchema,
		dataset.KindRoom:    roomSchema,
	}

	schemas := make(map[dataset.Kind]*gojsonschema.Schema, len(sources))
	for kind, src := range sources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("invalid json schema for %s: %w", kind, err)
		}
		schemas[kind] = schema
	}
	return schemas, nil
}

// validate checks a raw document against the schema of kind.
func validate(schema *gojsonschema.Schema, doc []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("document invalid against schema: %v", errs)
	}
	return nil
}
