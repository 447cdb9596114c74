package output

import (
	"bytes"
	"encoding/json"
	"io"
)

// EnvelopeFormatter writes rows as a single {"result": [...]} document with
// fields in column order.
type EnvelopeFormatter struct {
	writer io.Writer
}

// NewEnvelopeFormatter creates a new result envelope formatter
func NewEnvelopeFormatter(w io.Writer) *EnvelopeFormatter {
	return &EnvelopeFormatter{writer: w}
}

// SetOutput sets the output writer
func (e *EnvelopeFormatter) SetOutput(w io.Writer) {
	e.writer = w
}

// Format writes the result envelope followed by a newline.
func (e *EnvelopeFormatter) Format(columns []string, rows []map[string]interface{}) error {
	cols := columnsOf(columns, rows)

	var buf bytes.Buffer
	buf.WriteString(`{"result":[`)
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeRow(&buf, cols, row); err != nil {
			return err
		}
	}
	buf.WriteString("]}\n")

	_, err := e.writer.Write(buf.Bytes())
	return err
}

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as JSON Lines (one JSON object per line)
func (j *JSONFormatter) Format(columns []string, rows []map[string]interface{}) error {
	cols := columnsOf(columns, rows)

	var buf bytes.Buffer
	for _, row := range rows {
		buf.Reset()
		if err := encodeRow(&buf, cols, row); err != nil {
			return err
		}
		buf.WriteByte('\n')
		if _, err := j.writer.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// encodeRow writes row as a JSON object with keys in cols order. Columns
// missing from the row are written as null.
func encodeRow(buf *bytes.Buffer, cols []string, row map[string]interface{}) error {
	buf.WriteByte('{')
	for i, col := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return err
		}
		value, err := json.Marshal(row[col])
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return nil
}

// WriteError writes the error envelope {"error": "..."} followed by a newline.
func WriteError(w io.Writer, err error) error {
	return json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{err.Error()})
}

// WriteMessage writes {"message": "..."} followed by a newline.
func WriteMessage(w io.Writer, msg string) error {
	return json.NewEncoder(w).Encode(struct {
		Message string `json:"message"`
	}{msg})
}
