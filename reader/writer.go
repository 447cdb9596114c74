package reader

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/insightql/dataset"
)

// WriteDataset writes records of kind to a new parquet file at path.
func WriteDataset(path string, kind dataset.Kind, records []dataset.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(f, kind, records); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// Write encodes records of kind as a parquet stream.
func Write(w io.Writer, kind dataset.Kind, records []dataset.Record) error {
	switch kind {
	case dataset.KindSection:
		rows := make([]dataset.Section, 0, len(records))
		for i, rec := range records {
			s, ok := rec.(*dataset.Section)
			if !ok {
				return fmt.Errorf("record %d is a %s record, not %s", i, rec.Kind(), kind)
			}
			rows = append(rows, *s)
		}
		return writeRows(w, rows)

	case dataset.KindRoom:
		rows := make([]dataset.Room, 0, len(records))
		for i, rec := range records {
			r, ok := rec.(*dataset.Room)
			if !ok {
				return fmt.Errorf("record %d is a %s record, not %s", i, rec.Kind(), kind)
			}
			rows = append(rows, *r)
		}
		return writeRows(w, rows)

	default:
		return fmt.Errorf("cannot write records of kind %s", kind)
	}
}

func writeRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}
