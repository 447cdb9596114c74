package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/insightql/dataset"
)

// maxFiles bounds how many files one glob pattern may expand to.
const maxFiles = 1000

// readBatch is the number of rows decoded per read call.
const readBatch = 256

// Reader reads course sections or rooms from a parquet file.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup.
type Reader struct {
	file   *os.File
	pqFile *parquet.File
}

// NewReader creates a new parquet reader for the specified file path.
//
// The file is opened and validated as a parquet file. Returns an error if
// the file doesn't exist or is not a valid parquet file.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &Reader{
		file:   file,
		pqFile: pqFile,
	}, nil
}

// Schema returns the parquet file schema.
func (r *Reader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// NumRows returns the number of rows recorded in the file metadata.
func (r *Reader) NumRows() int64 {
	return r.pqFile.NumRows()
}

// ReadRecords checks the file's columns against kind and decodes every row
// into a normalized record.
func (r *Reader) ReadRecords(kind dataset.Kind) ([]dataset.Record, error) {
	if err := CheckSchema(Fields(r.Schema()), kind); err != nil {
		return nil, err
	}

	switch kind {
	case dataset.KindSection:
		rows, err := readRows[dataset.Section](r.file)
		if err != nil {
			return nil, err
		}
		records := make([]dataset.Record, 0, len(rows))
		for i := range rows {
			s := &rows[i]
			s.Normalize()
			records = append(records, s)
		}
		return records, nil

	case dataset.KindRoom:
		rows, err := readRows[dataset.Room](r.file)
		if err != nil {
			return nil, err
		}
		records := make([]dataset.Record, 0, len(rows))
		for i := range rows {
			room := &rows[i]
			room.Normalize()
			records = append(records, room)
		}
		return records, nil

	default:
		return nil, fmt.Errorf("cannot read records of kind %s", kind)
	}
}

func readRows[T any](input io.ReaderAt) ([]T, error) {
	reader := parquet.NewGenericReader[T](input)
	defer func() { _ = reader.Close() }()

	rows := make([]T, 0, reader.NumRows())
	buf := make([]T, readBatch)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return rows, nil
}

// Close closes the parquet reader and releases associated resources.
//
// Should be called when done reading to avoid resource leaks.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadDataset reads every record of kind from the parquet files matching
// pattern, in file name order.
//
// The pattern can be a single path or a glob:
//   - "data/courses.parquet" - one file
//   - "data/courses-*.parquet" - every matching file in data
//
// Returns an error if no files match the pattern or if any file fails to read.
func ReadDataset(pattern string, kind dataset.Kind) ([]dataset.Record, error) {
	paths, err := expand(pattern)
	if err != nil {
		return nil, err
	}

	var all []dataset.Record
	for _, path := range paths {
		r, err := NewReader(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		records, readErr := r.ReadRecords(kind)
		closeErr := r.Close()

		// Preserve the first error encountered
		if readErr != nil {
			return nil, fmt.Errorf("failed to read rows from %s: %w", path, readErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("failed to close %s: %w", path, closeErr)
		}

		all = append(all, records...)
	}
	return all, nil
}

func expand(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}
	return matches, nil
}
