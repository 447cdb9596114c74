// Package cache persists ingested datasets as JSON documents, one file per
// dataset id:
//
//	<dir>/courses.json  {"content": [{"courses_dept": ...}, ...]}
//	<dir>/rooms.json    {"content": [{"rooms_name": ...}, ...]}
//
// Documents are validated against a JSON schema of their record kind before
// they are decoded. A Cache implements the query engine's Loader.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/vegasq/insightql/dataset"
)

const fileExt = ".json"

// Options configures a Cache.
type Options struct {
	// Logger for cache events. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Cache stores datasets in a directory.
type Cache struct {
	dir     string
	mu      sync.RWMutex
	schemas map[dataset.Kind]*gojsonschema.Schema
	logger  *slog.Logger
}

// New opens a cache rooted at dir, creating the directory if needed.
func New(dir string, opts Options) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{dir: dir, schemas: schemas, logger: logger}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path(kind dataset.Kind) string {
	return filepath.Join(c.dir, kind.ID()+fileExt)
}

type document struct {
	Content json.RawMessage `json:"content"`
}

// Save replaces the dataset of kind with records. It reports whether a
// dataset with the same id was already cached.
func (c *Cache) Save(kind dataset.Kind, records []dataset.Record) (bool, error) {
	if kind.ID() == "" {
		return false, fmt.Errorf("cannot cache records of kind %s", kind)
	}
	for i, rec := range records {
		if rec.Kind() != kind {
			return false, fmt.Errorf("record %d is a %s record, not %s", i, rec.Kind(), kind)
		}
	}

	if records == nil {
		records = []dataset.Record{}
	}
	content, err := json.Marshal(records)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s dataset: %w", kind, err)
	}
	data, err := json.Marshal(document{Content: content})
	if err != nil {
		return false, fmt.Errorf("failed to encode %s dataset: %w", kind, err)
	}
	if err := validate(c.schemas[kind], data); err != nil {
		return false, fmt.Errorf("refusing to cache %s dataset: %w", kind, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existed := c.exists(kind)
	if err := atomicWriteFile(c.path(kind), data, c.dir); err != nil {
		return false, err
	}

	c.logger.Info("dataset cached", "dataset", kind.ID(), "records", len(records), "replaced", existed)
	return existed, nil
}

// Load reads and decodes the dataset of kind. It returns an error wrapping
// dataset.ErrNotCached when the dataset was never saved.
func (c *Cache) Load(kind dataset.Kind) ([]dataset.Record, error) {
	c.mu.RLock()
	data, err := os.ReadFile(c.path(kind))
	c.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q has not been loaded/cached", dataset.ErrNotCached, kind.ID())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s dataset: %w", kind, err)
	}

	schema, ok := c.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for kind %s", kind)
	}
	if err := validate(schema, data); err != nil {
		return nil, fmt.Errorf("cached %s dataset is corrupt: %w", kind, err)
	}

	records, err := decode(kind, data)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("dataset loaded", "dataset", kind.ID(), "records", len(records))
	return records, nil
}

func decode(kind dataset.Kind, data []byte) ([]dataset.Record, error) {
	switch kind {
	case dataset.KindSection:
		var doc struct {
			Content []*dataset.Section `json:"content"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s dataset: %w", kind, err)
		}
		records := make([]dataset.Record, 0, len(doc.Content))
		for _, s := range doc.Content {
			s.Normalize()
			records = append(records, s)
		}
		return records, nil

	case dataset.KindRoom:
		var doc struct {
			Content []*dataset.Room `json:"content"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s dataset: %w", kind, err)
		}
		records := make([]dataset.Record, 0, len(doc.Content))
		for _, r := range doc.Content {
			r.Normalize()
			records = append(records, r)
		}
		return records, nil

	default:
		return nil, fmt.Errorf("cannot decode records of kind %s", kind)
	}
}

// Exists reports whether the dataset of kind is cached.
func (c *Cache) Exists(kind dataset.Kind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exists(kind)
}

func (c *Cache) exists(kind dataset.Kind) bool {
	info, err := os.Stat(c.path(kind))
	return err == nil && info.Mode().IsRegular()
}

// Delete removes the dataset of kind. Deleting a dataset that was never
// cached returns an error wrapping dataset.ErrNotCached.
func (c *Cache) Delete(kind dataset.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.path(kind))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: resource does not exist; %q was never cached", dataset.ErrNotCached, kind.ID())
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s dataset: %w", kind, err)
	}

	c.logger.Info("dataset deleted", "dataset", kind.ID())
	return nil
}

// List returns the kinds with a cached dataset.
func (c *Cache) List() ([]dataset.Kind, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var kinds []dataset.Kind
	for _, kind := range dataset.Kinds() {
		if c.exists(kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

// ListLoadedKinds implements the query engine's Loader.
func (c *Cache) ListLoadedKinds() ([]dataset.Kind, error) {
	return c.List()
}

// atomicWriteFile writes data to a temporary file in tmpDir, fsyncs it and
// renames it to finalPath.
func atomicWriteFile(finalPath string, data []byte, tmpDir string) error {
	tmp, err := os.CreateTemp(tmpDir, ".dataset-*")
	if err != nil {
		return fmt.Errorf("atomic write create temp in %s: %w", tmpDir, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("atomic write data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("atomic write fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("atomic write close: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("atomic write rename %s to %s: %w", tmpPath, finalPath, err)
	}

	success = true
	return nil
}
