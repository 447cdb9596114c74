package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vegasq/insightql/dataset"
	"github.com/vegasq/insightql/store"
)

// Loader supplies cached datasets to the engine.
type Loader interface {
	// ListLoadedKinds reports which record kinds have a cached dataset.
	ListLoadedKinds() ([]dataset.Kind, error)
	// Load returns every record of a cached dataset. It returns an error
	// wrapping dataset.ErrNotCached when the kind was never ingested.
	Load(kind dataset.Kind) ([]dataset.Record, error)
}

// ExecutionContext holds the per-query state shared by filter construction
// and evaluation.
type ExecutionContext struct {
	store *store.Store
	// loaded records which kinds have a cached dataset
	loaded map[dataset.Kind]bool
	// activeKind is the kind every key of the query must belong to
	activeKind dataset.Kind
}

// NewExecutionContext creates a new execution context
func NewExecutionContext(s *store.Store, loaded []dataset.Kind) *ExecutionContext {
	ctx := &ExecutionContext{
		store:  s,
		loaded: make(map[dataset.Kind]bool, len(loaded)),
	}
	for _, k := range loaded {
		ctx.loaded[k] = true
	}
	return ctx
}

// MarkActiveKind fixes the record kind of the query. Marking a second,
// different kind is a syntax error.
func (ctx *ExecutionContext) MarkActiveKind(kind dataset.Kind) error {
	if ctx.activeKind == dataset.KindNone {
		ctx.activeKind = kind
		return nil
	}
	if ctx.activeKind != kind {
		return syntaxErrorf("query mixes %s and %s keys", ctx.activeKind, kind)
	}
	return nil
}

// ActiveKind returns the kind marked so far, or KindNone.
func (ctx *ExecutionContext) ActiveKind() dataset.Kind {
	return ctx.activeKind
}

// ResetActiveKind clears the active kind.
func (ctx *ExecutionContext) ResetActiveKind() {
	ctx.activeKind = dataset.KindNone
}

// Options configures an Engine.
type Options struct {
	// Logger for query events. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Engine executes queries against datasets supplied by a Loader.
//
// One query runs at a time: the collections and the active kind are shared
// state for the whole pipeline, so Execute holds a lock from load to result.
type Engine struct {
	mu     sync.Mutex
	store  *store.Store
	loader Loader
	logger *slog.Logger
}

// NewEngine creates an engine reading datasets from loader.
func NewEngine(loader Loader, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store.New(),
		loader: loader,
		logger: logger,
	}
}

// Result is the outcome of a successful query.
type Result struct {
	// Columns are the output columns in requested order
	Columns []string
	Rows    []map[string]interface{}
}

// MarshalJSON encodes the result envelope {"result": [...]}.
func (r *Result) MarshalJSON() ([]byte, error) {
	rows := r.Rows
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	return json.Marshal(struct {
		Result []map[string]interface{} `json:"result"`
	}{rows})
}

// Perform parses and executes a JSON query.
func (e *Engine) Perform(data []byte) (*Result, error) {
	q, err := Parse(data)
	if err != nil {
		e.logger.Warn("query rejected", "kind", errorKind(err), "error", err)
		return nil, err
	}
	return e.Execute(q)
}

// Execute runs a parsed query: load the dataset of the query's kind, build
// and evaluate the filter, apply transformations, then project and sort.
func (e *Engine) Execute(q *Query) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.NewString()
	start := time.Now()
	log := e.logger.With("query_id", id, "dataset", q.Kind.String())
	log.Debug("query started")

	res, err := e.execute(q)
	if err != nil {
		log.Warn("query failed", "kind", errorKind(err), "error", err, "duration", time.Since(start))
		return nil, err
	}

	log.Debug("query finished", "rows", len(res.Rows), "duration", time.Since(start))
	return res, nil
}

func (e *Engine) execute(q *Query) (*Result, error) {
	e.store.Reset(dataset.KindNone)
	defer e.store.Reset(dataset.KindNone)

	kinds, err := e.loader.ListLoadedKinds()
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	ctx := NewExecutionContext(e.store, kinds)
	defer ctx.ResetActiveKind()

	filter, err := ctx.BuildFilter(q.Where)
	if err != nil {
		return nil, err
	}
	if err := ctx.MarkActiveKind(q.Kind); err != nil {
		return nil, err
	}

	if err := e.load(ctx, q.Kind); err != nil {
		return nil, err
	}

	matched, err := ctx.Evaluate(filter)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return &Result{Columns: q.Columns, Rows: []map[string]interface{}{}}, nil
	}

	var rows []map[string]interface{}
	if q.Transformations != nil {
		rows, err = ApplyTransformations(matched, q.Transformations)
		if err != nil {
			return nil, err
		}
	} else {
		rows = make([]map[string]interface{}, 0, len(matched))
		for _, rec := range matched {
			rows = append(rows, dataset.ToRow(rec))
		}
	}

	rows, err = ApplyColumns(rows, q.Columns)
	if err != nil {
		return nil, err
	}
	return &Result{Columns: q.Columns, Rows: ApplyOrder(rows, q.Order)}, nil
}

// load fills the store with the dataset of kind. A missing or empty dataset
// is a dataset error.
func (e *Engine) load(ctx *ExecutionContext, kind dataset.Kind) error {
	if !ctx.loaded[kind] {
		return datasetErrorf("%s dataset not loaded", kind)
	}

	records, err := e.loader.Load(kind)
	if errors.Is(err, dataset.ErrNotCached) {
		return datasetErrorf("%s dataset not loaded", kind)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s dataset: %w", kind, err)
	}

	e.store.Add(records...)
	if len(e.store.Collection(kind)) == 0 {
		return datasetErrorf("%s dataset is empty", kind)
	}
	return nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrDataset):
		return "dataset"
	case errors.Is(err, ErrSyntax):
		return "syntax"
	default:
		return "internal"
	}
}
