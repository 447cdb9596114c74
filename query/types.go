package query

import (
	"regexp"

	"github.com/vegasq/insightql/dataset"
	"github.com/vegasq/insightql/store"
)

// Top-level and nested query keywords.
const (
	keyWhere           = "WHERE"
	keyOptions         = "OPTIONS"
	keyTransformations = "TRANSFORMATIONS"
	keyColumns         = "COLUMNS"
	keyOrder           = "ORDER"
	keyGroup           = "GROUP"
	keyApply           = "APPLY"
	keyDir             = "dir"
	keyKeys            = "keys"
	dirUp              = "UP"
	dirDown            = "DOWN"
)

// Query is a validated query ready for execution.
type Query struct {
	// Where is the raw filter object. It is turned into a Filter by an
	// ExecutionContext because building it checks dataset availability.
	Where           map[string]interface{}
	Columns         []string
	Order           *Order           // nil when no ORDER was given
	Transformations *Transformations // nil when no TRANSFORMATIONS were given
	Kind            dataset.Kind     // record kind inferred from COLUMNS or APPLY
}

// Order is a sort specification over output columns.
type Order struct {
	Keys []string // most significant first
	Desc bool
}

// Transformations groups records and computes aggregates per group.
type Transformations struct {
	Group []dataset.Key
	Apply []ApplySpec
}

// AggregateFunc names an aggregate computed by APPLY.
type AggregateFunc string

const (
	AggMax   AggregateFunc = "MAX"
	AggMin   AggregateFunc = "MIN"
	AggAvg   AggregateFunc = "AVG"
	AggSum   AggregateFunc = "SUM"
	AggCount AggregateFunc = "COUNT"
)

// ApplySpec is one aggregate column: Name is the user-defined output key.
type ApplySpec struct {
	Name  string
	Func  AggregateFunc
	Field dataset.Key
}

// LogicOp combines child filters.
type LogicOp string

const (
	OpAnd LogicOp = "AND"
	OpOr  LogicOp = "OR"
)

// Filter is a node of the WHERE tree. The concrete node types are
// LogicFilter, CompareFilter, MatchFilter, NotFilter and EmptyFilter.
type Filter interface {
	filterNode()
}

// LogicFilter is the intersection (AND) or union (OR) of its children.
type LogicFilter struct {
	Op       LogicOp
	Children []Filter
}

// CompareFilter selects records whose numeric field compares to Value.
type CompareFilter struct {
	Key   dataset.Key
	Op    store.Comparison
	Value float64
}

// MatchFilter selects records whose string field matches a wildcard pattern.
type MatchFilter struct {
	Key     dataset.Key
	Pattern string // wildcard pattern as written in the query
	re      *regexp.Regexp
}

// NotFilter is the complement of its child within the active collection.
type NotFilter struct {
	Child Filter
}

// EmptyFilter matches every loaded record.
type EmptyFilter struct{}

func (*LogicFilter) filterNode()   {}
func (*CompareFilter) filterNode() {}
func (*MatchFilter) filterNode()   {}
func (*NotFilter) filterNode()     {}
func (*EmptyFilter) filterNode()   {}
