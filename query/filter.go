package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/vegasq/insightql/dataset"
	"github.com/vegasq/insightql/store"
)

// BuildFilter turns a WHERE object into a Filter tree.
//
// Every comparison and string match marks its record kind as active on the
// context. A key whose dataset was never cached is a dataset error; keys of
// two different kinds in one tree are a syntax error.
func (ctx *ExecutionContext) BuildFilter(criteria map[string]interface{}) (Filter, error) {
	if len(criteria) == 0 {
		return &EmptyFilter{}, nil
	}

	op, body, err := singleEntry(criteria, "FILTER")
	if err != nil {
		return nil, err
	}

	switch op {
	case string(OpAnd), string(OpOr):
		return ctx.buildLogic(LogicOp(op), body)
	case string(store.LT), string(store.GT), string(store.EQ):
		return ctx.buildCompare(store.Comparison(op), body)
	case "IS":
		return ctx.buildMatch(body)
	case "NOT":
		child, ok := body.(map[string]interface{})
		if !ok {
			return nil, syntaxErrorf("NOT must contain a filter object")
		}
		inner, err := ctx.BuildFilter(child)
		if err != nil {
			return nil, err
		}
		return &NotFilter{Child: inner}, nil
	default:
		return nil, syntaxErrorf("invalid filter key %q", op)
	}
}

func (ctx *ExecutionContext) buildLogic(op LogicOp, body interface{}) (Filter, error) {
	items, ok := body.([]interface{})
	if !ok {
		return nil, syntaxErrorf("%s must contain an array of filters", op)
	}
	if len(items) == 0 {
		return nil, syntaxErrorf("%s queries must be given filters", op)
	}

	node := &LogicFilter{Op: op, Children: make([]Filter, 0, len(items))}
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, syntaxErrorf("%s children must be filter objects, got %v", op, item)
		}
		child, err := ctx.BuildFilter(obj)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func (ctx *ExecutionContext) buildCompare(op store.Comparison, body interface{}) (Filter, error) {
	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, syntaxErrorf("%s must contain an object", op)
	}
	name, raw, err := singleEntry(obj, string(op))
	if err != nil {
		return nil, err
	}

	key, ok := dataset.ParseKey(name)
	if !ok || !key.IsNumeric() {
		return nil, syntaxErrorf("invalid key %q for %s", name, op)
	}
	if err := ctx.useKind(key.Kind()); err != nil {
		return nil, err
	}

	value, ok := toFloat64(raw)
	if !ok {
		return nil, syntaxErrorf("%s on %q must be filtered on a number, got %v", op, name, raw)
	}

	return &CompareFilter{Key: key, Op: op, Value: value}, nil
}

func (ctx *ExecutionContext) buildMatch(body interface{}) (Filter, error) {
	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, syntaxErrorf("IS must contain an object")
	}
	name, raw, err := singleEntry(obj, "IS")
	if err != nil {
		return nil, err
	}

	key, ok := dataset.ParseKey(name)
	if !ok || !key.IsString() {
		return nil, syntaxErrorf("invalid key %q for IS", name)
	}
	if err := ctx.useKind(key.Kind()); err != nil {
		return nil, err
	}

	pattern, ok := raw.(string)
	if !ok {
		return nil, syntaxErrorf("search string %v for %q is invalid", raw, name)
	}
	re, err := compileWildcard(pattern)
	if err != nil {
		return nil, err
	}

	return &MatchFilter{Key: key, Pattern: pattern, re: re}, nil
}

// useKind checks the kind's dataset is cached and marks it active.
func (ctx *ExecutionContext) useKind(kind dataset.Kind) error {
	if !ctx.loaded[kind] {
		return datasetErrorf("%s dataset not loaded", kind)
	}
	return ctx.MarkActiveKind(kind)
}

// compileWildcard translates a wildcard pattern into an anchored regular
// expression. '*' matches any run of characters; everything else matches
// literally. A non-empty pattern made only of '*' is rejected.
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	if pattern != "" && strings.Trim(pattern, "*") == "" {
		return nil, syntaxErrorf("search string %q is invalid", pattern)
	}

	segments := strings.Split(pattern, "*")
	for i, seg := range segments {
		segments[i] = regexp.QuoteMeta(seg)
	}

	re, err := regexp.Compile("^" + strings.Join(segments, ".*") + "$")
	if err != nil {
		return nil, syntaxErrorf("search string %q is invalid: %v", pattern, err)
	}
	return re, nil
}

// Evaluate computes the records selected by a filter tree.
func (ctx *ExecutionContext) Evaluate(f Filter) (store.RecordSet, error) {
	switch n := f.(type) {
	case *LogicFilter:
		results := make([]store.RecordSet, 0, len(n.Children))
		for _, child := range n.Children {
			r, err := ctx.Evaluate(child)
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
		switch n.Op {
		case OpAnd:
			return store.Intersect(results...), nil
		case OpOr:
			return store.Union(results...), nil
		default:
			return nil, syntaxErrorf("unsupported logic operator %q", n.Op)
		}

	case *CompareFilter:
		return ctx.query(&store.Criteria{Key: n.Key, Threshold: n.Value, Equality: n.Op})

	case *MatchFilter:
		re := n.re
		if re == nil {
			var err error
			if re, err = compileWildcard(n.Pattern); err != nil {
				return nil, err
			}
		}
		return ctx.query(&store.Criteria{Key: n.Key, Pattern: re})

	case *NotFilter:
		r, err := ctx.Evaluate(n.Child)
		if err != nil {
			return nil, err
		}
		if ctx.activeKind == dataset.KindNone {
			return nil, fmt.Errorf("NOT evaluated without an active record kind")
		}
		return ctx.store.Complement(ctx.activeKind, r), nil

	case *EmptyFilter:
		return ctx.query(nil)

	default:
		return nil, fmt.Errorf("unhandled filter node %T", f)
	}
}

func (ctx *ExecutionContext) query(c *store.Criteria) (store.RecordSet, error) {
	rs, err := ctx.store.Query(c)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCriteria) {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return nil, err
	}
	return rs, nil
}

// toFloat64 converts a numeric value to float64 if possible
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}
