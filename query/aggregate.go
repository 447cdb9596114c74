package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vegasq/insightql/dataset"
	"github.com/vegasq/insightql/store"
)

// Group represents a set of records sharing the same GROUP values
type Group struct {
	Key     string                 // Structural key for the group
	Values  map[string]interface{} // Values of the GROUP keys
	Records []dataset.Record       // Member records in input order
}

// ApplyTransformations groups records and computes the APPLY aggregates for
// each group. Groups are returned in first-seen order; each output row holds
// every GROUP key and every APPLY key.
func ApplyTransformations(records store.RecordSet, t *Transformations) ([]map[string]interface{}, error) {
	if t == nil {
		return nil, fmt.Errorf("no transformations to apply")
	}
	if len(records) == 0 {
		return []map[string]interface{}{}, nil
	}
	if err := t.validate(records[0].Kind()); err != nil {
		return nil, err
	}

	groups, err := groupRecords(records, t.Group)
	if err != nil {
		return nil, err
	}

	result := make([]map[string]interface{}, 0, len(groups))
	for _, group := range groups {
		row := make(map[string]interface{}, len(group.Values)+len(t.Apply))
		for k, v := range group.Values {
			row[k] = v
		}
		for _, spec := range t.Apply {
			v, err := evaluateAggregate(spec, group.Records)
			if err != nil {
				return nil, err
			}
			row[spec.Name] = v
		}
		result = append(result, row)
	}
	return result, nil
}

func groupRecords(records store.RecordSet, keys []dataset.Key) ([]*Group, error) {
	index := make(map[string]*Group)
	var groups []*Group

	for _, rec := range records {
		key, values, err := computeGroupKey(rec, keys)
		if err != nil {
			return nil, err
		}
		if group, exists := index[key]; exists {
			group.Records = append(group.Records, rec)
			continue
		}
		group := &Group{Key: key, Values: values, Records: []dataset.Record{rec}}
		index[key] = group
		groups = append(groups, group)
	}
	return groups, nil
}

// computeGroupKey builds a collision-free key from the GROUP values: each
// value is written as a type tag followed by its quoted form.
func computeGroupKey(rec dataset.Record, keys []dataset.Key) (string, map[string]interface{}, error) {
	var b strings.Builder
	values := make(map[string]interface{}, len(keys))

	for _, k := range keys {
		v, ok := rec.Value(k)
		if !ok {
			return "", nil, syntaxErrorf("GROUP key %q does not belong to %s records", k, rec.Kind())
		}
		values[k.String()] = v

		switch val := v.(type) {
		case nil:
			b.WriteString("n;")
		case float64:
			b.WriteString("f")
			b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
			b.WriteString(";")
		case string:
			b.WriteString("s")
			b.WriteString(strconv.Quote(val))
			b.WriteString(";")
		default:
			return "", nil, fmt.Errorf("unsupported value %T for GROUP key %q", v, k)
		}
	}
	return b.String(), values, nil
}

func evaluateAggregate(spec ApplySpec, records []dataset.Record) (interface{}, error) {
	switch spec.Func {
	case AggMax:
		return evaluateExtreme(spec.Field, records, func(a, b float64) bool { return a > b }), nil
	case AggMin:
		return evaluateExtreme(spec.Field, records, func(a, b float64) bool { return a < b }), nil
	case AggSum:
		sum, _ := sumDecimal(spec.Field, records)
		return roundFloat(sum), nil
	case AggAvg:
		sum, n := sumDecimal(spec.Field, records)
		if n == 0 {
			return nil, nil
		}
		return roundFloat(sum.Div(decimal.NewFromInt(n))), nil
	case AggCount:
		return evaluateCount(spec.Field, records), nil
	default:
		return nil, syntaxErrorf("unsupported aggregate function %q", spec.Func)
	}
}

// evaluateExtreme returns the value preferred by better, skipping absent
// values. It returns nil when no member has a value.
func evaluateExtreme(key dataset.Key, records []dataset.Record, better func(a, b float64) bool) interface{} {
	var best float64
	found := false
	for _, rec := range records {
		v, _ := rec.Value(key)
		num, ok := v.(float64)
		if !ok {
			continue
		}
		if !found || better(num, best) {
			best = num
			found = true
		}
	}
	if !found {
		return nil
	}
	return best
}

// sumDecimal accumulates the present values of key and returns how many
// were summed.
func sumDecimal(key dataset.Key, records []dataset.Record) (decimal.Decimal, int64) {
	sum := decimal.Zero
	var n int64
	for _, rec := range records {
		v, _ := rec.Value(key)
		num, ok := v.(float64)
		if !ok {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(num))
		n++
	}
	return sum, n
}

func roundFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// evaluateCount counts the distinct values of key. An absent value counts
// as one distinct value.
func evaluateCount(key dataset.Key, records []dataset.Record) int64 {
	seen := make(map[interface{}]struct{})
	for _, rec := range records {
		v, _ := rec.Value(key)
		seen[v] = struct{}{}
	}
	return int64(len(seen))
}
