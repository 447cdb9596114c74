package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vegasq/insightql/dataset"
)

// Parse decodes a JSON query and validates everything that can be checked
// without the datasets: top-level shape, OPTIONS, TRANSFORMATIONS and the
// record kind. WHERE is validated when the filter is built.
func Parse(data []byte) (*Query, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, syntaxErrorf("query is not valid JSON: %v", err)
	}
	if dec.More() {
		return nil, syntaxErrorf("query has trailing data after the JSON object")
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, syntaxErrorf("query must be a JSON object")
	}
	return ParseObject(obj)
}

// ParseObject validates an already decoded query object.
func ParseObject(obj map[string]interface{}) (*Query, error) {
	if err := checkQueryStructure(obj); err != nil {
		return nil, err
	}

	where, ok := obj[keyWhere].(map[string]interface{})
	if !ok {
		return nil, syntaxErrorf("WHERE must be an object")
	}

	q := &Query{Where: where}

	options, ok := obj[keyOptions].(map[string]interface{})
	if !ok {
		return nil, syntaxErrorf("OPTIONS must be an object")
	}
	if err := parseOptions(options, q); err != nil {
		return nil, err
	}

	if rawT, exists := obj[keyTransformations]; exists {
		t, err := parseTransformations(rawT)
		if err != nil {
			return nil, err
		}
		q.Transformations = t
	}

	kind, err := inferKind(q.Columns, q.Transformations)
	if err != nil {
		return nil, err
	}
	q.Kind = kind

	if q.Transformations != nil {
		if err := q.Transformations.validate(kind); err != nil {
			return nil, err
		}
	}

	if err := validateColumns(q); err != nil {
		return nil, err
	}

	return q, nil
}

// checkQueryStructure accepts exactly {WHERE, OPTIONS} or
// {WHERE, OPTIONS, TRANSFORMATIONS}.
func checkQueryStructure(obj map[string]interface{}) error {
	_, hasWhere := obj[keyWhere]
	_, hasOptions := obj[keyOptions]
	_, hasTransformations := obj[keyTransformations]

	valid := hasWhere && hasOptions
	switch len(obj) {
	case 2:
	case 3:
		valid = valid && hasTransformations
	default:
		valid = false
	}

	if !valid {
		return syntaxErrorf("query fundamentally malformed: one of %s is invalid", strings.Join(sortedKeys(obj), ","))
	}
	return nil
}

func parseOptions(options map[string]interface{}, q *Query) error {
	rawColumns, ok := options[keyColumns]
	if !ok {
		return syntaxErrorf("COLUMNS is not defined")
	}

	for key := range options {
		if key != keyColumns && key != keyOrder {
			return syntaxErrorf("one of OPTIONS specifications %q is invalid", strings.Join(sortedKeys(options), ","))
		}
	}

	columns, err := stringList(rawColumns, keyColumns)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return syntaxErrorf("COLUMNS must not be empty")
	}
	q.Columns = columns

	if rawOrder, exists := options[keyOrder]; exists {
		order, err := parseOrder(rawOrder, columns)
		if err != nil {
			return err
		}
		q.Order = order
	}

	return nil
}

func parseOrder(raw interface{}, columns []string) (*Order, error) {
	switch v := raw.(type) {
	case string:
		if !contains(columns, v) {
			return nil, syntaxErrorf("cannot order on column %q that is not printed", v)
		}
		return &Order{Keys: []string{v}}, nil

	case map[string]interface{}:
		_, hasDir := v[keyDir]
		_, hasKeys := v[keyKeys]
		if len(v) != 2 || !hasDir || !hasKeys {
			return nil, syntaxErrorf("ORDER is malformed: expected %q and %q", keyDir, keyKeys)
		}

		order := &Order{}
		switch v[keyDir] {
		case dirUp:
		case dirDown:
			order.Desc = true
		default:
			return nil, syntaxErrorf("sort direction %v is invalid; must be either %q or %q", v[keyDir], dirUp, dirDown)
		}

		keys, err := stringList(v[keyKeys], "ORDER keys")
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			return nil, syntaxErrorf("ORDER keys must not be empty")
		}
		for _, k := range keys {
			if !contains(columns, k) {
				return nil, syntaxErrorf("cannot order on column %q that is not printed", k)
			}
		}
		order.Keys = keys
		return order, nil

	default:
		return nil, syntaxErrorf("ORDER is malformed: %v", raw)
	}
}

func parseTransformations(raw interface{}) (*Transformations, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, syntaxErrorf("TRANSFORMATIONS must be an object")
	}

	rawGroup, ok := obj[keyGroup]
	if !ok {
		return nil, syntaxErrorf("no GROUP defined in TRANSFORMATIONS")
	}
	rawApply, ok := obj[keyApply]
	if !ok {
		return nil, syntaxErrorf("no APPLY defined in TRANSFORMATIONS")
	}
	if len(obj) != 2 {
		return nil, syntaxErrorf("TRANSFORMATIONS must contain only GROUP and APPLY, got %s", strings.Join(sortedKeys(obj), ","))
	}

	groupNames, err := stringList(rawGroup, keyGroup)
	if err != nil {
		return nil, err
	}

	t := &Transformations{}
	for _, name := range groupNames {
		key, ok := dataset.ParseKey(name)
		if !ok {
			return nil, syntaxErrorf("%q is not a valid GROUP key", name)
		}
		t.Group = append(t.Group, key)
	}

	applyList, ok := rawApply.([]interface{})
	if !ok {
		return nil, syntaxErrorf("APPLY must be an array")
	}

	seen := make(map[string]bool, len(applyList))
	for _, item := range applyList {
		spec, err := parseApplySpec(item)
		if err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, syntaxErrorf("user defined key %q is not unique", spec.Name)
		}
		seen[spec.Name] = true
		t.Apply = append(t.Apply, spec)
	}

	return t, nil
}

// parseApplySpec parses {"outputKey": {"FN": "source_key"}}.
func parseApplySpec(raw interface{}) (ApplySpec, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return ApplySpec{}, syntaxErrorf("APPLY rule malformed: %v", raw)
	}

	var spec ApplySpec
	name, body, err := singleEntry(obj, "APPLY rule")
	if err != nil {
		return ApplySpec{}, err
	}
	spec.Name = name
	if spec.Name == "" {
		return ApplySpec{}, syntaxErrorf("APPLY key must not be empty")
	}
	if _, isDatasetKey := dataset.ParseKey(spec.Name); isDatasetKey {
		return ApplySpec{}, syntaxErrorf("APPLY key %q shadows a dataset key", spec.Name)
	}

	fnObj, ok := body.(map[string]interface{})
	if !ok {
		return ApplySpec{}, syntaxErrorf("APPLY rule %q malformed: %v", spec.Name, body)
	}
	fn, rawField, err := singleEntry(fnObj, fmt.Sprintf("APPLY rule %q", spec.Name))
	if err != nil {
		return ApplySpec{}, err
	}

	field, ok := rawField.(string)
	if !ok {
		return ApplySpec{}, syntaxErrorf("APPLY rule %q must target a key, got %v", spec.Name, rawField)
	}
	key, ok := dataset.ParseKey(field)
	if !ok {
		return ApplySpec{}, syntaxErrorf("%q is an invalid key", field)
	}
	spec.Field = key

	switch AggregateFunc(fn) {
	case AggMax, AggMin, AggAvg, AggSum:
		if !key.IsNumeric() {
			return ApplySpec{}, syntaxErrorf("MAX/MIN/AVG/SUM can only be performed on numerical keys, got %q", field)
		}
	case AggCount:
	default:
		return ApplySpec{}, syntaxErrorf("%q is not one of MAX/MIN/AVG/SUM/COUNT", fn)
	}
	spec.Func = AggregateFunc(fn)

	return spec, nil
}

// validate checks that every GROUP and APPLY key belongs to kind.
func (t *Transformations) validate(kind dataset.Kind) error {
	for _, key := range t.Group {
		if key.Kind() != kind {
			return syntaxErrorf("%q is not a valid %s key", key, kind)
		}
	}
	for _, spec := range t.Apply {
		if spec.Field.Kind() != kind {
			return syntaxErrorf("APPLY rule %q targets %q which is not a %s key", spec.Name, spec.Field, kind)
		}
	}
	return nil
}

// inferKind derives the record kind from the first column, or from the
// first APPLY rule when the first column is a user-defined key.
func inferKind(columns []string, t *Transformations) (dataset.Kind, error) {
	sample := columns[0]
	if key, ok := dataset.ParseKey(sample); ok {
		return key.Kind(), nil
	}

	if t == nil {
		return dataset.KindNone, syntaxErrorf("%q is invalid", sample)
	}
	if len(t.Apply) == 0 {
		return dataset.KindNone, syntaxErrorf("%q is invalid: no APPLY rule defines it", sample)
	}
	return t.Apply[0].Field.Kind(), nil
}

// validateColumns checks that every column can be produced: a key of the
// query's kind, or a GROUP or APPLY key when transformations are present.
func validateColumns(q *Query) error {
	available := make(map[string]bool)
	if q.Transformations == nil {
		for _, key := range dataset.KeysOf(q.Kind) {
			available[key.String()] = true
		}
	} else {
		for _, key := range q.Transformations.Group {
			available[key.String()] = true
		}
		for _, spec := range q.Transformations.Apply {
			available[spec.Name] = true
		}
	}

	for _, col := range q.Columns {
		if !available[col] {
			if _, known := dataset.ParseKey(col); !known && q.Transformations == nil {
				return syntaxErrorf("key %q does not exist", col)
			}
			return syntaxErrorf("cannot print key %q that was not used to group/select", col)
		}
	}
	return nil
}

func stringList(raw interface{}, what string) ([]string, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, syntaxErrorf("%s must be an array of keys", what)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, syntaxErrorf("%s must contain only strings, got %v", what, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// singleEntry returns the only key/value pair of obj.
func singleEntry(obj map[string]interface{}, what string) (string, interface{}, error) {
	if len(obj) != 1 {
		return "", nil, syntaxErrorf("%s must have exactly one key, got %d", what, len(obj))
	}
	var key string
	var value interface{}
	for k, v := range obj {
		key, value = k, v
	}
	return key, value, nil
}

func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
