// Package query parses and executes JSON queries over course sections and
// rooms.
//
// A query has a WHERE filter, OPTIONS with the output COLUMNS and an optional
// ORDER, and optional TRANSFORMATIONS that group records and compute
// aggregates:
//
//	{
//	    "WHERE": {"AND": [{"IS": {"courses_dept": "cpsc"}}, {"GT": {"courses_avg": 85}}]},
//	    "OPTIONS": {
//	        "COLUMNS": ["courses_title", "overallAvg"],
//	        "ORDER": {"dir": "DOWN", "keys": ["overallAvg"]}
//	    },
//	    "TRANSFORMATIONS": {
//	        "GROUP": ["courses_title"],
//	        "APPLY": [{"overallAvg": {"AVG": "courses_avg"}}]
//	    }
//	}
//
// # Basic Usage
//
//	engine := query.NewEngine(loader, query.Options{})
//	res, err := engine.Perform(data)
//	if err != nil {
//	    status := query.StatusCode(err) // 400 or 424
//	    ...
//	}
//	out, _ := json.Marshal(res) // {"result":[...]}
//
// # Filters
//
// WHERE is turned into a tree of Filter nodes by an ExecutionContext and then
// evaluated against the loaded collection. AND intersects and OR unions the
// record sets of its children; NOT takes the complement within the
// collection of the query's record kind. LT, GT and EQ compare numeric keys;
// IS matches string keys against a pattern in which '*' matches any run of
// characters. An empty WHERE selects every record.
//
// All keys in a query must belong to one record kind. Referencing a dataset
// that was never cached is a dataset error (ErrDataset); every other
// validation failure is a syntax error (ErrSyntax).
//
// # Transformations
//
// GROUP buckets records by the values of the listed keys, in first-seen
// order. APPLY computes MAX, MIN, AVG, SUM or COUNT per group. AVG and SUM are
// computed in decimal and rounded to two places; COUNT counts distinct values.
package query
