// Package output renders query results.
//
// # Supported Formats
//
//   - json: the result envelope {"result": [...]}
//   - jsonl: one JSON object per line (suitable for streaming)
//   - csv: comma-separated values with a header row
//   - table: an aligned text table
//
// All formatters take the output columns and the rows as
// []map[string]interface{}; fields are written in column order.
//
// # Basic Usage
//
//	formatter, err := output.New("table", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(res.Columns, res.Rows); err != nil {
//	    log.Fatal(err)
//	}
//
// Failures are reported with the error envelope:
//
//	output.WriteError(os.Stdout, err) // {"error":"..."}
package output
