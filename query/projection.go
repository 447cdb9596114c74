package query

// ApplyColumns reduces each row to the requested columns. Every column must
// be present on every row.
func ApplyColumns(rows []map[string]interface{}, columns []string) ([]map[string]interface{}, error) {
	if len(columns) == 0 {
		return nil, syntaxErrorf("COLUMNS must not be empty")
	}

	projected := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		newRow := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			value, exists := row[col]
			if !exists {
				return nil, syntaxErrorf("cannot print a key that was not used to group/select: %q", col)
			}
			newRow[col] = value
		}
		projected = append(projected, newRow)
	}
	return projected, nil
}
