package query

import "sort"

// ApplyOrder sorts rows by the order keys.
//
// Each key gets its own stable pass, least significant first, so the pass on
// the first key dominates and ties keep the order of later keys. Absent
// values sort before any present value.
func ApplyOrder(rows []map[string]interface{}, order *Order) []map[string]interface{} {
	if order == nil || len(rows) == 0 {
		return rows
	}

	// Create a copy to avoid modifying the original slice
	sorted := make([]map[string]interface{}, len(rows))
	copy(sorted, rows)

	for i := len(order.Keys) - 1; i >= 0; i-- {
		col := order.Keys[i]
		sort.SliceStable(sorted, func(a, b int) bool {
			cmp := compareValues(sorted[a][col], sorted[b][col])
			if order.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	return sorted
}

// compareValues compares two values and returns:
// -1 if a < b
//
//	0 if a == b
//
// +1 if a > b
//
// Numbers compare numerically and strings by byte order. nil is smaller than
// everything else; mismatched types are treated as equal.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	aNum, aIsNum := toFloat64(a)
	bNum, bIsNum := toFloat64(b)
	if aIsNum && bIsNum {
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		default:
			return 0
		}
	}

	aStr, aIsStr := a.(string)
	bStr, bIsStr := b.(string)
	if aIsStr && bIsStr {
		switch {
		case aStr < bStr:
			return -1
		case aStr > bStr:
			return 1
		default:
			return 0
		}
	}

	return 0
}
