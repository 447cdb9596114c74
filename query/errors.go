package query

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every validation failure wraps exactly one of them so callers
// can tell a malformed query from a missing dataset with errors.Is.
var (
	ErrSyntax  = errors.New("syntax error")
	ErrDataset = errors.New("dataset error")
)

// StatusDatasetMissing is the status reported for dataset errors.
const StatusDatasetMissing = http.StatusFailedDependency

func syntaxErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
}

func datasetErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDataset, fmt.Sprintf(format, args...))
}

// StatusCode maps a query error to the status a boundary layer reports:
// 424 for dataset errors and 400 for everything else. A nil error maps to 200.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrDataset):
		return StatusDatasetMissing
	default:
		return http.StatusBadRequest
	}
}
