// Package export writes a tabular snapshot of the local caches to an external
// sheet, one tab per resource.
package export

import "context"

// RowWriter replaces the contents of a named tab with the given rows. The
// first row is the header.
type RowWriter interface {
	WriteRows(ctx context.Context, tab string, rows [][]any) error
}
