package ports

import (
	"context"

	"designspace/domain/condition"
)

// RowSource delivers the raw design-space table
type RowSource interface {
	ReadRows(ctx context.Context) (condition.RawTable, error)
}

// TableSink writes a rendered table (header plus string rows)
type TableSink interface {
	WriteTable(ctx context.Context, name string, headers []string, rows [][]string) error
}
