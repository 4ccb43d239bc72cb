package ports

import (
	"context"

	"designspace/domain/core"
	"designspace/domain/run"
)

// RunRepository persists analysis runs
type RunRepository interface {
	SaveRun(ctx context.Context, record *run.Record) error
	GetRun(ctx context.Context, id core.RunID) (*run.Record, error)
	ListRuns(ctx context.Context, limit int) ([]run.Manifest, error)
}
