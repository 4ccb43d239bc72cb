package encoding

import (
	"context"
	"fmt"
	"sync"

	"designspace/domain/condition"
	"designspace/domain/core"
	"designspace/domain/paradigm"

	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/mat"
)

// EncodeParallel is Encode fanned out over at most workers goroutines. Each
// worker writes only its own matrix row, so output order matches input order.
func (fs *FittedState) EncodeParallel(ctx context.Context, rows []condition.Row, labels []paradigm.Paradigm, workers int) (*mat.Dense, error) {
	if err := fs.fitted(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.ErrEmptyDataset
	}
	if labels != nil && len(labels) != len(rows) {
		return nil, core.NewShapeError("labels", len(rows), 1, len(labels), 1)
	}
	if workers < 1 {
		workers = 1
	}

	m := mat.NewDense(len(rows), fs.width, nil)
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i := range rows {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("encoding cancelled at row %d: %w", i, err)
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			fs.encodeInto(rows[i], labelAt(labels, i), m.RawRowView(i))
		}(i)
	}
	wg.Wait()
	return m, nil
}
