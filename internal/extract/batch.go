package extract

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/devspec/internal/model"
)

// DefaultConcurrency is the number of pages parsed at once.
const DefaultConcurrency = 4

// Skipped is a record that could not be extracted.
type Skipped struct {
	URL string
	Err error
}

// Result is the outcome of All.
type Result struct {
	// Devices are the extracted pages in input order.
	Devices []model.DeviceInfo

	// Skipped are the pages that failed extraction, in input order.
	Skipped []Skipped
}

// All extracts every record with at most concurrency goroutines.
// A failing record is reported in Result.Skipped and does not stop the
// others. The only error returned is the context's.
func All(ctx context.Context, records []model.Record, concurrency int) (*Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	// Slots keep the input order regardless of completion order.
	devices := make([]model.DeviceInfo, len(records))
	errs := make([]error, len(records))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			info, err := Device(rec)

			mu.Lock()
			devices[i] = info
			errs[i] = err
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Devices: []model.DeviceInfo{}}
	for i, err := range errs {
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{URL: records[i].URL, Err: err})
			continue
		}
		result.Devices = append(result.Devices, devices[i])
	}
	return result, nil
}
