package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/devspec/internal/model"
)

// DefaultBatchSize is the number of URLs per batch.
const DefaultBatchSize = 10

// Observer is notified of every fetch outcome of an Executor.
type Observer interface {
	FetchSucceeded(url string)
	FetchFailed(url string, statusCode int)
}

type nopObserver struct{}

func (nopObserver) FetchSucceeded(string)   {}
func (nopObserver) FetchFailed(string, int) {}

// Result is the outcome of an Executor run.
type Result struct {
	// Records are the pages that answered 200, in fetch order.
	Records []model.Record

	// Failures are the pages that answered any other status.
	Failures []model.Failure
}

// Executor fetches a frontier one URL at a time, grouped into batches for
// progress logging.
type Executor struct {
	fetcher   Fetcher
	batchSize int
	limiter   *rate.Limiter
	observer  Observer
	logger    *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithBatchSize sets the number of URLs per batch.
func WithBatchSize(size int) ExecutorOption {
	return func(e *Executor) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// WithDelay sets the minimum spacing between fetches. Zero disables it.
func WithDelay(delay time.Duration) ExecutorOption {
	return func(e *Executor) {
		if delay > 0 {
			e.limiter = rate.NewLimiter(rate.Every(delay), 1)
		} else {
			e.limiter = nil
		}
	}
}

// WithObserver sets the observer notified of fetch outcomes.
func WithObserver(o Observer) ExecutorOption {
	return func(e *Executor) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithExecutorLogger sets the logger for batch and failure lines.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an Executor fetching through f.
func NewExecutor(f Fetcher, opts ...ExecutorOption) *Executor {
	e := &Executor{
		fetcher:   f,
		batchSize: DefaultBatchSize,
		observer:  nopObserver{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run fetches urls in order. A 200 response becomes a Record; any other
// status is logged and recorded as a Failure. A transport error or a
// cancelled context aborts the run and discards partial results.
func (e *Executor) Run(ctx context.Context, urls []string) (*Result, error) {
	result := &Result{
		Records:  []model.Record{},
		Failures: []model.Failure{},
	}

	batches := partition(urls, e.batchSize)
	for i, batch := range batches {
		e.logger.Info("processing batch", "batch", i+1, "of", len(batches), "size", len(batch))

		for _, url := range batch {
			if err := e.wait(ctx); err != nil {
				return nil, err
			}

			resp, err := e.fetcher.Fetch(ctx, url)
			if err != nil {
				return nil, err
			}

			if resp.StatusCode == http.StatusOK {
				result.Records = append(result.Records, model.Record{URL: url, HTML: resp.Body})
				e.observer.FetchSucceeded(url)
				continue
			}

			e.logger.Warn(fmt.Sprintf("Crawling from %s is failed", url), "statusCode", resp.StatusCode)
			result.Failures = append(result.Failures, model.Failure{URL: url, StatusCode: resp.StatusCode})
			e.observer.FetchFailed(url, resp.StatusCode)
		}
	}

	return result, nil
}

// wait blocks until the next fetch may start.
func (e *Executor) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

// partition splits urls into consecutive chunks of at most size.
func partition(urls []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(urls); start += size {
		end := min(start+size, len(urls))
		batches = append(batches, urls[start:end])
	}
	return batches
}
