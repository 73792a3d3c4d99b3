package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/devspec/internal/config"
	"github.com/nao1215/devspec/internal/crawler"
	"github.com/nao1215/devspec/internal/model"
	"github.com/nao1215/devspec/internal/store"
)

// ErrRunFailed is returned by PersistStep when an earlier step recorded an
// error, which only happens with WithContinueOnError.
var ErrRunFailed = errors.New("run has failed, refusing to persist")

// LoadStoreStep loads the records persisted by earlier runs.
type LoadStoreStep struct {
	store store.Store
}

// NewLoadStoreStep creates a LoadStoreStep reading from s.
func NewLoadStoreStep(s store.Store) *LoadStoreStep {
	return &LoadStoreStep{store: s}
}

// Name returns the step name.
func (s *LoadStoreStep) Name() string {
	return "load_store"
}

// Do fills run.Prior.
func (s *LoadStoreStep) Do(ctx context.Context, run *model.CrawlRun) error {
	prior, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	run.Prior = prior
	return nil
}

// DiscoverStep walks the catalog to the candidate device URLs.
type DiscoverStep struct {
	discoverer *crawler.Discoverer
}

// NewDiscoverStep creates a DiscoverStep.
func NewDiscoverStep(d *crawler.Discoverer) *DiscoverStep {
	return &DiscoverStep{discoverer: d}
}

// Name returns the step name.
func (s *DiscoverStep) Name() string {
	return "discover"
}

// Do fills run.Vendors, run.ListingPages and run.Candidates.
func (s *DiscoverStep) Do(ctx context.Context, run *model.CrawlRun) error {
	d, err := s.discoverer.Discover(ctx)
	if err != nil {
		return err
	}
	run.Vendors = d.Vendors
	run.ListingPages = d.ListingPages
	run.Candidates = d.Candidates
	return nil
}

// FrontierStep selects the URLs to fetch in this run.
type FrontierStep struct {
	limit  int
	logger *slog.Logger
}

// NewFrontierStep creates a FrontierStep capping the frontier at limit.
func NewFrontierStep(limit int, logger *slog.Logger) *FrontierStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontierStep{limit: limit, logger: logger}
}

// Name returns the step name.
func (s *FrontierStep) Name() string {
	return "frontier"
}

// Do fills run.Frontier from run.Candidates minus run.Prior.
func (s *FrontierStep) Do(_ context.Context, run *model.CrawlRun) error {
	run.Frontier = crawler.Frontier(run.Candidates, run.Prior, s.limit)
	s.logger.Info("frontier assembled",
		"candidates", len(run.Candidates),
		"stored", run.Prior.Len(),
		"frontier", len(run.Frontier),
		"limit", s.limit,
	)
	return nil
}

// FetchStep fetches the frontier.
type FetchStep struct {
	executor *crawler.Executor
}

// NewFetchStep creates a FetchStep.
func NewFetchStep(e *crawler.Executor) *FetchStep {
	return &FetchStep{executor: e}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do fills run.Fetched and run.Failures.
func (s *FetchStep) Do(ctx context.Context, run *model.CrawlRun) error {
	result, err := s.executor.Run(ctx, run.Frontier)
	if err != nil {
		return fmt.Errorf("failed to fetch device pages: %w", err)
	}
	run.Fetched = result.Records
	run.Failures = result.Failures
	return nil
}

// PersistStep writes the prior records plus the newly fetched ones.
type PersistStep struct {
	store store.Store
}

// NewPersistStep creates a PersistStep writing to s.
func NewPersistStep(s store.Store) *PersistStep {
	return &PersistStep{store: s}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do saves run.Prior ∪ run.Fetched and sets run.Stored.
func (s *PersistStep) Do(ctx context.Context, run *model.CrawlRun) error {
	if run.Error != nil {
		return ErrRunFailed
	}

	all := run.Prior.Union(model.NewRecordSet(run.Fetched...))
	if err := s.store.Save(ctx, all); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	run.Stored = all.Len()
	return nil
}

// CrawlPipelineConfig holds configuration for the crawl pipeline.
type CrawlPipelineConfig struct {
	// BaseURL is the catalog origin.
	BaseURL string

	// Vendors is the allow-list of vendor slugs.
	Vendors []string

	// RequestLimit caps the frontier.
	RequestLimit int

	// BatchSize is the number of URLs per executor batch.
	BatchSize int

	// CrawlDelay is the minimum spacing between device page fetches.
	CrawlDelay time.Duration

	// StrictPagination rejects vendor roots without pagination links.
	StrictPagination bool

	// Observer receives fetch outcomes, e.g. a metrics recorder.
	Observer crawler.Observer

	// Logger is passed to the crawler components.
	Logger *slog.Logger
}

// CrawlPipelineOption configures a CrawlPipelineConfig.
type CrawlPipelineOption func(*CrawlPipelineConfig)

// WithPipelineBaseURL sets the catalog origin.
func WithPipelineBaseURL(baseURL string) CrawlPipelineOption {
	return func(c *CrawlPipelineConfig) {
		c.BaseURL = baseURL
	}
}

// WithPipelineVendors sets the vendor allow-list.
func WithPipelineVendors(vendors []string) CrawlPipelineOption {
	return func(c *CrawlPipelineConfig) {
		c.Vendors = vendors
	}
}

// WithPipelineRequestLimit sets the frontier cap.
func WithPipelineRequestLimit(limit int) CrawlPipelineOption {
	return func(c *CrawlPipelineConfig) {
		c.RequestLimit = limit
	}
}

// WithPipelineBatchSize sets the executor batch size.
func WithPipelineBatchSize(size int) CrawlPipelineOption {
	return func(c *CrawlPipelineConfig) {
		c.BatchSize = size
	}
}

// WithPipelineCrawlDelay sets the minimum spacing between fetches.
func WithPipelineCrawlDelay(delay time.Duration) CrawlPipelineOption {
	return func(c *CrawlPipelineConfig) {
		c.CrawlDelay = delay
	}
}

// WithPipelineStrictPagination rejects vendor roots without pagination.
func WithPipelineStrictPagination(strict bool) CrawlPipelineOption {
	return func(c *CrawlPipelineConfig) {
		c.StrictPagination = strict
	}
}

// WithPipelineObserver sets the fetch outcome observer.
func WithPipelineObserver(o crawler.Observer) CrawlPipelineOption {
	return func(c *CrawlPipelineConfig) {
		c.Observer = o
	}
}

// WithPipelineLogger sets the logger of the crawler components.
func WithPipelineLogger(logger *slog.Logger) CrawlPipelineOption {
	return func(c *CrawlPipelineConfig) {
		c.Logger = logger
	}
}

// CrawlPipeline creates the standard crawl pipeline:
// load store, discover, frontier, fetch, persist.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts crawl config options (WithPipelineRequestLimit, etc).
func CrawlPipeline(f crawler.Fetcher, s store.Store, pipelineOpts []Option, configOpts ...CrawlPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &CrawlPipelineConfig{
		BaseURL:      config.DefaultBaseURL,
		Vendors:      config.DefaultVendors,
		RequestLimit: config.DefaultRequestLimit,
		BatchSize:    config.DefaultBatchSize,
		CrawlDelay:   config.DefaultCrawlDelay,
		Logger:       p.logger,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	discoverer := crawler.NewDiscoverer(f, cfg.BaseURL, cfg.Vendors,
		crawler.WithStrictPagination(cfg.StrictPagination),
		crawler.WithDiscoveryLogger(cfg.Logger),
	)
	executor := crawler.NewExecutor(f,
		crawler.WithBatchSize(cfg.BatchSize),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithObserver(cfg.Observer),
		crawler.WithExecutorLogger(cfg.Logger),
	)

	p.AddSteps(
		NewLoadStoreStep(s),
		NewDiscoverStep(discoverer),
		NewFrontierStep(cfg.RequestLimit, cfg.Logger),
		NewFetchStep(executor),
		NewPersistStep(s),
	)

	return p
}
