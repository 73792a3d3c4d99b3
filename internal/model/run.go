package model

import (
	"time"

	"github.com/google/uuid"
)

// Failure records a device page that did not return HTTP 200.
// Failed URLs never enter the store, so they stay candidates for the next run.
type Failure struct {
	// URL is the page that failed.
	URL string `json:"url"`

	// StatusCode is the HTTP status the proxy returned.
	StatusCode int `json:"status_code"`
}

// CrawlRun is the mutable state of one crawl invocation.
// Each pipeline step reads what earlier steps produced and fills in its own
// part, so the struct doubles as a trace of how far a run got.
type CrawlRun struct {
	// === Identity ===

	// ID uniquely identifies the run in the run journal.
	ID string `json:"id"`

	// StartedAt is when the run was created.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is set once the pipeline returns, successfully or not.
	FinishedAt time.Time `json:"finished_at"`

	// === Inputs ===

	// Prior holds the records loaded from the store at the start of the run.
	Prior *RecordSet `json:"-"`

	// === Discovery ===

	// Vendors are the allow-listed vendors found in the site menu.
	Vendors []Vendor `json:"vendors,omitempty"`

	// ListingPages are all resolved listing page URLs, root pages included.
	ListingPages []string `json:"listing_pages,omitempty"`

	// Candidates are device page URLs in discovery order, duplicates included.
	Candidates []string `json:"candidates,omitempty"`

	// Frontier is the deduplicated, store-subtracted and capped list of URLs
	// selected for fetching.
	Frontier []string `json:"frontier,omitempty"`

	// === Results ===

	// Fetched holds the records returned with HTTP 200 during this run.
	Fetched []Record `json:"-"`

	// Failures lists frontier URLs that returned any other status.
	Failures []Failure `json:"failures,omitempty"`

	// Stored is the number of records in the store after persisting.
	// Zero until the persist step succeeds.
	Stored int `json:"stored"`

	// CallCount is the number of proxy requests issued during the run.
	CallCount int64 `json:"call_count"`

	// === Status ===

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the error that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as text, kept for serialization.
	ErrorMessage string `json:"error,omitempty"`

	// Cancelled is true when the context was cancelled mid-run.
	Cancelled bool `json:"cancelled"`
}

// NewCrawlRun creates a run with a fresh ID and an empty prior store.
func NewCrawlRun() *CrawlRun {
	return &CrawlRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Prior:     NewRecordSet(),
	}
}

// Finish stamps the run as finished and records err, if any.
func (r *CrawlRun) Finish(err error) {
	r.FinishedAt = time.Now()
	if err != nil && r.Error == nil {
		r.Error = err
		r.ErrorMessage = err.Error()
	}
}

// Summary condenses the run into counters for the journal and the CLI.
func (r *CrawlRun) Summary() RunSummary {
	return RunSummary{
		ID:           r.ID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Vendors:      len(r.Vendors),
		ListingPages: len(r.ListingPages),
		Candidates:   len(r.Candidates),
		Frontier:     len(r.Frontier),
		Fetched:      len(r.Fetched),
		Failed:       len(r.Failures),
		Stored:       r.Stored,
		ProxyCalls:   r.CallCount,
		Error:        r.ErrorMessage,
	}
}

// RunSummary is the persisted, counter-only view of a CrawlRun.
type RunSummary struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Vendors      int       `json:"vendors"`
	ListingPages int       `json:"listing_pages"`
	Candidates   int       `json:"candidates"`
	Frontier     int       `json:"frontier"`
	Fetched      int       `json:"fetched"`
	Failed       int       `json:"failed"`
	Stored       int       `json:"stored"`
	ProxyCalls   int64     `json:"proxy_calls"`
	Error        string    `json:"error,omitempty"`
}

// Succeeded reports whether the run finished without an error.
func (s RunSummary) Succeeded() bool {
	return s.Error == ""
}

// Duration returns how long the run took, or zero if it never finished.
func (s RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
