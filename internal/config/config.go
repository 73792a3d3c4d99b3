package config

import (
	"net/url"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// A bare `devspec crawl <token>` runs with exactly these.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "devspec"

	// DefaultBaseURL is the catalog origin. Every discovered href is joined
	// onto it with a single slash.
	DefaultBaseURL = "https://www.gsmarena.com"

	// DefaultProxyAddress is the forwarding proxy in "host:port" form.
	// The proxy token becomes the user name of the proxy URL.
	DefaultProxyAddress = "proxy.scrape.do:8080"

	// DefaultRequestLimit caps how many new device pages one run fetches.
	// Kept small so each run spends a predictable number of proxy credits.
	DefaultRequestLimit = 2

	// DefaultBatchSize is the number of device URLs grouped per logged batch.
	// Batches run one after another, never concurrently.
	DefaultBatchSize = 10

	// DefaultStorePath is the CSV file holding crawled pages.
	DefaultStorePath = "raw-device-info.csv"

	// DefaultStoreKind selects the CSV backend.
	DefaultStoreKind = StoreKindCSV

	// DefaultCrawlDelay is the minimum spacing between fetches.
	// Zero disables the limiter; the crawl is sequential either way.
	DefaultCrawlDelay time.Duration = 0

	// DefaultTimeout is the per-request timeout. Zero leaves timing to the
	// transport defaults.
	DefaultTimeout time.Duration = 0

	// DefaultMaxBodySize limits how much of a response body is read.
	// Device pages are around 150KB; 10MB leaves ample headroom.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultReportConcurrency bounds parallel extraction in the report command.
	DefaultReportConcurrency = 4

	// DefaultHistoryLimit is how many runs the history command lists.
	DefaultHistoryLimit = 20
)

// Store backend kinds.
const (
	// StoreKindCSV stores records in a flat url,html CSV file.
	StoreKindCSV = "csv"

	// StoreKindSQLite stores records in a SQLite database file.
	StoreKindSQLite = "sqlite"
)

// DefaultVendors is the vendor allow-list used when neither the config file
// nor the command line names any vendors.
var DefaultVendors = []string{"samsung", "apple"}

// Config holds all configuration options for devspec.
// It is populated from defaults, then the .devspec file, then CLI flags,
// and passed down explicitly rather than kept in global state.
type Config struct {
	// Token authenticates against the forwarding proxy.
	// It is never logged; the secure log handler masks it.
	Token string

	// BaseURL is the catalog origin, without a trailing slash.
	BaseURL string

	// ProxyAddress is the forwarding proxy in "host:port" form.
	ProxyAddress string

	// Vendors is the allow-list of vendor slugs to crawl.
	// Matching is exact and case-sensitive.
	Vendors []string

	// Headers override or extend the default browser-like request headers.
	Headers map[string]string

	// RequestLimit caps the number of device pages fetched in one run.
	RequestLimit int

	// BatchSize is the number of URLs per sequential batch.
	BatchSize int

	// CrawlDelay is the minimum spacing between fetches. Zero disables it.
	CrawlDelay time.Duration

	// Timeout is the per-request timeout. Zero means no explicit timeout.
	Timeout time.Duration

	// MaxBodySize is the maximum number of body bytes read per response.
	MaxBodySize int64

	// StrictPagination makes a listing page without pagination links an
	// error instead of a single-page listing.
	StrictPagination bool

	// StorePath is the location of the record store.
	StorePath string

	// StoreKind selects the store backend (StoreKindCSV or StoreKindSQLite).
	StoreKind string

	// DBDir is the directory holding the run journal database.
	// Defaults to the XDG data directory.
	DBDir string

	// MetricsFile, when set, receives the run's Prometheus metrics in the
	// node_exporter textfile format.
	MetricsFile string

	// ConfigFilePath is the explicit --config path, if any.
	ConfigFilePath string

	// Verbose enables debug level logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		ProxyAddress: DefaultProxyAddress,
		Vendors:      slices.Clone(DefaultVendors),
		Headers:      make(map[string]string),
		RequestLimit: DefaultRequestLimit,
		BatchSize:    DefaultBatchSize,
		CrawlDelay:   DefaultCrawlDelay,
		Timeout:      DefaultTimeout,
		MaxBodySize:  DefaultMaxBodySize,
		StorePath:    DefaultStorePath,
		StoreKind:    DefaultStoreKind,
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for devspec.
// On Linux: ~/.local/share/devspec
// On macOS: ~/Library/Application Support/devspec
// On Windows: %LOCALAPPDATA%\devspec
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for devspec.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid for a crawl.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrEmptyToken
	}

	if err := c.validateBaseURL(); err != nil {
		return err
	}

	if len(c.Vendors) == 0 {
		return ErrNoVendors
	}

	// A limit of zero is legal: the run discovers and persists nothing new.
	if c.RequestLimit < 0 {
		return ErrInvalidLimit
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidDelay
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	return ValidateStoreKind(c.StoreKind)
}

// validateBaseURL requires an absolute http(s) URL.
func (c *Config) validateBaseURL() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidBaseURL
	}
	return nil
}

// ValidateStoreKind reports whether kind names a known store backend.
func ValidateStoreKind(kind string) error {
	switch kind {
	case StoreKindCSV, StoreKindSQLite:
		return nil
	default:
		return ErrInvalidStoreKind
	}
}
