package config

import (
	"maps"
	"slices"
	"time"
)

// StoreSection configures the record store in the config file.
type StoreSection struct {
	// Path is the store file location.
	Path string `yaml:"path,omitempty"`

	// Kind is the backend: "csv" or "sqlite".
	Kind string `yaml:"kind,omitempty"`
}

// File represents the structure of the .devspec configuration file.
// Every field is optional; unset fields keep the value already in Config.
type File struct {
	// BaseURL overrides the catalog origin.
	BaseURL string `yaml:"base_url,omitempty"`

	// Proxy overrides the forwarding proxy address ("host:port").
	Proxy string `yaml:"proxy,omitempty"`

	// Vendors replaces the default vendor allow-list.
	Vendors []string `yaml:"vendors,omitempty"`

	// Headers are merged over the default request headers.
	// A header set to an empty string is removed from the request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Limit overrides the per-run request limit.
	Limit *int `yaml:"limit,omitempty"`

	// BatchSize overrides the batch size.
	BatchSize *int `yaml:"batch_size,omitempty"`

	// Delay sets the minimum spacing between fetches (e.g. "500ms").
	Delay time.Duration `yaml:"delay,omitempty"`

	// Timeout sets the per-request timeout (e.g. "30s").
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// StrictPagination treats listing pages without pagination as errors.
	StrictPagination *bool `yaml:"strict_pagination,omitempty"`

	// Store configures the record store.
	Store StoreSection `yaml:"store,omitempty"`
}

// Apply copies every field set in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if len(f.Vendors) > 0 {
		cfg.Vendors = slices.Clone(f.Vendors)
	}
	if len(f.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(f.Headers))
		}
		maps.Copy(cfg.Headers, f.Headers)
	}
	if f.Limit != nil {
		cfg.RequestLimit = *f.Limit
	}
	if f.BatchSize != nil {
		cfg.BatchSize = *f.BatchSize
	}
	if f.Delay != 0 {
		cfg.CrawlDelay = f.Delay
	}
	if f.Timeout != 0 {
		cfg.Timeout = f.Timeout
	}
	if f.StrictPagination != nil {
		cfg.StrictPagination = *f.StrictPagination
	}
	if f.Store.Path != "" {
		cfg.StorePath = f.Store.Path
	}
	if f.Store.Kind != "" {
		cfg.StoreKind = f.Store.Kind
	}
}
