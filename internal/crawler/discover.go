package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/nao1215/devspec/internal/model"
	"github.com/nao1215/devspec/internal/proxy"
)

// Fetcher retrieves a page. *proxy.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*proxy.Response, error)
}

// Discovery is everything found before the frontier is assembled.
type Discovery struct {
	Vendors      []model.Vendor
	ListingPages []string

	// Candidates are device URLs in discovery order, duplicates included.
	Candidates []string
}

// Discoverer walks the catalog from its root to device page URLs.
type Discoverer struct {
	fetcher Fetcher
	baseURL string

	// vendors is the allow-list of vendor slugs.
	vendors []string

	// strict turns a listing without pagination links into an error.
	strict bool

	logger *slog.Logger
}

// DiscovererOption configures a Discoverer.
type DiscovererOption func(*Discoverer)

// WithStrictPagination makes a vendor root without pagination links fail
// with ErrPaginationNotRecognized instead of being treated as the only page.
func WithStrictPagination(strict bool) DiscovererOption {
	return func(d *Discoverer) {
		d.strict = strict
	}
}

// WithDiscoveryLogger sets the logger for discovery progress.
func WithDiscoveryLogger(logger *slog.Logger) DiscovererOption {
	return func(d *Discoverer) {
		d.logger = logger
	}
}

// NewDiscoverer creates a Discoverer for the catalog at baseURL that keeps
// only the vendors whose slug is in vendors.
func NewDiscoverer(f Fetcher, baseURL string, vendors []string, opts ...DiscovererOption) *Discoverer {
	d := &Discoverer{
		fetcher: f,
		baseURL: baseURL,
		vendors: slices.Clone(vendors),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// fetchPage fetches url and requires a 200 response.
func (d *Discoverer) fetchPage(ctx context.Context, url string) (string, error) {
	resp, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

// Vendors fetches the catalog root and returns the allow-listed vendors in
// menu order. Slugs are compared exactly, case included.
func (d *Discoverer) Vendors(ctx context.Context) ([]model.Vendor, error) {
	body, err := d.fetchPage(ctx, d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vendor menu: %w", err)
	}

	entries, err := ParseVendorMenu(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vendor menu of %s: %w", d.baseURL, err)
	}

	var vendors []model.Vendor
	for _, e := range entries {
		slug := model.VendorSlug(e.Href)
		if !slices.Contains(d.vendors, slug) {
			continue
		}
		vendors = append(vendors, model.Vendor{
			Name: e.Text,
			Slug: slug,
			URL:  joinURL(d.baseURL, e.Href),
		})
	}

	d.logger.Debug("vendors discovered", "menuEntries", len(entries), "matched", len(vendors))
	return vendors, nil
}

// Pages resolves every listing page of the vendor whose first page is
// rootURL. The result starts with rootURL, followed by the generated pages
// in ascending page order.
func (d *Discoverer) Pages(ctx context.Context, rootURL string) ([]string, error) {
	body, err := d.fetchPage(ctx, rootURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vendor root: %w", err)
	}

	links, err := ParsePaginationLinks(body)
	if err != nil {
		return nil, err
	}

	switch {
	case len(links) == 0 && !d.strict:
		d.logger.Debug("no pagination, single listing page", "url", rootURL)
		return []string{rootURL}, nil
	case len(links) == 0:
		return nil, fmt.Errorf("%s: %w", rootURL, ErrPaginationNotRecognized)
	case len(links) != 2:
		return nil, &PaginationError{Links: links}
	}

	boundary, err := NewBoundary(links[0], links[1])
	if err != nil {
		return nil, err
	}

	if rootPageNumber(rootURL) >= boundary.Start {
		return nil, fmt.Errorf("%s is not before page %d: %w", rootURL, boundary.Start, ErrRootNotFirstPage)
	}

	pages := append([]string{rootURL}, boundary.Pages(d.baseURL)...)
	d.logger.Debug("pagination resolved", "url", rootURL, "start", boundary.Start, "end", boundary.End)
	return pages, nil
}

// Devices returns the device page URLs linked from the grid of pageURL.
func (d *Discoverer) Devices(ctx context.Context, pageURL string) ([]string, error) {
	body, err := d.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	hrefs, err := ParseDeviceLinks(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page %s: %w", pageURL, err)
	}

	devices := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		devices = append(devices, joinURL(d.baseURL, href))
	}
	return devices, nil
}

// Discover runs vendor discovery, pagination and device extraction in
// order. The first failure aborts discovery.
func (d *Discoverer) Discover(ctx context.Context) (*Discovery, error) {
	vendors, err := d.Vendors(ctx)
	if err != nil {
		return nil, err
	}

	result := &Discovery{Vendors: vendors}

	for _, v := range vendors {
		pages, err := d.Pages(ctx, v.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pages of %s: %w", v.Slug, err)
		}
		result.ListingPages = append(result.ListingPages, pages...)
	}

	for _, page := range result.ListingPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		devices, err := d.Devices(ctx, page)
		if err != nil {
			return nil, err
		}
		result.Candidates = append(result.Candidates, devices...)
	}

	d.logger.Info("discovery complete",
		"vendors", len(result.Vendors),
		"listingPages", len(result.ListingPages),
		"candidates", len(result.Candidates))

	return result, nil
}

// Candidates returns every device URL of the allow-listed vendors in
// discovery order.
func (d *Discoverer) Candidates(ctx context.Context) ([]string, error) {
	result, err := d.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return result.Candidates, nil
}
