// Package crawler discovers and fetches device pages of a gsmarena-style
// catalog.
//
// # Architecture
//
// A crawl is split into pure parsing and fetching:
//
//   - Parser functions (ParseVendorMenu, ParsePaginationLinks,
//     ParseDeviceLinks) select hrefs from markup with goquery.
//   - Boundary turns the two pagination links of a vendor root page into the
//     full numeric page range.
//   - Discoverer walks root → vendor listings → listing pages → device URLs
//     through a Fetcher.
//   - Frontier removes already stored URLs and caps the work per run.
//   - Executor fetches the frontier sequentially in batches.
//
// The page count of a vendor is never known up front. It is derived from
// the pagination region of the vendor's first listing page, which links the
// lowest and highest page numbers.
//
// # Usage
//
//	d := crawler.NewDiscoverer(client, cfg.BaseURL, cfg.Vendors)
//	candidates, err := d.Candidates(ctx)
//	frontier := crawler.Frontier(candidates, prior, cfg.RequestLimit)
//	result, err := crawler.NewExecutor(client).Run(ctx, frontier)
package crawler
