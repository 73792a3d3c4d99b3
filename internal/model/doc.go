// Package model defines the core data structures used throughout devspec.
//
// This package contains the following main types:
//   - Record and RecordSet: crawled device pages as they are persisted
//   - Vendor: an allow-listed manufacturer from the catalog menu
//   - DeviceInfo: structured attributes extracted from a stored page
//   - CrawlRun and RunSummary: the state and outcome of one crawl
//
// Models live in their own package so crawler, store, pipeline and report
// can share them without import cycles.
package model
