// Package database provides SQLite-based storage for devspec.
//
// The CrawlDB stores:
//   - Crawled device pages (url, html, digest, run id, fetch time)
//   - The crawl-run journal, one row per invocation of `devspec crawl`
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver, so the
// binary cross-compiles without a C toolchain.
package database
