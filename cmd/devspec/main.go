// Package main provides the entry point for the devspec CLI.
//
// devspec crawls a mobile-device specification catalog through a paid
// forwarding proxy. Each run discovers the device pages of the configured
// vendors, fetches a small number of pages not yet stored and appends them
// to a local store. The report command turns the stored pages into a
// device table.
//
// Usage:
//
//	devspec crawl <proxy-token>
//	devspec report
//	devspec history
//
// See --help for all available options.
package main

// main is the entry point for devspec.
func main() {
	Execute()
}
