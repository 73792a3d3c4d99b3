// Package pipeline executes the steps of a crawl run in sequence.
//
// A crawl is the fixed sequence load store → discover → frontier → fetch →
// persist. Each step is a Step that reads what earlier steps left in the
// shared model.CrawlRun and adds its own results. The pipeline checks for
// cancellation between steps and stops at the first failure, so a failed
// or cancelled run never reaches the persist step.
package pipeline
