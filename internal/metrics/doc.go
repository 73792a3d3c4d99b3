// Package metrics records the counters of one crawl run in a private
// Prometheus registry.
//
// A Recorder is handed to the crawl executor as its observer and fed the
// run summary once the run is over. WriteTextfile then stores the registry
// in the text format read by node_exporter's textfile collector, which fits
// a command that runs from cron and exits.
package metrics
