// Package config provides configuration structures and utilities for devspec.
// It defines the crawl defaults, the .devspec YAML file format, and the XDG
// locations used for the run journal.
package config
