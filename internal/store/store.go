// Package store persists crawled device pages between runs.
//
// Two backends implement Store: a flat url,html CSV file (the default) and
// a SQLite database. Save always writes the complete set and is
// all-or-nothing: a failed save leaves the previous contents in place.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/devspec/internal/model"
)

// Backend kinds accepted by Open.
const (
	KindCSV    = "csv"
	KindSQLite = "sqlite"
)

var (
	// ErrUnknownKind is returned by Open for an unsupported backend.
	ErrUnknownKind = errors.New("unknown store kind")

	// ErrInvalidHeader is returned when a CSV store does not start with
	// the url,html header.
	ErrInvalidHeader = errors.New("invalid store header: expected url,html")
)

// Store loads and saves the full record set.
type Store interface {
	// Load returns every stored record. A store that does not exist yet
	// loads as an empty set.
	Load(ctx context.Context) (*model.RecordSet, error)

	// Save replaces the stored contents with set.
	Save(ctx context.Context, set *model.RecordSet) error

	// Close releases the backend.
	Close() error
}

// options holds settings shared by backends.
type options struct {
	runID string
}

// Option configures a Store.
type Option func(*options)

// WithRunID tags records first written by this store with a crawl run ID.
// Only the SQLite backend keeps it.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// Open returns the backend of the given kind at path.
func Open(kind, path string, opts ...Option) (Store, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	switch kind {
	case KindCSV:
		return NewCSV(path), nil
	case KindSQLite:
		return OpenSQLite(path, o.runID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
