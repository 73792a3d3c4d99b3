package store

import (
	"context"

	"github.com/nao1215/devspec/internal/database"
	"github.com/nao1215/devspec/internal/model"
)

// SQLite stores records in the records table of a CrawlDB.
type SQLite struct {
	db    *database.CrawlDB
	runID string
}

// OpenSQLite opens or creates the database file at path.
func OpenSQLite(path, runID string) (*SQLite, error) {
	db, err := database.OpenFile(path, database.DefaultOptions())
	if err != nil {
		return nil, err
	}
	return &SQLite{db: db, runID: runID}, nil
}

// Load reads every record in insertion order.
func (s *SQLite) Load(ctx context.Context) (*model.RecordSet, error) {
	return s.db.LoadRecords(ctx)
}

// Save upserts every record of set in one transaction.
func (s *SQLite) Save(ctx context.Context, set *model.RecordSet) error {
	return s.db.SaveRecords(ctx, set.Records(), s.runID)
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
