package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/devspec/internal/model"
)

// csvHeader is the first row of every CSV store.
var csvHeader = []string{"url", "html"}

// CSV stores records in a two-column url,html file.
type CSV struct {
	path string
}

// NewCSV returns a CSV store at path. The file is not touched until Load
// or Save.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Path returns the file path.
func (s *CSV) Path() string {
	return s.path
}

// Load reads every record. A missing file loads as an empty set.
// Repeated URLs keep their first row. encoding/csv folds "\r\n" inside a
// quoted field to "\n", so bodies with CRLF line endings come back with
// LF endings. Use the SQLite store when bodies must be byte-exact.
func (s *CSV) Load(_ context.Context) (*model.RecordSet, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewRecordSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return model.NewRecordSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store header: %w", err)
	}
	if header[0] != csvHeader[0] || header[1] != csvHeader[1] {
		return nil, fmt.Errorf("%s: %w", s.path, ErrInvalidHeader)
	}

	set := model.NewRecordSet()
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read store: %w", err)
		}
		set.Add(model.Record{URL: row[0], HTML: row[1]})
	}

	return set, nil
}

// Save writes set to a temporary file next to the store and renames it
// over the store, so readers see either the old or the new contents.
func (s *CSV) Save(_ context.Context, set *model.RecordSet) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary store: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write store header: %w", err)
	}
	for _, rec := range set.Records() {
		if err = w.Write([]string{rec.URL, rec.HTML}); err != nil {
			return fmt.Errorf("failed to write record %s: %w", rec.URL, err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("failed to flush store: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync store: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary store: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}

	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *CSV) Close() error {
	return nil
}
