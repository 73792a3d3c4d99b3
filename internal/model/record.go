package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Record is one crawled device page as it is persisted.
// URL is the unique key; HTML is the raw response body, stored verbatim.
type Record struct {
	// URL is the absolute device page URL.
	URL string `json:"url"`

	// HTML is the raw body returned for URL with a 200 status.
	HTML string `json:"html"`
}

// Digest returns the hex encoded SHA3-256 digest of the record body.
// The SQLite store keeps it alongside the body so a later crawl of the
// same URL can tell whether the page changed.
func (r Record) Digest() string {
	sum := sha3.Sum256([]byte(r.HTML))
	return hex.EncodeToString(sum[:])
}

// RecordSet is an ordered collection of records keyed by URL.
// Insertion order is preserved and the first record added for a URL wins,
// matching the append-only lifecycle of persisted records.
//
// The zero value is not usable; create one with NewRecordSet.
type RecordSet struct {
	records []Record
	index   map[string]int
}

// NewRecordSet creates a RecordSet holding the given records.
// Later duplicates of a URL are ignored.
func NewRecordSet(records ...Record) *RecordSet {
	s := &RecordSet{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		s.Add(r)
	}
	return s
}

// Add appends r unless a record with the same URL is already present.
// It reports whether the record was added.
func (s *RecordSet) Add(r Record) bool {
	if _, ok := s.index[r.URL]; ok {
		return false
	}
	s.index[r.URL] = len(s.records)
	s.records = append(s.records, r)
	return true
}

// Has reports whether a record for url exists.
func (s *RecordSet) Has(url string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[url]
	return ok
}

// Get returns the record stored for url.
func (s *RecordSet) Get(url string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	i, ok := s.index[url]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// Len returns the number of records.
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns a copy of the records in insertion order.
func (s *RecordSet) Records() []Record {
	if s == nil {
		return nil
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// URLs returns the record URLs in insertion order.
func (s *RecordSet) URLs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.URL
	}
	return out
}

// Union returns a new set with the records of s followed by the records
// of other that s does not already hold. Neither input is modified.
func (s *RecordSet) Union(other *RecordSet) *RecordSet {
	out := NewRecordSet(s.Records()...)
	for _, r := range other.Records() {
		out.Add(r)
	}
	return out
}
