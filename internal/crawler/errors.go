package crawler

import (
	"errors"
	"fmt"
)

// Discovery errors. Any of them aborts a crawl run before anything is
// persisted.
var (
	// ErrUnexpectedStatus is returned when a discovery fetch does not answer 200.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrVendorMenuNotFound is returned when the root page has no vendor menu.
	ErrVendorMenuNotFound = errors.New("vendor menu not found")

	// ErrDeviceGridNotFound is returned when a listing page has no device grid.
	ErrDeviceGridNotFound = errors.New("device grid not found")

	// ErrPaginationNotRecognized is returned when the pagination region of a
	// vendor root page does not hold exactly two page links.
	ErrPaginationNotRecognized = errors.New("pagination not recognized")

	// ErrPageNumberPattern is returned when a pagination link has no page number.
	ErrPageNumberPattern = errors.New("page number pattern not matched")

	// ErrRootNotFirstPage is returned when the vendor root page does not come
	// before the lower pagination boundary.
	ErrRootNotFirstPage = errors.New("vendor root is not before the pagination boundary")
)

// StatusError reports a non-200 response during discovery.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

// Unwrap returns ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// PaginationError reports the pagination links that could not be used.
type PaginationError struct {
	Links []string
}

// Error implements error.
func (e *PaginationError) Error() string {
	return fmt.Sprintf("pagination URLs not found or not in expected format: %v", e.Links)
}

// Unwrap returns ErrPaginationNotRecognized.
func (e *PaginationError) Unwrap() error {
	return ErrPaginationNotRecognized
}

// PatternError reports a pagination link without a page number.
type PatternError struct {
	Link string
}

// Error implements error.
func (e *PatternError) Error() string {
	return fmt.Sprintf("%s does not match the pattern %s", e.Link, pageNumberPattern.String())
}

// Unwrap returns ErrPageNumberPattern.
func (e *PatternError) Unwrap() error {
	return ErrPageNumberPattern
}
