package crawler

import (
	"regexp"
	"strconv"
)

var (
	// pageNumberPattern finds the page number of a listing link.
	pageNumberPattern = regexp.MustCompile(`p(\d+)\.php`)

	// pagePrefixPattern captures everything before the page number.
	pagePrefixPattern = regexp.MustCompile(`^(.*)p\d+\.php$`)
)

// MaxListingPages caps the pages one vendor listing may span. Catalog
// listings run to a few dozen pages; a wider range means the pagination
// links were not what they looked like.
const MaxListingPages = 1000

// Boundary is the inclusive page range of a vendor listing.
// Start <= End always holds for a Boundary built by NewBoundary.
type Boundary struct {
	Start int
	End   int

	// Prefix is the href text before "p<n>.php",
	// e.g. "samsung-phones-f-9-0-".
	Prefix string
}

// PageNumber extracts n from the first "p<n>.php" in link.
func PageNumber(link string) (int, error) {
	m := pageNumberPattern.FindStringSubmatch(link)
	if m == nil {
		return 0, &PatternError{Link: link}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &PatternError{Link: link}
	}
	return n, nil
}

// NewBoundary builds the page range spanned by two pagination links.
// The links may come in any order; they are compared by page number, so
// p9 sorts before p10. The prefix is taken from the lower link.
// A range wider than MaxListingPages is a *PaginationError.
func NewBoundary(a, b string) (Boundary, error) {
	na, err := PageNumber(a)
	if err != nil {
		return Boundary{}, err
	}
	nb, err := PageNumber(b)
	if err != nil {
		return Boundary{}, err
	}

	low, start, end := a, na, nb
	if nb < na {
		low, start, end = b, nb, na
	}

	if end-start >= MaxListingPages {
		return Boundary{}, &PaginationError{Links: []string{a, b}}
	}

	m := pagePrefixPattern.FindStringSubmatch(low)
	if m == nil {
		return Boundary{}, &PatternError{Link: low}
	}

	return Boundary{Start: start, End: end, Prefix: m[1]}, nil
}

// Pages returns baseURL/<prefix>p<n>.php for every n in [Start, End].
// It returns nil for an empty range or one wider than MaxListingPages.
func (b Boundary) Pages(baseURL string) []string {
	if b.End < b.Start || b.End-b.Start >= MaxListingPages {
		return nil
	}
	pages := make([]string, 0, b.End-b.Start+1)
	for n := b.Start; n <= b.End; n++ {
		pages = append(pages, joinURL(baseURL, b.Prefix+"p"+strconv.Itoa(n)+".php"))
	}
	return pages
}

// rootPageNumber is the page number of a vendor root URL. A root without
// its own "p<n>.php" suffix is page 1.
func rootPageNumber(rootURL string) int {
	n, err := PageNumber(rootURL)
	if err != nil {
		return 1
	}
	return n
}
