package crawler

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	seclog "github.com/nao1215/devspec/internal/log"
)

func newTestDiscoverer(f Fetcher, vendors []string, opts ...DiscovererOption) *Discoverer {
	opts = append([]DiscovererOption{WithDiscoveryLogger(seclog.Discard())}, opts...)
	return NewDiscoverer(f, testBaseURL, vendors, opts...)
}

// TestDiscoverer_Vendors tests vendor discovery against the allow-list.
func TestDiscoverer_Vendors(t *testing.T) {
	t.Parallel()

	t.Run("keeps allow-listed vendors in menu order", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().page(testBaseURL, rootHTML(
			"apple-phones-48.php", "nokia-phones-1.php", "samsung-phones-9.php", "samsungx-phones-99.php",
		))

		vendors, err := newTestDiscoverer(f, []string{"samsung", "apple"}).Vendors(t.Context())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(vendors) != 2 {
			t.Fatalf("expected 2 vendors, got %+v", vendors)
		}
		if vendors[0].Slug != "apple" || vendors[0].URL != testBaseURL+"/apple-phones-48.php" {
			t.Errorf("unexpected first vendor: %+v", vendors[0])
		}
		if vendors[1].Slug != "samsung" || vendors[1].Name != "SAMSUNG" {
			t.Errorf("unexpected second vendor: %+v", vendors[1])
		}
	})

	t.Run("matching is case sensitive", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().page(testBaseURL, rootHTML("samsung-phones-9.php"))

		vendors, err := newTestDiscoverer(f, []string{"Samsung"}).Vendors(t.Context())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(vendors) != 0 {
			t.Errorf("expected no vendors, got %+v", vendors)
		}
	})

	t.Run("non-200 root is a status error", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().status(testBaseURL, 503)

		_, err := newTestDiscoverer(f, []string{"samsung"}).Vendors(t.Context())
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != 503 {
			t.Fatalf("expected *StatusError with 503, got %v", err)
		}
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Error("expected error to wrap ErrUnexpectedStatus")
		}
	})

	t.Run("missing menu", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().page(testBaseURL, "<html></html>")

		_, err := newTestDiscoverer(f, []string{"samsung"}).Vendors(t.Context())
		if !errors.Is(err, ErrVendorMenuNotFound) {
			t.Errorf("expected ErrVendorMenuNotFound, got %v", err)
		}
	})
}

// TestDiscoverer_Pages tests pagination resolution.
func TestDiscoverer_Pages(t *testing.T) {
	t.Parallel()

	root := testBaseURL + "/samsung-phones-9.php"

	t.Run("root followed by the generated range", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().page(root, listingHTML(nil, "samsung-phones-f-9-0-p5.php", "samsung-phones-f-9-0-p2.php"))

		pages, err := newTestDiscoverer(f, []string{"samsung"}).Pages(t.Context(), root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{
			root,
			testBaseURL + "/samsung-phones-f-9-0-p2.php",
			testBaseURL + "/samsung-phones-f-9-0-p3.php",
			testBaseURL + "/samsung-phones-f-9-0-p4.php",
			testBaseURL + "/samsung-phones-f-9-0-p5.php",
		}
		if !slices.Equal(pages, want) {
			t.Errorf("expected %v, got %v", want, pages)
		}
	})

	t.Run("no pagination links is a single page", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().page(root, listingHTML([]string{"a-1.php"}))

		pages, err := newTestDiscoverer(f, []string{"samsung"}).Pages(t.Context(), root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(pages, []string{root}) {
			t.Errorf("expected only the root, got %v", pages)
		}
	})

	t.Run("no pagination links fails when strict", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().page(root, listingHTML([]string{"a-1.php"}))

		_, err := newTestDiscoverer(f, []string{"samsung"}, WithStrictPagination(true)).Pages(t.Context(), root)
		if !errors.Is(err, ErrPaginationNotRecognized) {
			t.Errorf("expected ErrPaginationNotRecognized, got %v", err)
		}
	})

	t.Run("one or three links fail", func(t *testing.T) {
		t.Parallel()

		for _, links := range [][]string{
			{"s-p2.php"},
			{"s-p2.php", "s-p3.php", "s-p9.php"},
		} {
			f := newFakeFetcher().page(root, listingHTML(nil, links...))

			_, err := newTestDiscoverer(f, []string{"samsung"}).Pages(t.Context(), root)
			var pe *PaginationError
			if !errors.As(err, &pe) {
				t.Fatalf("links %v: expected *PaginationError, got %v", links, err)
			}
			if !slices.Equal(pe.Links, links) {
				t.Errorf("expected links %v in error, got %v", links, pe.Links)
			}
			if !errors.Is(err, ErrPaginationNotRecognized) {
				t.Error("expected error to wrap ErrPaginationNotRecognized")
			}
		}
	})

	t.Run("duplicate links count once", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().page(root, listingHTML(nil, "s-p2.php", "s-p2.php"))

		_, err := newTestDiscoverer(f, []string{"samsung"}).Pages(t.Context(), root)
		var pe *PaginationError
		if !errors.As(err, &pe) || len(pe.Links) != 1 {
			t.Errorf("expected *PaginationError with one link, got %v", err)
		}
	})

	t.Run("root not before the lower boundary", func(t *testing.T) {
		t.Parallel()

		late := testBaseURL + "/samsung-phones-f-9-0-p3.php"
		f := newFakeFetcher().page(late, listingHTML(nil, "samsung-phones-f-9-0-p2.php", "samsung-phones-f-9-0-p5.php"))

		_, err := newTestDiscoverer(f, []string{"samsung"}).Pages(t.Context(), late)
		if !errors.Is(err, ErrRootNotFirstPage) {
			t.Fatalf("expected ErrRootNotFirstPage, got %v", err)
		}
		if !strings.Contains(err.Error(), late+" is not before page 2") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("implausibly wide page range", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().page(root, listingHTML(nil, "s-p2.php", "s-p99999999999999.php"))

		pages, err := newTestDiscoverer(f, []string{"samsung"}).Pages(t.Context(), root)
		var pe *PaginationError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *PaginationError, got %v", err)
		}
		if pages != nil {
			t.Errorf("expected no pages, got %d", len(pages))
		}
	})

	t.Run("non-200 root fails the run", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().status(root, 429)

		_, err := newTestDiscoverer(f, []string{"samsung"}).Pages(t.Context(), root)
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", err)
		}
	})
}

// TestDiscoverer_Devices tests device URL extraction.
func TestDiscoverer_Devices(t *testing.T) {
	t.Parallel()

	page := testBaseURL + "/samsung-phones-f-9-0-p2.php"

	t.Run("joins hrefs onto the base URL", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().page(page, listingHTML([]string{"samsung_galaxy_a25-12555.php", "samsung_galaxy_a25-12555.php"}))

		devices, err := newTestDiscoverer(f, []string{"samsung"}).Devices(t.Context(), page)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{
			testBaseURL + "/samsung_galaxy_a25-12555.php",
			testBaseURL + "/samsung_galaxy_a25-12555.php",
		}
		if !slices.Equal(devices, want) {
			t.Errorf("expected %v, got %v", want, devices)
		}
	})

	t.Run("missing grid", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().page(page, "<html></html>")

		_, err := newTestDiscoverer(f, []string{"samsung"}).Devices(t.Context(), page)
		if !errors.Is(err, ErrDeviceGridNotFound) {
			t.Errorf("expected ErrDeviceGridNotFound, got %v", err)
		}
	})
}

// TestDiscoverer_Discover tests the full discovery walk.
func TestDiscoverer_Discover(t *testing.T) {
	t.Parallel()

	t.Run("collects candidates in discovery order", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().
			page(testBaseURL, rootHTML("samsung-phones-9.php", "apple-phones-48.php")).
			page(testBaseURL+"/samsung-phones-9.php", listingHTML([]string{"s1-1.php"}, "samsung-phones-f-9-0-p2.php", "samsung-phones-f-9-0-p3.php")).
			page(testBaseURL+"/samsung-phones-f-9-0-p2.php", listingHTML([]string{"s2-2.php"})).
			page(testBaseURL+"/samsung-phones-f-9-0-p3.php", listingHTML([]string{"s3-3.php"})).
			page(testBaseURL+"/apple-phones-48.php", listingHTML([]string{"a1-4.php", "s1-1.php"}))

		d, err := newTestDiscoverer(f, []string{"samsung", "apple"}).Discover(t.Context())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(d.Vendors) != 2 || len(d.ListingPages) != 4 {
			t.Errorf("unexpected discovery: %d vendors, %d pages", len(d.Vendors), len(d.ListingPages))
		}
		want := []string{
			testBaseURL + "/s1-1.php",
			testBaseURL + "/s2-2.php",
			testBaseURL + "/s3-3.php",
			testBaseURL + "/a1-4.php",
			testBaseURL + "/s1-1.php",
		}
		if !slices.Equal(d.Candidates, want) {
			t.Errorf("expected %v, got %v", want, d.Candidates)
		}
	})

	t.Run("transport error aborts discovery", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().
			page(testBaseURL, rootHTML("samsung-phones-9.php")).
			fail(testBaseURL+"/samsung-phones-9.php", errConnectionReset)

		_, err := newTestDiscoverer(f, []string{"samsung"}).Candidates(t.Context())
		if !errors.Is(err, errConnectionReset) {
			t.Errorf("expected transport error, got %v", err)
		}
	})

	t.Run("cancelled context stops before listing pages", func(t *testing.T) {
		t.Parallel()

		f := newFakeFetcher().
			page(testBaseURL, rootHTML("samsung-phones-9.php")).
			page(testBaseURL+"/samsung-phones-9.php", listingHTML([]string{"s1-1.php"}))

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := newTestDiscoverer(f, []string{"samsung"}).Discover(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
