package crawler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CSS selectors for the regions of the catalog markup the crawler reads.
const (
	vendorMenuSelector = "div.brandmenu-v2"
	paginationSelector = "div.nav-pages"
	reviewBodySelector = "div#review-body"
	deviceGridSelector = "div.makers"
)

// MenuEntry is an anchor of the vendor menu.
type MenuEntry struct {
	// Href is the raw href, e.g. "samsung-phones-9.php".
	Href string

	// Text is the trimmed anchor text, e.g. "Samsung".
	Text string
}

// newDocument parses html into a goquery document.
func newDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ParseVendorMenu returns the entries of the vendor menu in document order.
// Only the first list of the first menu region is read, and list items
// without an href are skipped.
func ParseVendorMenu(html string) ([]MenuEntry, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	menu := doc.Find(vendorMenuSelector).First()
	if menu.Length() == 0 {
		return nil, ErrVendorMenuNotFound
	}

	var entries []MenuEntry
	menu.Find("ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		entries = append(entries, MenuEntry{
			Href: href,
			Text: strings.TrimSpace(a.Text()),
		})
	})

	return entries, nil
}

// ParsePaginationLinks returns the distinct hrefs of the pagination region
// that carry a page number, in document order. A page without a pagination
// region yields no links.
func ParsePaginationLinks(html string) ([]string, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find(paginationSelector).First().Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !pageNumberPattern.MatchString(href) || seen[href] {
			return
		}
		seen[href] = true
		links = append(links, href)
	})

	return links, nil
}

// ParseDeviceLinks returns every href inside the device grid of a listing
// page, duplicates included.
func ParseDeviceLinks(html string) ([]string, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	grid := doc.Find(reviewBodySelector).First().Find(deviceGridSelector).First()
	if grid.Length() == 0 {
		return nil, ErrDeviceGridNotFound
	}

	var links []string
	grid.Find("a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			links = append(links, href)
		}
	})

	return links, nil
}

// joinURL joins href onto baseURL with exactly one slash.
func joinURL(baseURL, href string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
}
