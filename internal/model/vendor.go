package model

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Vendor is a manufacturer entry from the catalog's vendor menu.
type Vendor struct {
	// Name is the anchor text shown in the menu (e.g. "SAMSUNG").
	Name string `json:"name"`

	// Slug is the first path segment of the listing URL, cut at the first
	// hyphen (e.g. "samsung" for "samsung-phones-9.php").
	Slug string `json:"slug"`

	// URL is the absolute listing root URL for the vendor.
	URL string `json:"url"`
}

// VendorSlug returns the vendor identifier encoded in a listing href:
// the first path segment up to the first hyphen. Scheme, host, query and
// fragment are ignored, so "samsung-phones-9.php",
// "/samsung-phones-9.php" and "https://host/samsung-phones-9.php" all
// yield "samsung".
func VendorSlug(href string) string {
	path := href
	if u, err := url.Parse(href); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "/")
	path, _, _ = strings.Cut(path, "/")
	path, _, _ = strings.Cut(path, "-")
	return path
}

// DisplayName returns a human readable vendor name.
// It prefers the slug title-cased ("apple" -> "Apple") so names are
// consistent regardless of how the menu styles its anchor text.
func (v Vendor) DisplayName() string {
	if v.Slug == "" {
		return strings.TrimSpace(v.Name)
	}
	return cases.Title(language.English).String(v.Slug)
}
