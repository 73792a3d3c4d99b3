package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nao1215/devspec/internal/proxy"
)

const testBaseURL = "http://catalog.test"

// fakeFetcher serves canned pages keyed by URL and records every fetch.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]*proxy.Response
	errs    map[string]error
	fetched []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]*proxy.Response),
		errs:  make(map[string]error),
	}
}

func (f *fakeFetcher) page(url, body string) *fakeFetcher {
	f.pages[url] = &proxy.Response{StatusCode: 200, Body: body}
	return f
}

func (f *fakeFetcher) status(url string, code int) *fakeFetcher {
	f.pages[url] = &proxy.Response{StatusCode: code, Body: "error page"}
	return f
}

func (f *fakeFetcher) fail(url string, err error) *fakeFetcher {
	f.errs[url] = err
	return f
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*proxy.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)

	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if resp, ok := f.pages[url]; ok {
		return resp, nil
	}
	return &proxy.Response{StatusCode: 404, Body: "not found"}, nil
}

func (f *fakeFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

var errConnectionReset = errors.New("connection reset by peer")

// rootHTML renders a catalog root with a vendor menu.
func rootHTML(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="brandmenu-v2 light l-box clearfix"><ul>`)
	for _, href := range hrefs {
		name := strings.SplitN(href, "-", 2)[0]
		fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, href, strings.ToUpper(name))
	}
	b.WriteString(`</ul></div></body></html>`)
	return b.String()
}

// listingHTML renders a listing page with a device grid and optional
// pagination links.
func listingHTML(devices []string, pagination ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="review-body"><div class="makers"><ul>`)
	for _, d := range devices {
		fmt.Fprintf(&b, `<li><a href="%s"><strong>%s</strong></a></li>`, d, d)
	}
	b.WriteString(`</ul></div>`)
	if len(pagination) > 0 {
		b.WriteString(`<div class="nav-pages"><strong>1</strong>`)
		for _, p := range pagination {
			fmt.Fprintf(&b, `<a href="%s">page</a>`, p)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// memorySeen is a Seen backed by a map.
type memorySeen map[string]bool

func (m memorySeen) Has(url string) bool { return m[url] }
