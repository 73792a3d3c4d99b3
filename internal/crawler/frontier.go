package crawler

// Seen reports whether a URL is already persisted. *model.RecordSet
// implements it.
type Seen interface {
	Has(url string) bool
}

// Frontier selects the URLs to fetch in this run.
//
// Candidates are deduplicated in order, stored URLs are dropped and the
// rest is cut to limit. The result is a subsequence of candidates, holds
// no stored URL and never exceeds limit. A limit of zero or less yields an
// empty frontier.
func Frontier(candidates []string, crawled Seen, limit int) []string {
	frontier := []string{}
	if limit <= 0 {
		return frontier
	}

	queued := make(map[string]bool, len(candidates))
	for _, url := range candidates {
		if len(frontier) >= limit {
			break
		}
		if queued[url] {
			continue
		}
		queued[url] = true
		if crawled != nil && crawled.Has(url) {
			continue
		}
		frontier = append(frontier, url)
	}
	return frontier
}
