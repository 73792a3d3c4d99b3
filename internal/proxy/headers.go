package proxy

import (
	"maps"
	"net/http"
)

// DefaultHeaders are the browser-like request headers sent with every fetch.
// Accept-Encoding, Connection and Host are absent: the transport negotiates
// gzip, manages keep-alive and derives Host from the URL.
var DefaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Language": "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
	"Cache-Control":   "max-age=0",
	"Referer":         "https://www.google.com",
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36",
}

// mergeHeaders returns DefaultHeaders overlaid with overrides.
// An override with an empty value removes the header.
func mergeHeaders(overrides map[string]string) map[string]string {
	merged := maps.Clone(DefaultHeaders)
	for key, value := range overrides {
		key = http.CanonicalHeaderKey(key)
		if value == "" {
			delete(merged, key)
			continue
		}
		merged[key] = value
	}
	return merged
}
