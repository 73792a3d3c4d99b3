// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// The SecureHandler sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Proxy-Authorization)
//   - Secret values detected by pattern matching (tokens, keys)
//   - Credentials embedded in URLs, such as the proxy token in
//     "http://<token>:@proxy.scrape.do:8080"
//
// Even in verbose mode, sensitive values are masked so that logs of a crawl
// can be shared without leaking the proxy token.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("fetching via proxy", "url", u, "callCount", n)
//	slog.SetDefault(logger)
package log
