// Package proxy fetches catalog pages through an authenticating HTTP
// forwarding proxy.
//
// The proxy token is carried as the user name of the proxy URL
// (http://<token>:@host:port), so every request, http or https, is billed
// against that token. The Client counts its own calls; there is no global
// counter.
package proxy
