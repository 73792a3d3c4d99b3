package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

const (
	testToken   = "tok-5ecret-value"
	testCatalog = "http://catalog.test"
)

// catalogProxy plays the forwarding proxy in front of a one-vendor catalog
// with five listing pages of three devices each.
type catalogProxy struct {
	*httptest.Server

	mu       sync.Mutex
	failures map[string]int
	calls    atomic.Int64
}

func newCatalogProxy(t *testing.T) *catalogProxy {
	t.Helper()

	pages := map[string]string{
		"/": `<div class="brandmenu-v2"><ul>
			<li><a href="samsung-phones-9.php">Samsung</a></li>
			<li><a href="apple-phones-48.php">Apple</a></li>
		</ul></div>`,
	}
	for n := 1; n <= 5; n++ {
		var grid strings.Builder
		for d := 1; d <= 3; d++ {
			fmt.Fprintf(&grid, `<li><a href="samsung_galaxy_%d_%d-%d%d.php">Galaxy</a></li>`, n, d, n, d)
		}
		path := fmt.Sprintf("/samsung-phones-f-9-0-p%d.php", n)
		nav := ""
		if n == 1 {
			path = "/samsung-phones-9.php"
			nav = `<div class="nav-pages"><a href="samsung-phones-f-9-0-p2.php">2</a><a href="samsung-phones-f-9-0-p5.php">5</a></div>`
		}
		pages[path] = `<div id="review-body"><div class="makers"><ul>` + grid.String() + `</ul></div>` + nav + `</div>`
	}

	p := &catalogProxy{failures: make(map[string]int)}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.calls.Add(1)

		if r.URL.Host != "catalog.test" || r.Header.Get("Proxy-Authorization") == "" {
			http.Error(w, "bad proxy request", http.StatusBadGateway)
			return
		}

		p.mu.Lock()
		code, failing := p.failures[r.URL.Path]
		p.mu.Unlock()
		if failing {
			http.Error(w, "upstream error", code)
			return
		}

		if body, ok := pages[r.URL.Path]; ok {
			_, _ = io.WriteString(w, body)
			return
		}
		if name, ok := strings.CutPrefix(r.URL.Path, "/samsung_galaxy_"); ok {
			name = strings.TrimSuffix(name, ".php")
			fmt.Fprintf(w, `<h1 data-spec="modelname">Galaxy %s</h1>
				<table>
				<tr><td data-spec="os">Android 14</td></tr>
				<tr><td data-spec="price">$ 499</td></tr>
				</table>`, name)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(p.Close)
	return p
}

// fail makes path answer code.
func (p *catalogProxy) fail(path string, code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[path] = code
}

// address returns the proxy in host:port form.
func (p *catalogProxy) address() string {
	return strings.TrimPrefix(p.URL, "http://")
}

// testEnv holds the per-test file locations.
type testEnv struct {
	dir        string
	configPath string
	storePath  string
	dbDir      string
}

// newTestEnv creates a temp dir with an empty config file, so tests never
// pick up a .devspec from the working or home directory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, ".devspec"),
		storePath:  filepath.Join(dir, "raw-device-info.csv"),
		dbDir:      filepath.Join(dir, "data"),
	}
	if err := os.WriteFile(env.configPath, []byte("vendors: [samsung]\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// crawlArgs returns the arguments of a crawl against p.
func (e *testEnv) crawlArgs(p *catalogProxy, extra ...string) []string {
	args := []string{
		"crawl",
		"--config", e.configPath,
		"--base-url", testCatalog,
		"--proxy", p.address(),
		"--store", e.storePath,
		"--db-dir", e.dbDir,
	}
	args = append(args, extra...)
	return append(args, testToken)
}

// runCLI executes the root command with args and captures its output.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
