package importmap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/hashicorp/go-retryablehttp"
)

// vendorDir is where downloaded pins land inside the asset root. The
// underscore keeps the directory out of derived specifiers, so a module
// vendored as _vendor/htmx.js imports as plain "htmx".
const vendorDir = "_vendor"

// The module name doubles as the vendored filename, so it is restricted to
// characters that survive both a filesystem and a bare specifier.
var moduleNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

type agentTransport struct {
	agent   string
	wrapped http.RoundTripper
}

func (t *agentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.agent)
	return t.wrapped.RoundTrip(req)
}

// Download fetches a module and stores it under _vendor/ in the asset root,
// where the next pipeline run treats it like any other script. Returns the
// stored path relative to the root.
func Download(ctx context.Context, root, module, rawURL, userAgent string) (string, error) {
	if !moduleNamePattern.MatchString(module) {
		return "", fmt.Errorf("module name %q cannot be vendored, pin it without --download", module)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", rawURL, err)
	}

	client := retryablehttp.NewClient()
	client.Logger = slog.Default()
	client.HTTPClient = &http.Client{
		Transport: &agentTransport{
			agent:   userAgent,
			wrapped: http.DefaultTransport,
		},
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}

	ext := path.Ext(u.Path)
	if !scriptExts[ext] {
		ext = ".js"
	}
	rel := path.Join(vendorDir, module+ext)
	dest := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("store %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return rel, nil
}
