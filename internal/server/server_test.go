package server

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetmap/internal/assets"
	"assetmap/internal/importmap"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js", "app-0123456789abcdef.js"), []byte("export {};\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, assets.ManifestName), []byte("{}"), 0o644))

	reg := assets.NewRegistry("/", map[string]string{
		"js/app.js": "js/app-0123456789abcdef.js",
		"logo.png":  "logo.png",
	})
	m, err := importmap.Build(reg, nil)
	require.NoError(t, err)

	s := &Server{root: dir}
	s.state.Store(&siteState{registry: reg, imports: m})
	return s, dir
}

func TestStaticCacheHeaders(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.RegisterRoutes()

	// Fingerprinted names are immutable.
	req := httptest.NewRequest("GET", "/js/app-0123456789abcdef.js", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "public, max-age=31536000, immutable", w.Header().Get("Cache-Control"))

	// Passthrough names must revalidate.
	req = httptest.NewRequest("GET", "/logo.png", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "public, no-cache", w.Header().Get("Cache-Control"))
}

func TestStaticNeverServesManifest(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.RegisterRoutes()

	req := httptest.NewRequest("GET", "/"+assets.ManifestName, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 404, w.Code)
}

func TestStaticNoDirectoryListing(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.RegisterRoutes()

	for _, path := range []string{"/js/", "/js"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, 404, w.Code, path)
	}
}

func TestHeartbeat(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.RegisterRoutes()

	req := httptest.NewRequest("GET", "/up", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
}

func TestIndexPage(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.RegisterRoutes()

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, `<script type="importmap">`)
	assert.Contains(t, body, "js/app-0123456789abcdef.js")
}

func TestImportMapEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.RegisterRoutes()

	req := httptest.NewRequest("GET", "/importmap.json", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/importmap+json", w.Header().Get("Content-Type"))
	assert.Equal(t, string(s.state.Load().imports.JSON()), w.Body.String())
}

func TestRobotsTxt(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.RegisterRoutes()

	req := httptest.NewRequest("GET", "/robots.txt", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "User-agent")
}
