package server

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	webassets "assetmap/assets"
)

// MountStatic serves the asset root under its URL prefix. Fingerprinted
// names are content-addressed, so they get an immutable far-future cache
// policy; everything else must revalidate. Dotted names (the manifest lives
// inside the root) are never served, and directories are not listed.
func (s *Server) MountStatic(r *chi.Mux) {
	prefix := s.state.Load().registry.Prefix()
	fileServer := http.StripPrefix(strings.TrimSuffix(prefix, "/"), http.FileServer(noDirFS{http.Dir(s.root)}))

	r.Handle(prefix+"*", s.cacheHeaders(fileServer))

	r.Get("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(webassets.RobotsTxt))
	})
}

// noDirFS hides directories from the file server so requests for them
// 404 instead of rendering a listing.
type noDirFS struct{ http.FileSystem }

func (f noDirFS) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

func (s *Server) cacheHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := s.state.Load()
		rel := strings.TrimPrefix(r.URL.Path, state.registry.Prefix())
		if hasDotSegment(rel) {
			http.NotFound(w, r)
			return
		}
		policy := "public, no-cache"
		if state.registry.Fingerprinted(rel) {
			policy = "public, max-age=31536000, immutable"
		}
		w.Header().Set("Cache-Control", policy)
		next.ServeHTTP(w, r)
	})
}

func hasDotSegment(p string) bool {
	for seg := range strings.SplitSeq(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
