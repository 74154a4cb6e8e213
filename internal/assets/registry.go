package assets

import (
	"sort"
	"strings"
)

// Registry is the original-path to served-path mapping produced by one
// pipeline run, plus the URL prefix the root is mounted under. It is built
// once, read-only afterwards, and handed explicitly to whoever renders or
// serves assets. Nothing in this package keeps ambient state.
type Registry struct {
	prefix   string
	entries  map[string]string // original relative path -> served relative path
	byServed map[string]string // served relative path -> original relative path
}

// NewRegistry builds a registry over the given entries. The prefix is
// normalized to start and end with a slash ("" and "/" both mean the root).
func NewRegistry(prefix string, entries map[string]string) *Registry {
	byServed := make(map[string]string, len(entries))
	for orig, served := range entries {
		byServed[served] = orig
	}
	return &Registry{
		prefix:   normalizePrefix(prefix),
		entries:  entries,
		byServed: byServed,
	}
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return "/"
	}
	return "/" + prefix + "/"
}

// Resolve maps an original relative path to the path it is served under,
// prefix included. Paths the pipeline never saw come back with the prefix
// applied but otherwise untouched, so direct references to unmanaged files
// keep working.
func (r *Registry) Resolve(orig string) string {
	orig = strings.TrimPrefix(orig, "/")
	if served, ok := r.entries[orig]; ok {
		return r.prefix + served
	}
	return r.prefix + orig
}

// Lookup returns the served relative path for an original path, without the
// prefix. The second result reports whether the pipeline knows the path.
func (r *Registry) Lookup(orig string) (string, bool) {
	served, ok := r.entries[strings.TrimPrefix(orig, "/")]
	return served, ok
}

// Fingerprinted reports whether the given served path carries a digest
// token. Entries served under their original name are not fingerprinted:
// they must not get immutable cache headers.
func (r *Registry) Fingerprinted(served string) bool {
	served = strings.TrimPrefix(served, "/")
	orig, ok := r.byServed[served]
	return ok && orig != served
}

// Originals returns every original relative path in sorted order.
func (r *Registry) Originals() []string {
	paths := make([]string, 0, len(r.entries))
	for orig := range r.entries {
		paths = append(paths, orig)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Prefix returns the normalized URL prefix the root is mounted under.
func (r *Registry) Prefix() string {
	return r.prefix
}
