package importmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"assetmap/internal/assets"
)

// rootModule is the specifier an _index file at the top of the asset root
// contributes, since it has no containing directory to take a name from.
const rootModule = "app"

// indexStem marks a file that names its directory instead of itself.
const indexStem = "_index"

var scriptExts = map[string]bool{
	".js":  true,
	".mjs": true,
}

// Entry is one module specifier with the path it resolves to. Pinned
// entries carry whatever path they were configured with, usually a CDN URL;
// derived entries carry the served path of a script under the asset root.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Map is the finished import-map artifact: the entries in emission order,
// the serialized resolution document, and the preload list. Built once,
// immutable afterwards.
type Map struct {
	entries  []Entry
	doc      []byte
	preloads []string
}

// ModuleName converts a script path relative to the asset root into its
// import specifier. widgets/picker.js becomes widgets/picker; an _index
// file names its directory instead of itself (widgets/_index.js → widgets,
// _index.js at the root → "app"). Underscore-prefixed directories are
// dropped from the specifier without moving the file, so _vendor/htmx.js is
// importable as plain "htmx"; an underscore prefix on any other stem is
// stripped the same way.
func ModuleName(rel string) string {
	dir, base := path.Split(rel)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	var parts []string
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg == "" || strings.HasPrefix(seg, "_") {
			continue
		}
		parts = append(parts, seg)
	}

	if stem != indexStem {
		stem = strings.TrimPrefix(stem, "_")
	}
	if stem == indexStem || stem == "" {
		if len(parts) == 0 {
			return rootModule
		}
		return strings.Join(parts, "/")
	}
	return strings.Join(append(parts, stem), "/")
}

// Build assembles the artifact for every script in the registry plus the
// pinned entries. Pins come first and pass through untouched, never
// fingerprinted or rewritten. Derived entries follow in specifier
// order, resolved through the registry. When two entries want the same
// specifier the earlier one wins, which lets a pin shadow a local file.
func Build(reg *assets.Registry, pins []Entry) (*Map, error) {
	entries := make([]Entry, 0, len(pins))
	seen := make(map[string]bool, len(pins))
	for _, pin := range pins {
		if seen[pin.Name] {
			continue
		}
		seen[pin.Name] = true
		entries = append(entries, pin)
	}

	var derived []Entry
	for _, orig := range reg.Originals() {
		if !scriptExts[path.Ext(orig)] {
			continue
		}
		name := ModuleName(orig)
		if seen[name] {
			continue
		}
		seen[name] = true
		derived = append(derived, Entry{Name: name, Path: reg.Resolve(orig)})
	}
	sort.Slice(derived, func(i, j int) bool { return derived[i].Name < derived[j].Name })
	entries = append(entries, derived...)

	doc, err := marshalImports(entries)
	if err != nil {
		return nil, err
	}
	preloads := make([]string, len(entries))
	for i, e := range entries {
		preloads[i] = e.Path
	}
	return &Map{entries: entries, doc: doc, preloads: preloads}, nil
}

// marshalImports writes the resolution document by hand because the key
// order is part of the contract (pins before derived entries) and
// encoding/json sorts map keys. Values go through json.Marshal, so the
// document stays safe to inline in a <script> element.
func marshalImports(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"imports":{`)
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(e.Name)
		if err != nil {
			return nil, fmt.Errorf("importmap: encode %q: %w", e.Name, err)
		}
		p, err := json.Marshal(e.Path)
		if err != nil {
			return nil, fmt.Errorf("importmap: encode %q: %w", e.Path, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(p)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// JSON returns the serialized resolution document.
func (m *Map) JSON() []byte {
	return m.doc
}

// Preloads returns every resolved path in emission order.
func (m *Map) Preloads() []string {
	return m.preloads
}

// Entries returns the combined entry list in emission order.
func (m *Map) Entries() []Entry {
	return m.entries
}
