package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the file the pipeline writes inside the asset root after
// every fingerprint run. The dot prefix keeps it out of the scan.
const ManifestName = ".manifest.json"

// Manifest records, per original path, the served name and the digest it
// embeds. It exists so a later run (or another tool) can map fingerprinted
// files back to their originals exactly instead of leaning on the filename
// pattern alone.
type Manifest map[string]ManifestEntry

// ManifestEntry is one fingerprinted file.
type ManifestEntry struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
	Size   int64  `json:"size"`
}

// ReadManifest loads the manifest from the root. A missing manifest is not
// an error: the pipeline falls back to the filename pattern.
func ReadManifest(root string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// WriteManifest replaces the manifest in the root.
func WriteManifest(root string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, ManifestName), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// originalsByServed inverts the manifest: served name back to original path.
func (m Manifest) originalsByServed() map[string]string {
	inv := make(map[string]string, len(m))
	for orig, entry := range m {
		inv[entry.Path] = orig
	}
	return inv
}
