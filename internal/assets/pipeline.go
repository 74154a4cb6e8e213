package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"assetmap/internal/cache"
)

// Run executes one full pass over the asset root: scan, fingerprint, rename
// in place, rewrite the manifest. Every file ends up in the returned
// registry or the whole run fails; a half-processed root is never served.
//
// Run is idempotent. Files already carrying a digest token are left alone
// and mapped back to their original path through the manifest (exact) or
// the filename pattern (fallback), so a restart against an already-renamed
// root, or a root another instance got to first, converges on the same
// registry. Editing a fingerprinted file in place is outside the contract;
// restore the original name first.
func Run(root, prefix string) (*Registry, error) {
	files, err := Scan(root)
	if err != nil {
		return nil, err
	}
	previous, err := ReadManifest(root)
	if err != nil {
		return nil, err
	}
	wasServed := previous.originalsByServed()

	entries := make(map[string]string, len(files))
	next := make(Manifest, len(files))
	renamed := 0
	for _, rel := range files {
		info, err := os.Stat(filepath.Join(root, rel))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", rel, err)
		}
		if IsFingerprinted(rel) {
			orig, ok := wasServed[rel]
			if !ok {
				orig = RemoveFingerprint(rel)
			}
			entries[orig] = rel
			next[orig] = ManifestEntry{Path: rel, Digest: Fingerprint(rel), Size: info.Size()}
			continue
		}
		digest, err := digestFor(root, rel, info)
		if err != nil {
			return nil, err
		}
		served := AddFingerprint(rel, digest)
		if err := os.Rename(filepath.Join(root, rel), filepath.Join(root, served)); err != nil {
			return nil, fmt.Errorf("rename %s: %w", rel, err)
		}
		log.Debug().Str("from", rel).Str("to", served).Msg("Fingerprinted asset")
		renamed++
		entries[rel] = served
		next[rel] = ManifestEntry{Path: served, Digest: digest, Size: info.Size()}
	}
	if err := WriteManifest(root, next); err != nil {
		return nil, err
	}
	log.Info().Int("assets", len(entries)).Int("renamed", renamed).Msg("Asset pipeline complete")
	return NewRegistry(prefix, entries), nil
}

// Preview builds the registry a Run over the root would produce without
// renaming anything or touching the manifest. Already-fingerprinted files
// map back through the manifest as in Run; everything else maps to the name
// it would be renamed to.
func Preview(root, prefix string) (*Registry, error) {
	files, err := Scan(root)
	if err != nil {
		return nil, err
	}
	previous, err := ReadManifest(root)
	if err != nil {
		return nil, err
	}
	wasServed := previous.originalsByServed()

	entries := make(map[string]string, len(files))
	for _, rel := range files {
		if IsFingerprinted(rel) {
			orig, ok := wasServed[rel]
			if !ok {
				orig = RemoveFingerprint(rel)
			}
			entries[orig] = rel
			continue
		}
		info, err := os.Stat(filepath.Join(root, rel))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", rel, err)
		}
		digest, err := digestFor(root, rel, info)
		if err != nil {
			return nil, err
		}
		entries[rel] = AddFingerprint(rel, digest)
	}
	return NewRegistry(prefix, entries), nil
}

// Passthrough scans the root without touching it and serves every file under
// its on-disk name. Files already carrying a digest token map back to their
// original path as in Run, so a fingerprinted root resolves the same module
// specifiers in development as a clean one. Development runs this instead of
// Run and the watcher only needs to re-scan on change.
func Passthrough(root, prefix string) (*Registry, error) {
	files, err := Scan(root)
	if err != nil {
		return nil, err
	}
	previous, err := ReadManifest(root)
	if err != nil {
		return nil, err
	}
	wasServed := previous.originalsByServed()

	entries := make(map[string]string, len(files))
	for _, rel := range files {
		if IsFingerprinted(rel) {
			orig, ok := wasServed[rel]
			if !ok {
				orig = RemoveFingerprint(rel)
			}
			entries[orig] = rel
			continue
		}
		entries[rel] = rel
	}
	return NewRegistry(prefix, entries), nil
}

func digestFor(root, rel string, info os.FileInfo) (string, error) {
	if digest, ok := cache.Digest(rel, info.Size(), info.ModTime()); ok {
		return digest, nil
	}
	digest, err := ComputeFingerprint(filepath.Join(root, rel))
	if err != nil {
		return "", err
	}
	cache.PutDigest(rel, info.Size(), info.ModTime(), digest)
	return digest, nil
}
