package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"
)

// digestLen is the number of hex characters embedded in a fingerprinted
// filename. 64 bits keeps names readable while making an accidental
// collision between two assets on the same site vanishingly unlikely.
const digestLen = 16

var fingerprintPattern = regexp.MustCompile(fmt.Sprintf(`^(.+)-([0-9a-f]{%d})(\.[^.]*)?$`, digestLen))

// IsFingerprinted reports whether the base name of p already carries a
// digest token. This is a shape check on the name only: a stem that
// legitimately ends in a dash followed by sixteen hex characters is
// indistinguishable from a fingerprinted file. The manifest written after
// each run records the real mapping for exactly that reason; the pattern is
// the fallback when no manifest entry covers a file.
func IsFingerprinted(p string) bool {
	return fingerprintPattern.MatchString(path.Base(p))
}

// ComputeFingerprint hashes the content of the named file and returns the
// digest token. Zero-byte files get the digest of empty input, which is as
// stable as any other.
func ComputeFingerprint(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", name, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", name, err)
	}
	return hex.EncodeToString(h.Sum(nil))[:digestLen], nil
}

// AddFingerprint returns p with the digest token spliced in front of the
// final extension: js/app.js becomes js/app-<digest>.js, a file without an
// extension gets the token appended directly. Names that already look
// fingerprinted come back unchanged, so repeated runs against the same tree
// never stack tokens.
func AddFingerprint(p, digest string) string {
	if IsFingerprinted(p) {
		return p
	}
	dir, base := path.Split(p)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem, ext = base, ""
	}
	return dir + stem + "-" + digest + ext
}

// RemoveFingerprint strips the digest token from a fingerprinted name,
// recovering the original path. Names without a token come back unchanged.
func RemoveFingerprint(p string) string {
	dir, base := path.Split(p)
	m := fingerprintPattern.FindStringSubmatch(base)
	if m == nil {
		return p
	}
	return dir + m[1] + m[3]
}

// Fingerprint returns the digest token embedded in p's name, or "" when the
// name carries none.
func Fingerprint(p string) string {
	m := fingerprintPattern.FindStringSubmatch(path.Base(p))
	if m == nil {
		return ""
	}
	return m[2]
}
