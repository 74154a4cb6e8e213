package cache

import (
	"errors"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog/log"

	"assetmap/config"
	"github.com/maypok86/otter/v2"
)

var Digests *otter.Cache[string, Digested]

type Digested struct {
	Digest  string
	Size    int64
	ModTime time.Time
}

func init() {
	Digests = newDigestCache()
}

func newDigestCache() *otter.Cache[string, Digested] {
	return otter.Must(&otter.Options[string, Digested]{
		MaximumSize: 100_000,
	})
}

func Digest(rel string, size int64, modTime time.Time) (string, bool) {
	v, ok := Digests.GetIfPresent(rel)
	if !ok || v.Size != size || !v.ModTime.Equal(modTime) {
		return "", false
	}
	return v.Digest, true
}

func PutDigest(rel string, size int64, modTime time.Time, digest string) {
	Digests.Set(rel, Digested{Digest: digest, Size: size, ModTime: modTime})
}

func LoadCache() {
	digestPath := path.Join(config.CacheStorage(), "digests.gob")
	log.Info().Str("path", digestPath).Msg("Loading digest cache")
	if err := otter.LoadCacheFromFile(Digests, digestPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Error().Err(err).Msg("Load cache failed")
		}
	}
}

func SaveCache() {
	digestPath := path.Join(config.CacheStorage(), "digests.gob")
	log.Info().Str("path", digestPath).Msg("Saving digest cache")
	if err := otter.SaveCacheToFile(Digests, digestPath); err != nil {
		log.Error().Err(err).Msg("Save cache failed")
	}
}
