package publish

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"assetmap/config"
	"assetmap/internal/assets"
)

// Uploader copies a fingerprinted asset tree into an S3-compatible bucket.
// Fingerprinted names are immutable, so they are uploaded with a far-future
// cache policy and stale uploads never need invalidating.
type Uploader struct {
	client *minio.Client
	bucket string

	bucketOnce sync.Once
	bucketErr  error
}

func New(cfg config.BucketConfig) (*Uploader, error) {
	if cfg.Endpoint == "" || cfg.Name == "" {
		return nil, errors.New("publish: bucket endpoint and name are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("publish: connect %s: %w", cfg.Endpoint, err)
	}
	return &Uploader{client: client, bucket: cfg.Name}, nil
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	u.bucketOnce.Do(func() {
		exists, err := u.client.BucketExists(ctx, u.bucket)
		if err != nil {
			u.bucketErr = fmt.Errorf("publish: check bucket %s: %w", u.bucket, err)
			return
		}
		if exists {
			return
		}
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			u.bucketErr = fmt.Errorf("publish: create bucket %s: %w", u.bucket, err)
		}
	})
	return u.bucketErr
}

// Sync uploads every asset the registry knows about. Object keys mirror the
// serving paths, so a bucket mounted at the site origin serves the same URLs
// the app emits.
func (u *Uploader) Sync(ctx context.Context, root string, reg *assets.Registry) error {
	if err := u.ensureBucket(ctx); err != nil {
		return err
	}
	for _, orig := range reg.Originals() {
		served, _ := reg.Lookup(orig)
		key := strings.TrimPrefix(reg.Resolve(orig), "/")
		if err := u.put(ctx, root, served, key, CacheControl(reg.Fingerprinted(served))); err != nil {
			return err
		}
	}
	log.Info().Int("assets", reg.Len()).Str("bucket", u.bucket).Msg("Published assets")
	return nil
}

func (u *Uploader) put(ctx context.Context, root, served, key, cacheControl string) error {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(served)))
	if err != nil {
		return fmt.Errorf("publish: open %s: %w", served, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("publish: stat %s: %w", served, err)
	}
	_, err = u.client.PutObject(ctx, u.bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType:  ContentType(served),
		CacheControl: cacheControl,
	})
	if err != nil {
		return fmt.Errorf("publish: upload %s: %w", key, err)
	}
	log.Debug().Str("key", key).Msg("Uploaded asset")
	return nil
}

// ContentType resolves the MIME type for an asset path. The common web types
// are pinned explicitly so uploads don't depend on the host's mime tables.
func ContentType(name string) string {
	switch path.Ext(name) {
	case ".js", ".mjs":
		return "text/javascript"
	case ".css":
		return "text/css"
	case ".json", ".map":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".woff2":
		return "font/woff2"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// CacheControl picks the cache policy for an asset. Content-addressed names
// can be cached forever, everything else must revalidate.
func CacheControl(fingerprinted bool) string {
	if fingerprinted {
		return "public, max-age=31536000, immutable"
	}
	return "public, no-cache"
}
