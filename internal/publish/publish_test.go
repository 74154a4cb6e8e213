package publish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetmap/config"
)

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"js/app-0123456789abcdef.js": "text/javascript",
		"js/app.mjs":                 "text/javascript",
		"css/site.css":               "text/css",
		"img/logo.svg":               "image/svg+xml",
		"fonts/inter.woff2":          "font/woff2",
		"data/feed.json":             "application/json",
		"bin/blob":                   "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, ContentType(name), name)
	}
}

func TestCacheControl(t *testing.T) {
	assert.Equal(t, "public, max-age=31536000, immutable", CacheControl(true))
	assert.Equal(t, "public, no-cache", CacheControl(false))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(config.BucketConfig{})
	assert.Error(t, err)

	_, err = New(config.BucketConfig{Endpoint: "minio.local:9000"})
	assert.Error(t, err)

	u, err := New(config.BucketConfig{
		Endpoint:  "minio.local:9000",
		Name:      "static",
		AccessKey: "access",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.NotNil(t, u)
}
