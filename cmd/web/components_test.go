package web

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetmap/internal/assets"
	"assetmap/internal/importmap"
)

func TestIndex(t *testing.T) {
	reg := assets.NewRegistry("/", map[string]string{
		"js/app.js":   "js/app-0123456789abcdef.js",
		"css/app.css": "css/app-fedcba9876543210.css",
	})
	m, err := importmap.Build(reg, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Index(reg, m, false).Render(context.Background(), &buf))
	out := buf.String()

	assert.Contains(t, out, `<script type="importmap">`)
	assert.Contains(t, out, `href="/css/app-fedcba9876543210.css"`)
	assert.Contains(t, out, "data-counter")
	assert.NotContains(t, out, "_reload")

	buf.Reset()
	require.NoError(t, Index(reg, m, true).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "_reload")
}
