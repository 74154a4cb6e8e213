package importmap

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetmap/internal/assets"
)

func TestComponentAndHTMLAgree(t *testing.T) {
	reg := assets.NewRegistry("/", map[string]string{
		"a.js": "a-1111111111111111.js",
		"b.js": "b-2222222222222222.js",
	})
	m, err := Build(reg, []Entry{{Name: "htmx", Path: "https://unpkg.com/htmx.min.js"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Component(m).Render(context.Background(), &buf))
	out := buf.String()

	assert.Equal(t, HTML(m), out)

	assert.Equal(t, 1, strings.Count(out, `<script type="importmap">`))
	assert.Equal(t, 3, strings.Count(out, `<link rel="modulepreload"`))

	// Preload order follows entry order: pin, then derived.
	assert.Less(t, strings.Index(out, "htmx.min.js"), strings.Index(out, "a-1111111111111111.js"))
	assert.Less(t, strings.Index(out, "a-1111111111111111.js"), strings.Index(out, "b-2222222222222222.js"))
}

func TestTagsEscapeHrefs(t *testing.T) {
	m, err := Build(assets.NewRegistry("/", nil), []Entry{
		{Name: "lib", Path: "https://cdn.example/lib.js?a=1&b=2"},
	})
	require.NoError(t, err)

	out := HTML(m)
	assert.Contains(t, out, `href="https://cdn.example/lib.js?a=1&amp;b=2"`)
}
