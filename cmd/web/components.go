package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"assetmap/internal/assets"
	"assetmap/internal/importmap"
)

const reloadScript = `<script>(() => {
	const scheme = location.protocol === "https:" ? "wss://" : "ws://";
	const ws = new WebSocket(scheme + location.host + "/_reload");
	ws.onmessage = () => location.reload();
})();</script>`

func badge(extra string) string {
	return twmerge.Merge("inline-block rounded px-2 py-0.5 text-xs font-semibold", extra)
}

// Index renders the asset overview page. The import map and its preload
// links go in the head before the entry module, so `import "app"` resolves
// against whatever names the current pipeline run produced.
func Index(reg *assets.Registry, m *importmap.Map, dev bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>assetmap</title>`)
		if err := importmap.Component(m).Render(ctx, &b); err != nil {
			return err
		}
		fmt.Fprintf(&b, `<link rel="stylesheet" href="%s">`, templ.EscapeString(reg.Resolve("css/app.css")))
		b.WriteString(`<script type="module">import "app";</script>`)
		if dev {
			b.WriteString(reloadScript)
		}
		b.WriteString(`</head><body class="min-h-screen bg-zinc-950 font-mono text-zinc-100"><main class="mx-auto max-w-3xl p-8">`)
		b.WriteString(`<h1 class="text-2xl font-bold">assetmap</h1>`)

		mode, label := badge("bg-emerald-900 text-emerald-200"), "production"
		if dev {
			mode, label = badge("bg-amber-900 text-amber-200"), "development"
		}
		fmt.Fprintf(&b, `<p class="mt-2"><span class="%s">%s</span> %d assets, %d modules</p>`,
			mode, label, reg.Len(), len(m.Entries()))

		b.WriteString(`<table class="mt-6 w-full text-left text-sm"><thead><tr class="border-b border-zinc-700"><th class="py-2">asset</th><th class="py-2">served as</th></tr></thead><tbody>`)
		for _, orig := range reg.Originals() {
			fmt.Fprintf(&b, `<tr class="border-b border-zinc-800"><td class="py-1 pr-4">%s</td><td class="py-1 text-zinc-400">%s</td></tr>`,
				templ.EscapeString(orig), templ.EscapeString(reg.Resolve(orig)))
		}
		b.WriteString(`</tbody></table>`)

		b.WriteString(`<div data-counter class="mt-6"></div>`)
		b.WriteString(`</main></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
