package importmap

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Component renders the artifact into a component tree: the resolution map
// in a single <script type="importmap">, then one modulepreload link per
// resolved path, in artifact order. The JSON document is embedded as-is;
// its strings are HTML-escaped at encode time.
func Component(m *Map) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<script type="importmap">`); err != nil {
			return err
		}
		if _, err := w.Write(m.JSON()); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</script>\n"); err != nil {
			return err
		}
		for _, p := range m.Preloads() {
			if _, err := io.WriteString(w, `<link rel="modulepreload" href="`+templ.EscapeString(p)+"\">\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// HTML renders the same declarations as a raw string, for callers that
// assemble pages outside the component tree.
func HTML(m *Map) string {
	var b strings.Builder
	b.WriteString(`<script type="importmap">`)
	b.Write(m.JSON())
	b.WriteString("</script>\n")
	for _, p := range m.Preloads() {
		b.WriteString(`<link rel="modulepreload" href="`)
		b.WriteString(html.EscapeString(p))
		b.WriteString("\">\n")
	}
	return b.String()
}
