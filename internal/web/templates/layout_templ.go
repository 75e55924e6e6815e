package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const stylesheet = `
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2328}
main{max-width:960px;margin:2rem auto;padding:0 1rem}
h1{font-size:1.6rem;margin-bottom:1.5rem}
form.search{display:flex;gap:.75rem;flex-wrap:wrap;align-items:flex-end;background:#fff;padding:1rem;border-radius:8px;border:1px solid #d0d7de}
form.search label{display:flex;flex-direction:column;font-size:.85rem;gap:.25rem}
form.search input{padding:.45rem .6rem;border:1px solid #d0d7de;border-radius:6px;min-width:220px}
button{padding:.5rem 1rem;border:0;border-radius:6px;background:#1f6feb;color:#fff;cursor:pointer}
.alert{margin-top:1rem;padding:.75rem 1rem;border-radius:6px;background:#ffebe9;border:1px solid #ff8182}
.alert .code{font-family:monospace;font-size:.8rem;color:#57606a}
table{width:100%;border-collapse:collapse;margin-top:1rem;background:#fff}
th,td{padding:.4rem .6rem;border-bottom:1px solid #d0d7de;text-align:left;font-size:.9rem}
.download{margin-top:1rem}
.recent{margin-top:2rem}
`

// Page wraps body in the HTML document shell.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw("</title><style>" + stylesheet + "</style></head><body><main>")
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw("</main></body></html>")
		return h.err
	})
}
