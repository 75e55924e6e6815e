// Package templates holds the HTML views as templ components.
//
// The .templ files are the view sources. The matching *_templ.go files
// implement the same components on templ.ComponentFunc, escaping every
// dynamic value with templ.EscapeString and passing URLs through templ.URL;
// `templ generate` replaces them with generated code of the same API.
package templates

import (
	"io"

	"github.com/a-h/templ"
)

// htmlWriter stops writing after the first error and remembers it.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *htmlWriter) href(u string) {
	h.attr("href", string(templ.URL(u)))
}
