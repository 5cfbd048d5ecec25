package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

func Render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	RenderStatus(w, r, http.StatusOK, c)
}

func RenderStatus(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := c.Render(r.Context(), w)
	if err != nil {
		slog.Error("render failed", "error", err, "path", r.URL.Path)
	}
}

// htmlWriter keeps the first write error so components can write a page
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// trusted is page markup written in this package. Only constants convert
// to it implicitly, so request data cannot end up in a format.
type trusted string

// printf formats into the page. String and Stringer arguments are escaped,
// the format is not.
func (hw *htmlWriter) printf(format trusted, args ...any) {
	escaped := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			a = templ.EscapeString(v)
		case fmt.Stringer:
			a = templ.EscapeString(v.String())
		}
		escaped[i] = a
	}
	hw.raw(fmt.Sprintf(string(format), escaped...))
}

func (hw *htmlWriter) component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}
