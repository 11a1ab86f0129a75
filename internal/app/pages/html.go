package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup and keeps the first write error, so a component body
// reads top to bottom without an error check per line.
type HTML struct {
	w   io.Writer
	err error
}

func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes trusted markup as is.
func (h *HTML) Raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

// Text writes s escaped for element content and quoted attribute values.
func (h *HTML) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// URL writes a sanitized, escaped link target.
func (h *HTML) URL(s string) {
	h.Text(string(templ.URL(s)))
}

func (h *HTML) Component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func (h *HTML) Err() error {
	return h.err
}
