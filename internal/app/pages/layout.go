package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

// LayoutPage wraps a page's content in the document head and top bar.
func LayoutPage(data models.LayoutTempl) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>`)
		h.Text(data.Title)
		h.Raw(`</title>
  <link rel="stylesheet" href="/static/app.css">
  <script src="/static/app.js" defer></script>
</head>
<body>
<header class="topbar">
  <a class="brand" href="/">Tripboard</a>
`)
		if data.User != nil {
			h.Raw("  <nav>\n")
			for _, item := range data.Nav {
				h.Raw(`    <a href="`)
				h.URL(item.Path)
				h.Raw(`"`)
				if item.Key == data.ActiveNav {
					h.Raw(` class="active"`)
				}
				h.Raw(">")
				h.Text(item.Name)
				h.Raw("</a>\n")
			}
			h.Raw(`    <form method="post" action="/auth/signout" class="inline"><button type="submit">Log out</button></form>
  </nav>
`)
		}
		h.Raw("</header>\n<main>\n")
		h.Component(ctx, data.Content)
		h.Raw("\n</main>\n</body>\n</html>\n")
		return h.Err()
	})
}
