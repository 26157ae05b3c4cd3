package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/secrets/internal/model"
)

// PageData holds data common to every page
type PageData struct {
	Title string
	// Account is the signed-in account, nil when anonymous
	Account *model.Account
	// Flash is a one-off notice carried over a redirect
	Flash string
}

// Page wraps body in the document shell and navigation
func Page(data PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)

		hw.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.Raw(`<title>`)
		if data.Title != "" {
			hw.Text(data.Title)
			hw.Raw(` | `)
		}
		hw.Raw(`Secrets</title><link rel="stylesheet" href="/static/css/styles.css"></head><body>`)

		hw.Raw(`<nav><a class="brand" href="/">Secrets</a><a href="/secrets">Secrets</a>`)
		if data.Account != nil {
			hw.Raw(`<a href="/submit">Submit a Secret</a><a href="/logout">Log Out</a>`)
		} else {
			hw.Raw(`<a href="/login">Login</a><a href="/register">Register</a>`)
		}
		hw.Raw(`</nav><main>`)
		if data.Flash != "" {
			hw.Raw(`<p class="flash">`)
			hw.Text(data.Flash)
			hw.Raw(`</p>`)
		}
		if hw.Err() != nil {
			return hw.Err()
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		hw.Raw(`</main><footer><p>Copyright &copy; Secrets</p></footer></body></html>`)
		return hw.Err()
	})
}
