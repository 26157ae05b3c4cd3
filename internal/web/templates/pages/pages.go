package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/web/templates/layout"
)

// HomeData is the data for the home page
type HomeData struct {
	layout.PageData
}

// LoginData is the data for the login page
type LoginData struct {
	layout.PageData
	// Text is the error message shown above the form
	Text string
	// Providers lists the OAuth providers offered as buttons
	Providers []string
}

// RegisterData is the data for the registration page
type RegisterData struct {
	layout.PageData
	// RegisterEmail is the error message shown above the form
	RegisterEmail string
	Providers     []string
}

// SecretsData is the data for the secrets page
type SecretsData struct {
	layout.PageData
	AllSecrets []*model.Account
}

// SubmitData is the data for the submission page
type SubmitData struct {
	layout.PageData
	// MaxLength is the longest accepted secret; 0 means unlimited
	MaxLength int
}

// ErrorData is the data for the error page
type ErrorData struct {
	layout.PageData
	Status  int
	Message string
}

// Home renders the landing page
func Home(data HomeData) templ.Component {
	return layout.Page(data.PageData, component(func(hw *layout.Writer) {
		hw.Raw(`<section class="jumbotron centered"><h1 class="display-3">Secrets</h1>`)
		hw.Raw(`<p class="lead">Don't keep your secrets, share them anonymously!</p>`)
		if data.Account != nil {
			hw.Raw(`<a class="btn" href="/secrets" role="button">See Secrets</a>`)
			hw.Raw(`<a class="btn" href="/submit" role="button">Submit a Secret</a>`)
		} else {
			hw.Raw(`<a class="btn" href="/register" role="button">Register</a>`)
			hw.Raw(`<a class="btn" href="/login" role="button">Login</a>`)
		}
		hw.Raw(`</section>`)
	}))
}

// Login renders the login form
func Login(data LoginData) templ.Component {
	return layout.Page(data.PageData, component(func(hw *layout.Writer) {
		hw.Raw(`<section class="auth"><h1>Login</h1>`)
		if data.Text != "" {
			hw.Raw(`<p class="error">`)
			hw.Text(data.Text)
			hw.Raw(`</p>`)
		}
		hw.Raw(`<form action="/login" method="POST">`)
		credentialFields(hw)
		hw.Raw(`<button type="submit" class="btn">Login</button></form>`)
		providerButtons(hw, "Sign In", data.Providers)
		hw.Raw(`</section>`)
	}))
}

// Register renders the registration form
func Register(data RegisterData) templ.Component {
	return layout.Page(data.PageData, component(func(hw *layout.Writer) {
		hw.Raw(`<section class="auth"><h1>Register</h1>`)
		if data.RegisterEmail != "" {
			hw.Raw(`<p class="error">`)
			hw.Text(data.RegisterEmail)
			hw.Raw(`</p>`)
		}
		hw.Raw(`<form action="/register" method="POST">`)
		credentialFields(hw)
		hw.Raw(`<button type="submit" class="btn">Register</button></form>`)
		providerButtons(hw, "Sign Up", data.Providers)
		hw.Raw(`</section>`)
	}))
}

// Secrets renders every submitted secret
func Secrets(data SecretsData) templ.Component {
	return layout.Page(data.PageData, component(func(hw *layout.Writer) {
		hw.Raw(`<section class="jumbotron text-center"><h1 class="display-3">You've Discovered My Secret!</h1>`)
		hw.Raw(`<ul class="secrets" data-feed="/secrets/events">`)
		for _, account := range data.AllSecrets {
			writeSecretItem(hw, account.SecretText())
		}
		hw.Raw(`</ul>`)
		if len(data.AllSecrets) == 0 {
			hw.Raw(`<p class="empty">No secrets yet.</p>`)
		}
		hw.Raw(`<hr>`)
		if data.Account != nil {
			hw.Raw(`<a class="btn" href="/logout" role="button">Log Out</a>`)
		}
		hw.Raw(`<a class="btn" href="/submit" role="button">Submit a Secret</a></section>`)
		hw.Raw(`<script src="/static/js/feed.js" defer></script>`)
	}))
}

// SecretItem renders a single secret as it appears in the list
func SecretItem(text string) templ.Component {
	return component(func(hw *layout.Writer) {
		writeSecretItem(hw, text)
	})
}

func writeSecretItem(hw *layout.Writer, text string) {
	hw.Raw(`<li class="secret-text">`)
	hw.Text(text)
	hw.Raw(`</li>`)
}

// Submit renders the secret submission form
func Submit(data SubmitData) templ.Component {
	return layout.Page(data.PageData, component(func(hw *layout.Writer) {
		hw.Raw(`<section class="container"><h1 class="display-3">Secrets</h1>`)
		hw.Raw(`<p class="secret-text">Don't keep your secrets, share them anonymously!</p>`)
		hw.Raw(`<form action="/submit" method="POST">`)
		hw.Raw(`<input type="text" class="form-control" name="secret" placeholder="What's your secret?" required`)
		if data.MaxLength > 0 {
			hw.Raw(` maxlength="` + strconv.Itoa(data.MaxLength) + `"`)
		}
		hw.Raw(`>`)
		hw.Raw(`<button type="submit" class="btn">Submit</button></form></section>`)
	}))
}

// Error renders an error page
func Error(data ErrorData) templ.Component {
	return layout.Page(data.PageData, component(func(hw *layout.Writer) {
		hw.Raw(`<section class="error-page"><h1>`)
		hw.Text(strconv.Itoa(data.Status))
		hw.Raw(`</h1><p class="error">`)
		hw.Text(data.Message)
		hw.Raw(`</p><a href="/">Return to home</a></section>`)
	}))
}

func credentialFields(hw *layout.Writer) {
	hw.Raw(`<label for="username">Email</label><input type="email" id="username" name="username" required>`)
	hw.Raw(`<label for="password">Password</label><input type="password" id="password" name="password" required>`)
}

func providerButtons(hw *layout.Writer, verb string, providers []string) {
	for _, provider := range providers {
		hw.Raw(`<a class="btn btn-social" href="/auth/`)
		hw.Text(provider)
		hw.Raw(`" role="button">`)
		hw.Text(verb + " with " + providerLabel(provider))
		hw.Raw(`</a>`)
	}
}

func providerLabel(provider string) string {
	switch model.Provider(provider) {
	case model.ProviderGoogle:
		return "Google"
	case model.ProviderFacebook:
		return "Facebook"
	default:
		return provider
	}
}

func component(body func(hw *layout.Writer)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := layout.NewWriter(w)
		body(hw)
		return hw.Err()
	})
}
