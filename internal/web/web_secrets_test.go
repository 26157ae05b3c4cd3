package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretsEmpty(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/secrets")

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertNotContainsElement(t, doc, ".secret-text")
	assertContainsElement(t, doc, ".empty")
}

func TestSubmitPageRequiresAuth(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/submit")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestSubmitPostRequiresAuth(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/submit", url.Values{"secret": {"sneaky"}})

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Empty(t, ts.secretTexts())
}

func TestSubmitPage(t *testing.T) {
	ts := newWebTestServer(t)
	ts.register("alice@example.com", "secret123")

	rr := ts.get("/submit")

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "form[action='/submit'][method='POST']")
	assertContainsElement(t, doc, "input[name='secret']")
}

func TestSubmittedSecretVisibleToEveryone(t *testing.T) {
	ts := newWebTestServer(t)
	ts.register("alice@example.com", "secret123")

	ts.submitSecret("I talk to my plants")

	// Visible while signed in
	assert.Equal(t, []string{"I talk to my plants"}, ts.secretTexts())

	// And to anonymous visitors
	ts.logout()
	assert.Equal(t, []string{"I talk to my plants"}, ts.secretTexts())

	// And from a different browser
	other := newWebTestServerSharing(t, ts)
	assert.Equal(t, []string{"I talk to my plants"}, other.secretTexts())
}

func TestSubmitOverwritesSecret(t *testing.T) {
	ts := newWebTestServer(t)
	ts.register("alice@example.com", "secret123")

	ts.submitSecret("first")
	ts.submitSecret("second")

	assert.Equal(t, []string{"second"}, ts.secretTexts())
}

func TestSecretsFromSeveralAccounts(t *testing.T) {
	ts := newWebTestServer(t)

	ts.register("alice@example.com", "secret123")
	ts.submitSecret("alice's secret")
	ts.logout()

	ts.register("bob@example.com", "secret123")
	ts.logout()

	ts.register("carol@example.com", "secret123")
	ts.submitSecret("carol's secret")

	texts := ts.secretTexts()
	assert.ElementsMatch(t, []string{"alice's secret", "carol's secret"}, texts)
}

func TestSubmitBlankSecret(t *testing.T) {
	ts := newWebTestServer(t)
	ts.register("alice@example.com", "secret123")

	rr := ts.post("/submit", url.Values{"secret": {"   "}})

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/submit", rr.Header().Get("Location"))
	assert.Empty(t, ts.secretTexts())
}

func TestSecretIsEscaped(t *testing.T) {
	ts := newWebTestServer(t)
	ts.register("alice@example.com", "secret123")

	ts.submitSecret("<script>alert('hi')</script>")

	rr := ts.get("/secrets")
	body := rr.Body.String()
	assert.NotContains(t, body, "<script>alert")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestLogoutThenSubmitRedirectsToLogin(t *testing.T) {
	ts := newWebTestServer(t)
	ts.register("alice@example.com", "secret123")

	rr := ts.get("/submit")
	require.Equal(t, http.StatusOK, rr.Code)

	ts.logout()

	rr = ts.get("/submit")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestReplayedSessionAfterLogoutIsAnonymous(t *testing.T) {
	ts := newWebTestServer(t)
	ts.register("alice@example.com", "secret123")
	stolen := *ts.cookies.cookies["session"]

	ts.logout()

	// Put the old cookie back, as an attacker replaying it would
	ts.cookies.cookies["session"] = &stolen
	rr := ts.get("/submit")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

// newWebTestServerSharing returns a second browser against the same server
func newWebTestServerSharing(t *testing.T, ts *webTestServer) *webTestServer {
	t.Helper()
	return &webTestServer{
		t:        t,
		handler:  ts.handler,
		app:      ts.app,
		provider: ts.provider,
		cookies:  newCookieJar(),
	}
}
