package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/secrets/internal/factory"
	"github.com/mcoot/secrets/internal/services/auth"
	"github.com/mcoot/secrets/internal/testutil"
	"github.com/mcoot/secrets/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t        *testing.T
	handler  http.Handler
	app      *factory.TestApp
	provider *testutil.FakeProvider
	cookies  *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired.
// Google and Facebook are both served by one fake provider.
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	provider := testutil.NewFakeProvider(t)
	googleCfg := auth.GoogleConfig("google-client", "google-secret", "http://localhost:3000/auth/google/secrets")
	googleCfg.Endpoint = provider.Endpoint()
	googleCfg.ProfileURL = provider.ProfileURL()
	facebookCfg := auth.FacebookConfig("fb-app", "fb-secret", "http://localhost:3000/auth/facebook/secrets")
	facebookCfg.Endpoint = provider.Endpoint()
	facebookCfg.ProfileURL = provider.ProfileURL()

	app := factory.NewTestApp(googleCfg, facebookCfg)
	t.Cleanup(app.Feed.Close)

	router := web.NewRouter(web.RouterConfig{
		Logger:         testutil.NopLogger(),
		AuthService:    app.AuthService,
		StateSigner:    app.StateSigner,
		Sessions:       app.Sessions,
		SecretsService: app.SecretsService,
		Feed:           app.Feed,
		StaticDir:      "", // No static files in tests
	})

	return &webTestServer{
		t:        t,
		handler:  router,
		app:      app,
		provider: provider,
		cookies:  newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies["session"]
	return ok
}

// Helper functions for common test operations

// register registers a local account through the form and expects success
func (ts *webTestServer) register(username, password string) {
	ts.t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	rr := ts.post("/register", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after registration")
	require.Equal(ts.t, "/secrets", rr.Header().Get("Location"))
	require.True(ts.t, ts.cookies.hasSession(), "Expected session cookie to be set")
}

// login logs in through the form and expects success
func (ts *webTestServer) login(username, password string) {
	ts.t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	rr := ts.post("/login", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after login")
	require.Equal(ts.t, "/secrets", rr.Header().Get("Location"))
}

// submitSecret submits a secret and expects to be sent to /secrets
func (ts *webTestServer) submitSecret(secret string) {
	ts.t.Helper()
	rr := ts.post("/submit", url.Values{"secret": {secret}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after submission")
	require.Equal(ts.t, "/secrets", rr.Header().Get("Location"))
}

// logout logs out and expects to be sent home
func (ts *webTestServer) logout() {
	ts.t.Helper()
	rr := ts.get("/logout")
	require.Equal(ts.t, http.StatusSeeOther, rr.Code)
	require.Equal(ts.t, "/", rr.Header().Get("Location"))
}

// beginOAuth starts the provider flow and returns the state sent to the provider
func (ts *webTestServer) beginOAuth(provider, nonce string) string {
	ts.t.Helper()
	ts.app.MockRandom.QueueString(nonce)

	rr := ts.get("/auth/" + provider)
	require.Equal(ts.t, http.StatusFound, rr.Code, "Expected redirect to provider")

	location, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(ts.t, err)
	state := location.Query().Get("state")
	require.NotEmpty(ts.t, state, "Expected state in provider redirect")
	return state
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// secretTexts returns the secrets listed on /secrets
func (ts *webTestServer) secretTexts() []string {
	ts.t.Helper()
	rr := ts.get("/secrets")
	require.Equal(ts.t, http.StatusOK, rr.Code)

	var texts []string
	parseHTML(rr.Body).Find(".secret-text").Each(func(_ int, sel *goquery.Selection) {
		texts = append(texts, sel.Text())
	})
	return texts
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}
