package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/secrets/internal/api"
	"github.com/mcoot/secrets/internal/api/apierr"
	"github.com/mcoot/secrets/internal/api/response"
	"github.com/mcoot/secrets/internal/dependencies/mocks"
	"github.com/mcoot/secrets/internal/factory"
	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/services/secrets"
	"github.com/mcoot/secrets/internal/services/session"
	"github.com/mcoot/secrets/internal/storage"
	"github.com/mcoot/secrets/internal/storage/memory"
	"github.com/mcoot/secrets/internal/testutil"
	"github.com/mcoot/secrets/internal/web"
)

// testServer serves the API next to the web routes, as the server binary does
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
	cookies []*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testutil.NopLogger()
	app := factory.NewTestApp()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Sessions:       app.Sessions,
		SecretsService: app.SecretsService,
	})
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		StateSigner:    app.StateSigner,
		Sessions:       app.Sessions,
		SecretsService: app.SecretsService,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	return &testServer{handler: mux, app: app}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range ts.cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// signIn registers an account through the web form and keeps its session cookie
func (ts *testServer) signIn(t *testing.T, username string) {
	t.Helper()

	form := url.Values{"username": {username}, "password": {"secret123"}}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	ts.cookies = rr.Result().Cookies()
	require.NotEmpty(t, ts.cookies)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[response.Health](t, rr).Status)
}

func TestListSecretsEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/secrets", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	resp := decode[response.SecretList](t, rr)
	assert.NotNil(t, resp.Secrets)
	assert.Empty(t, resp.Secrets)
	assert.Equal(t, 0, resp.Count)
	assert.Contains(t, rr.Body.String(), `"secrets":[]`)
}

func TestSubmitAndListSecret(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t, "alice@example.com")

	rr := ts.request(http.MethodPut, "/api/v1/me/secret", map[string]string{"secret": "I hum while I code"})
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[response.Account](t, rr)
	assert.True(t, me.HasSecret)

	// Listed for anonymous callers too
	ts.cookies = nil
	rr = ts.request(http.MethodGet, "/api/v1/secrets", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[response.SecretList](t, rr)
	assert.Equal(t, []string{"I hum while I code"}, resp.Secrets)
	assert.Equal(t, 1, resp.Count)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t, "alice@example.com")

	rr := ts.request(http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	me := decode[response.Account](t, rr)
	assert.Equal(t, "alice@example.com", me.Username)
	assert.Equal(t, string(model.ProviderLocal), me.Provider)
	assert.False(t, me.HasSecret)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestUnauthorizedWithoutSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, decode[apierr.ErrorResponse](t, rr).Error.Code)

	rr = ts.request(http.MethodPut, "/api/v1/me/secret", map[string]string{"secret": "x"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSubmitEmptySecret(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t, "alice@example.com")

	rr := ts.request(http.MethodPut, "/api/v1/me/secret", map[string]string{"secret": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeEmptySecret, decode[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestSubmitOversizedSecret(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t, "alice@example.com")

	rr := ts.request(http.MethodPut, "/api/v1/me/secret", map[string]string{"secret": strings.Repeat("a", secrets.MaxSecretLength+1)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeSecretTooLong, decode[apierr.ErrorResponse](t, rr).Error.Code)

	rr = ts.request(http.MethodPut, "/api/v1/me/secret", map[string]string{"secret": strings.Repeat("a", 100<<10)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, apierr.CodeRequestTooLarge, decode[apierr.ErrorResponse](t, rr).Error.Code)

	rr = ts.request(http.MethodGet, "/api/v1/me", nil)
	assert.False(t, decode[response.Account](t, rr).HasSecret)
}

func TestSubmitInvalidBody(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t, "alice@example.com")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/me/secret", strings.NewReader("{not json"))
	for _, c := range ts.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decode[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestUnknownAPIRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decode[apierr.ErrorResponse](t, rr).Error.Code)
}

// unavailableStorage fails every listing as if the backend were down
type unavailableStorage struct {
	*memory.Storage
}

func (s unavailableStorage) ListAccountsWithSecret(context.Context) ([]*model.Account, error) {
	return nil, storage.Unavailable("list accounts", errors.New("connection refused"))
}

func TestListSecretsStorageUnavailable(t *testing.T) {
	store := unavailableStorage{Storage: memory.New()}
	logger, logs := testutil.CaptureLogger()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Sessions:       session.New(memstore.New(), session.DefaultConfig(), store, logger),
		SecretsService: secrets.New(store, clk, logger),
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/secrets", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, apierr.CodeStorageUnavailable, decode[apierr.ErrorResponse](t, rr).Error.Code)

	entry := logs.Find("failed to list secrets")
	require.NotNil(t, entry)
	assert.Equal(t, rr.Header().Get("X-Request-ID"), entry["request_id"])
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestRequestIDOnErrorResponses(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t, "alice@example.com")

	rr := ts.request(http.MethodPut, "/api/v1/me/secret", map[string]string{"secret": ""})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestJSONResponsesAreNotCached(t *testing.T) {
	ts := newTestServer(t)
	ts.signIn(t, "alice@example.com")

	rr := ts.request(http.MethodPut, "/api/v1/me/secret", map[string]string{"secret": "<b>tea & toast</b>"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = ts.request(http.MethodGet, "/api/v1/secrets", nil)
	assert.Contains(t, rr.Body.String(), `"<b>tea & toast</b>"`)
}
