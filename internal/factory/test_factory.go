package factory

import (
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/secrets/internal/dependencies/mocks"
	"github.com/mcoot/secrets/internal/services/auth"
	"github.com/mcoot/secrets/internal/services/session"
	"github.com/mcoot/secrets/internal/storage/memory"
	"github.com/mcoot/secrets/internal/testutil"
)

// TestStateKey signs OAuth state in test apps
var TestStateKey = []byte("test-state-key-0123456789abcdef")

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Providers are registered with the auth service; point their endpoints at a
// testutil.FakeProvider.
func NewTestApp(providers ...auth.OAuthConfig) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.Config{
		BcryptCost: bcrypt.MinCost,
		Providers:  providers,
	}

	app, err := newWithDependencies(store, memstore.New(), mockClock, mockRandom, TestStateKey, authCfg, session.DefaultConfig(), testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
