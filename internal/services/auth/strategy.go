package auth

import (
	"context"
	"errors"

	"github.com/mcoot/secrets/internal/model"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUnknownStrategy    = errors.New("unknown authentication strategy")
	ErrProviderFailure    = errors.New("identity provider failure")
	ErrInvalidState       = errors.New("invalid oauth state")
)

// Credential carries whatever a strategy needs to identify a user.
// Local login uses Username and Password; OAuth callbacks use Code.
type Credential struct {
	Username string
	Password string
	Code     string
}

// Strategy resolves a credential to an Account or fails
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, cred Credential) (*model.Account, error)
}

// Redirector is implemented by strategies that begin with a redirect to an
// external identity provider
type Redirector interface {
	Strategy
	AuthCodeURL(state string) string
}
