package model

import "time"

// AccountID uniquely identifies an account
type AccountID string

// Provider identifies how an account authenticates
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// Account is the single persisted entity: a login identity plus an optional secret
type Account struct {
	ID           AccountID `json:"id"`
	Username     string    `json:"username,omitempty"`      // local accounts only
	PasswordHash string    `json:"password_hash,omitempty"` // bcrypt hash
	GoogleID     string    `json:"google_id,omitempty"`
	FacebookID   string    `json:"facebook_id,omitempty"`
	Secret       *string   `json:"secret,omitempty"` // nil until submitted
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasSecret reports whether a secret has ever been submitted
func (a *Account) HasSecret() bool {
	return a.Secret != nil
}

// SecretText returns the secret or the empty string
func (a *Account) SecretText() string {
	if a.Secret == nil {
		return ""
	}
	return *a.Secret
}

// SetSecret overwrites the account's secret
func (a *Account) SetSecret(secret string, now time.Time) {
	a.Secret = &secret
	a.UpdatedAt = now
}

// ExternalIdentity returns the OAuth provider and provider-assigned id the
// account is linked to. Returns ErrNoExternalIdentity for local-only accounts.
func (a *Account) ExternalIdentity() (Provider, string, error) {
	switch {
	case a.GoogleID != "":
		return ProviderGoogle, a.GoogleID, nil
	case a.FacebookID != "":
		return ProviderFacebook, a.FacebookID, nil
	default:
		return "", "", ErrNoExternalIdentity
	}
}

// SetExternalID links the account to a provider id
func (a *Account) SetExternalID(provider Provider, externalID string) error {
	switch provider {
	case ProviderGoogle:
		a.GoogleID = externalID
	case ProviderFacebook:
		a.FacebookID = externalID
	default:
		return ErrUnknownProvider
	}
	return nil
}

// Clone returns a deep copy so stores never share mutable state with callers
func (a *Account) Clone() *Account {
	c := *a
	if a.Secret != nil {
		s := *a.Secret
		c.Secret = &s
	}
	return &c
}
