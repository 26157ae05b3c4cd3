package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/secrets/internal/dependencies/clock"
	"github.com/mcoot/secrets/internal/dependencies/random"
	"github.com/mcoot/secrets/internal/model"
)

const (
	stateIssuer      = "secrets"
	nonceLength      = 32
	nonceAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	defaultStateTTL  = 10 * time.Minute
	minStateKeyBytes = 16
)

// StateSigner issues and verifies the OAuth2 "state" parameter.
//
// The state is an HS256 JWT naming the provider and carrying a random nonce.
// The nonce is also handed to the browser in a cookie, so a callback is only
// accepted from the browser that started the flow.
type StateSigner struct {
	key    []byte
	ttl    time.Duration
	clock  clock.Clock
	random random.Random
}

// NewStateSigner creates a StateSigner. ttl <= 0 uses the default of ten minutes.
func NewStateSigner(key []byte, ttl time.Duration, clock clock.Clock, random random.Random) (*StateSigner, error) {
	if len(key) < minStateKeyBytes {
		return nil, fmt.Errorf("state signing key must be at least %d bytes", minStateKeyBytes)
	}
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &StateSigner{
		key:    key,
		ttl:    ttl,
		clock:  clock,
		random: random,
	}, nil
}

// TTL returns how long an issued state stays valid
func (s *StateSigner) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed state for provider and the nonce it embeds
func (s *StateSigner) Issue(provider model.Provider) (state, nonce string, err error) {
	nonce = s.random.String(nonceLength, nonceAlphabet)
	if nonce == "" {
		return "", "", errors.New("failed to generate state nonce")
	}

	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    stateIssuer,
		Subject:   string(provider),
		ID:        nonce,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	state, err = token.SignedString(s.key)
	if err != nil {
		return "", "", err
	}
	return state, nonce, nil
}

// Verify checks the signature, expiry and provider of state and that it
// embeds nonce
func (s *StateSigner) Verify(state string, provider model.Provider, nonce string) error {
	if state == "" || nonce == "" {
		return ErrInvalidState
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(state, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithIssuer(stateIssuer),
		jwt.WithSubject(string(provider)),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	if subtle.ConstantTimeCompare([]byte(claims.ID), []byte(nonce)) != 1 {
		return fmt.Errorf("%w: nonce mismatch", ErrInvalidState)
	}
	return nil
}
