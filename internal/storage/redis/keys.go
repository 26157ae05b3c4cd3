package redis

import (
	"fmt"

	"github.com/mcoot/secrets/internal/model"
)

// Key prefix for all application data
const keyPrefix = "secrets"

// accountKey returns the Redis key for an Account document
func accountKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> account_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// providerIndexKey returns the Redis key for the provider id -> account_id index
func providerIndexKey(provider model.Provider, externalID string) string {
	return fmt.Sprintf("%s:idx:%s:%s", keyPrefix, provider, externalID)
}

// withSecretIndexKey returns the Redis key for the SET of accounts holding a secret
func withSecretIndexKey() string {
	return fmt.Sprintf("%s:idx:with_secret", keyPrefix)
}
