// Package auth provides a high-level API for persisting and retrieving the platform
// session token from the system keyring.
package auth

import (
	"github.com/zalando/go-keyring"
)

const (
	service = "streamwatch"
	user    = "session-token"
)

// SetToken persists the platform session token to the system keyring.
func SetToken(token string) error {
	return keyring.Set(service, user, token)
}

// GetToken retrieves the platform session token from the system keyring.
func GetToken() (string, error) {
	return keyring.Get(service, user)
}

// DeleteToken removes the platform session token from the system keyring.
func DeleteToken() error {
	return keyring.Delete(service, user)
}
