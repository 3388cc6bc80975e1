// internal/domain/models/authmethods.go
package models

import "strings"

// Supported values for User.AuthMethod.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

// IsValidAuthMethod checks if a value is a supported auth method.
func IsValidAuthMethod(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case AuthMethodPassword, AuthMethodGoogle:
		return true
	}
	return false
}
