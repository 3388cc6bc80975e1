// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordCommon   = errors.New("password is too common")
)

var commonPasswords = map[string]struct{}{
	"123456":   {},
	"1234567":  {},
	"12345678": {},
	"password": {},
	"qwerty":   {},
	"abc123":   {},
	"iloveyou": {},
	"letmein":  {},
	"football": {},
	"welcome":  {},
	"monkey":   {},
	"dragon":   {},
	"111111":   {},
}

// ValidatePassword enforces length bounds and rejects well-known passwords.
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, ok := commonPasswords[strings.ToLower(pw)]; ok {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules is the hint shown next to password inputs.
func PasswordRules() string {
	return fmt.Sprintf("At least %d characters. Avoid common passwords.", MinPasswordLength)
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches the bcrypt hash.
func CheckPassword(pw, hash string) bool {
	if pw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
