package cli

import (
	"errors"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minCredentialLength = 5

var (
	ErrLoginTooShort    = errors.New("login must be at least 5 characters long")
	ErrEmailFormat      = errors.New("email format is invalid, e.g. test_123@gmail.com")
	ErrPasswordWeak     = errors.New("password must be at least 5 characters and contain lower case, upper case and special characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

func ValidateLogin(login string) error {
	if len([]rune(strings.TrimSpace(login))) < minCredentialLength {
		return ErrLoginTooShort
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrEmailFormat
	}
	return nil
}

const specialChars = `!@#$%^&*(),.?":{}|<>`

// ValidatePassword requires an ASCII lower case letter, an upper case letter
// and one of specialChars.
func ValidatePassword(password []byte) error {
	s := string(password)
	if len([]rune(s)) < minCredentialLength {
		return ErrPasswordWeak
	}
	var lower, upper, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	if !lower || !upper || !special {
		return ErrPasswordWeak
	}
	return nil
}
