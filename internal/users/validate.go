package users

import (
	"regexp"
	"strings"

	"github.com/profilekit/profilekit/internal/common"
)

var (
	nameRe    = regexp.MustCompile(`^[A-Za-z\s]+$`)
	emailRe   = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]`)
)

const minPasswordLen = 8

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.Invalid("name", "Name is required")
	}
	if len(name) < 2 || !nameRe.MatchString(name) {
		return common.Invalid("name", "Name can only contain letters and spaces")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return common.Invalid("email", "Invalid email format")
	}
	return nil
}

func validatePassword(field, pw string) error {
	switch {
	case pw == "":
		return common.Invalid(field, "Password is required")
	case strings.Contains(pw, " "):
		return common.Invalid(field, "Password cannot contain spaces")
	case len(pw) < minPasswordLen:
		return common.Invalid(field, "Password must be at least 8 characters")
	case !upperRe.MatchString(pw) || !lowerRe.MatchString(pw) || !digitRe.MatchString(pw) || !specialRe.MatchString(pw):
		return common.Invalid(field, "Password must contain uppercase, lowercase, number, and special character")
	}
	return nil
}

// NormalizeEmail lowercases and trims an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
