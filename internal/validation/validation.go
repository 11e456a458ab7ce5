package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidationResult is the outcome of a single field check.
// ErrorMessage is empty exactly when IsValid is true.
type ValidationResult struct {
	IsValid      bool
	ErrorMessage string
}

func valid() ValidationResult {
	return ValidationResult{IsValid: true}
}

func invalid(message string) ValidationResult {
	return ValidationResult{ErrorMessage: message}
}

var (
	// EmailPattern is the single source of truth for email shape across
	// the app; the session coordinator reuses it instead of keeping its
	// own copy.
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{1,14}$`)
	digitsOnly   = regexp.MustCompile(`^[0-9]{6}$`)
)

// ValidateEmail trims the input and checks it against EmailPattern.
func ValidateEmail(email string) ValidationResult {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return invalid("Email is required")
	}
	if !EmailPattern.MatchString(trimmed) {
		return invalid("Please enter a valid email address")
	}
	return valid()
}

// ValidatePassword requires a non-empty password of at least 6
// characters. Lengths count characters, not bytes, so a multibyte
// password does not pass early.
func ValidatePassword(password string) ValidationResult {
	if password == "" {
		return invalid("Password is required")
	}
	if utf8.RuneCountInString(password) < 6 {
		return invalid("Password must be at least 6 characters")
	}
	return valid()
}

// ValidatePasswordConfirmation requires the confirmation to match the
// primary password character for character.
func ValidatePasswordConfirmation(password, confirmation string) ValidationResult {
	if confirmation == "" {
		return invalid("Please confirm your password")
	}
	if password != confirmation {
		return invalid("Passwords do not match")
	}
	return valid()
}

// ValidateFullName requires at least 2 characters after trimming.
func ValidateFullName(fullName string) ValidationResult {
	trimmed := strings.TrimSpace(fullName)
	if trimmed == "" {
		return invalid("Full name is required")
	}
	if utf8.RuneCountInString(trimmed) < 2 {
		return invalid("Full name must be at least 2 characters")
	}
	return valid()
}

// ValidatePhoneNumber strips whitespace and dashes, then checks for an
// E.164-shaped number.
func ValidatePhoneNumber(phoneNumber string) ValidationResult {
	if strings.TrimSpace(phoneNumber) == "" {
		return invalid("Phone number is required")
	}

	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, phoneNumber)

	if !phonePattern.MatchString(clean) {
		return invalid("Please enter a valid phone number")
	}
	return valid()
}

// ValidateVerificationCode requires exactly 6 decimal digits after trimming.
func ValidateVerificationCode(code string) ValidationResult {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return invalid("Verification code is required")
	}
	if len(trimmed) != 6 {
		return invalid("Verification code must be 6 digits")
	}
	if !digitsOnly.MatchString(trimmed) {
		return invalid("Verification code must contain only numbers")
	}
	return valid()
}

// PasswordStrength is a coarse 4-level score shown next to the password
// field during sign-up.
type PasswordStrength int

const (
	StrengthNone PasswordStrength = iota
	StrengthWeak
	StrengthMedium
	StrengthStrong
)

func (s PasswordStrength) String() string {
	switch s {
	case StrengthWeak:
		return "WEAK"
	case StrengthMedium:
		return "MEDIUM"
	case StrengthStrong:
		return "STRONG"
	default:
		return "NONE"
	}
}

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// GetPasswordStrength scores a password on six boolean features:
// length >= 8, length >= 12, lowercase, uppercase, digit, special char.
// Score <= 2 is weak, 3-4 medium, 5+ strong; the empty password has no
// strength at all.
func GetPasswordStrength(password string) PasswordStrength {
	if password == "" {
		return StrengthNone
	}

	score := 0
	length := utf8.RuneCountInString(password)
	if length >= 8 {
		score++
	}
	if length >= 12 {
		score++
	}
	if strings.ContainsFunc(password, unicode.IsLower) {
		score++
	}
	if strings.ContainsFunc(password, unicode.IsUpper) {
		score++
	}
	if strings.ContainsFunc(password, unicode.IsDigit) {
		score++
	}
	if strings.ContainsAny(password, specialChars) {
		score++
	}

	switch {
	case score <= 2:
		return StrengthWeak
	case score <= 4:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}
