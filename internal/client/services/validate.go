package services

import (
	"regexp"
	"sort"
	"strings"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidationError carries per-field messages for a form rejected before
// any request was sent.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func ValidateRegistration(name, email string, password []byte) error {
	fields := map[string]string{}

	// a name of only spaces counts as missing
	if strings.TrimSpace(name) == "" {
		fields["name"] = "Full Name is required"
	}
	switch {
	case email == "":
		fields["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		fields["email"] = "Email is invalid"
	}
	switch {
	case len(password) == 0:
		fields["password"] = "Password is required"
	case len([]rune(string(password))) < MinPasswordLength:
		fields["password"] = "Password must be at least 6 characters"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func ValidateLogin(email string, password []byte) error {
	fields := map[string]string{}
	if email == "" {
		fields["email"] = "Email is required"
	}
	if len(password) == 0 {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

var strengthLabels = []string{"None", "Weak", "Fair", "Good", "Strong", "Excellent"}

// PasswordStrength scores p from 0 to 5: one point each for more than 6
// characters, more than 10 characters, an upper-case letter, a digit and a
// symbol.
func PasswordStrength(p []byte) (int, string) {
	s := string(p)
	score := 0

	n := len([]rune(s))
	if n > 6 {
		score++
	}
	if n > 10 {
		score++
	}

	var upper, digit, other bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
		default:
			other = true
		}
	}
	for _, ok := range []bool{upper, digit, other} {
		if ok {
			score++
		}
	}
	return score, strengthLabels[score]
}
