package common

import "strings"

// WipeByteArray overwrites the contents of b with zeros.
// Used for passwords read from the terminal once they have been sent.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// BearerValue formats a token for the Authorization header.
// An empty token yields an empty value so callers can skip the header.
func BearerValue(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	return BearerScheme + " " + token
}
