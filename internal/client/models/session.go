// Package models defines the client-side data carried between the API,
// the local credential store and the command surface.
package models

import "time"

// Session is the persisted login state.
//
// Token presence alone decides whether the user is authenticated. Name and
// Email are display data and are never consulted for access decisions.
type Session struct {
	Token     string
	Name      string
	Email     string
	UpdatedAt time.Time
}

// Authenticated reports whether a bearer token is held.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Profile is the current user as returned by GET /me.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
