// Package common contains shared constants and small helpers used across
// the recipe-ai client packages.
package common

// Header names attached to every outbound API request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	UserAgentHeaderName     = "User-Agent"
)

// BearerScheme prefixes the session token in the Authorization header.
const BearerScheme = "Bearer"

// ClientUserAgent identifies this client to the API.
const ClientUserAgent = "recipeai-client"
