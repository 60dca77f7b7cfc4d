package common

// AuthorizationHeaderName carries the session token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the optional scheme prefix in front of the session token.
const BearerPrefix = "Bearer "

// IdentityContextKey is the request-scoped key under which the authenticated
// identity (email) is stored by the HTTP auth middleware.
const IdentityContextKey = "identity"
