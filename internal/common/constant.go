package common

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "auth_token"

// DefaultRole is assigned to every account created through registration.
const DefaultRole = "Customer"
