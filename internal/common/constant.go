// Package common contains shared constants and sentinel errors used across
// SellingCar components.
package common

// UserMetadataKey is the local metadata key holding the logged-in user
// object returned by the login endpoint.
const UserMetadataKey = "user"

// TokenMetadataKey is the local metadata key holding the bearer token
// issued together with the user object (if any).
const TokenMetadataKey = "token"

// SessionIDMetadataKey identifies the local login session.
const SessionIDMetadataKey = "session_id"

// RequestIDHeaderName carries a per-request correlation id on every
// outbound call and is echoed by the development backend.
const RequestIDHeaderName = "X-Request-ID"

// AuthorizationHeaderName carries the bearer token.
const AuthorizationHeaderName = "Authorization"
