package domain

import "time"

// TokenScope distinguishes access tokens from refresh tokens.
type TokenScope string

const (
	ScopeAccess  TokenScope = "access"
	ScopeRefresh TokenScope = "refresh"
)

// TokenPair is issued on a successful login.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
