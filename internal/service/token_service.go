package service

import (
	"errors"
	"fmt"
	"time"

	"vending-machine-api/internal/core/domain"
	"vending-machine-api/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

// vendClaims are the claims carried by access and refresh tokens.
type vendClaims struct {
	Scope domain.TokenScope `json:"scope"`
	jwt.RegisteredClaims
}

// JWTTokenService implements ports.TokenService using HS256 JWT.
// Both scopes share one secret and are told apart by the scope claim.
type JWTTokenService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuer        string
	now           func() time.Time
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string, accessExpiry, refreshExpiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		issuer:        issuer,
		now:           time.Now,
	}
}

// Issue creates a signed token for username with the given scope.
func (s *JWTTokenService) Issue(username string, scope domain.TokenScope) (string, time.Time, error) {
	var expiry time.Duration
	switch scope {
	case domain.ScopeAccess:
		expiry = s.accessExpiry
	case domain.ScopeRefresh:
		expiry = s.refreshExpiry
	default:
		return "", time.Time{}, fmt.Errorf("unknown token scope %q", scope)
	}

	now := s.now()
	expiresAt := now.Add(expiry)

	claims := vendClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate parses tokenString and checks signature, expiry, subject and scope.
func (s *JWTTokenService) Validate(tokenString string, scope domain.TokenScope) (*ports.TokenClaims, error) {
	claims := &vendClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if claims.Subject == "" {
		return nil, errors.New("missing subject claim")
	}
	if claims.Scope != scope {
		return nil, fmt.Errorf("token scope %q, want %q", claims.Scope, scope)
	}

	out := &ports.TokenClaims{
		Subject: claims.Subject,
		Scope:   claims.Scope,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
