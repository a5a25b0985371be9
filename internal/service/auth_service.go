package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"vending-machine-api/internal/core/domain"
	"vending-machine-api/internal/core/ports"
	"vending-machine-api/pkg/apperror"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo ports.UserRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
	}
}

// Authenticate checks username and password.
// Unknown users yield AUTH_002, a wrong password AUTH_001.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound()
	}

	if !s.hashSvc.Verify(password, user.PasswordHash) {
		return nil, apperror.ErrInvalidCredentials()
	}

	return user, nil
}

// Login authenticates and issues an access/refresh token pair.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	access, accessExp, err := s.tokenSvc.Issue(user.Username, domain.ScopeAccess)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("issue access token: %w", err))
	}

	refresh, refreshExp, err := s.tokenSvc.Issue(user.Username, domain.ScopeRefresh)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("issue refresh token: %w", err))
	}

	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	user, err := s.resolve(ctx, refreshToken, domain.ScopeRefresh)
	if err != nil {
		return "", time.Time{}, err
	}

	access, expiry, err := s.tokenSvc.Issue(user.Username, domain.ScopeAccess)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("issue access token: %w", err))
	}

	return access, expiry, nil
}

// CurrentUser resolves the user behind a bearer access token.
func (s *AuthServiceImpl) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	return s.resolve(ctx, accessToken, domain.ScopeAccess)
}

// resolve validates a token of the given scope and loads its subject.
func (s *AuthServiceImpl) resolve(ctx context.Context, token string, scope domain.TokenScope) (*domain.User, error) {
	claims, err := s.tokenSvc.Validate(token, scope)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInvalidToken, apperror.ErrInvalidToken().Message, http.StatusUnauthorized, err)
	}

	user, err := s.userRepo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken()
	}

	return user, nil
}
