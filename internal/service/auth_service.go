package service

import (
	"context"
	"fmt"
	"time"

	"recipes/internal/auth"
	"recipes/internal/errors"
	"recipes/internal/model"
	"recipes/internal/repository"
)

// AuthService issues, resolves and revokes bearer tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, hasher auth.PasswordHasher, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		tokenStore: tokenStore,
		now:        time.Now,
	}
}

// Login verifies the credentials and returns a fresh token. Unknown emails,
// wrong passwords and inactive accounts all fail the same way.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, errors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, errors.ErrInvalidCredentials
	}

	token, _, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", nil, fmt.Errorf("record login: %w", err)
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to the active user it was issued to.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, nil, errors.ErrUnauthenticated
	}
	revoked, err := s.tokenStore.IsRevoked(ctx, claims.ID)
	if err != nil || revoked {
		return nil, nil, errors.ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, nil, errors.ErrUnauthenticated
	}
	return user, claims, nil
}

// Logout revokes the token described by claims for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return errors.ErrUnauthenticated
	}
	if err := s.tokenStore.RevokeToken(ctx, claims.ID, s.jwtService.Remaining(claims)); err != nil {
		return fmt.Errorf("logout user %d: %w", claims.UserID, err)
	}
	return nil
}
