package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
)

type tokenSigner interface {
	ports.TokenIssuer
	ports.TokenRevoker
}

// AuthService implements registration, login and basic-auth checks.
type AuthService struct {
	repo   ports.AuthRepository
	tokens tokenSigner
	log    zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, tokens tokenSigner, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email must be a valid email", domain.ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: role must be one of: user admin", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return created, nil
}

// Login exchanges a username/password for a token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	user, err := s.checkPassword(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{Token: token, Claims: claims, User: user}, nil
}

// Logout revokes the token the claims were read from.
func (s *AuthService) Logout(ctx context.Context, claims domain.Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return err
	}
	s.log.Info().Str("user_id", claims.SubjectID).Msg("user logged out")
	return nil
}

// AuthenticateBasic resolves a basic-auth pair to claims with no token id.
func (s *AuthService) AuthenticateBasic(ctx context.Context, username, password string) (domain.Claims, error) {
	user, err := s.checkPassword(ctx, username, password)
	if err != nil {
		return domain.Claims{}, err
	}
	return domain.Claims{
		SubjectID: user.ID,
		Username:  user.Username,
		Role:      user.Role,
		IssuedAt:  time.Now().UTC(),
	}, nil
}

func (s *AuthService) checkPassword(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Info().Str("reason", "unknown_user").Msg("login rejected")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Info().Str("reason", "bad_password").Str("user_id", user.ID).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
