package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
	"github.com/storefront/gateway/internal/pkg/metrics"
)

const DefaultTokenTTL = 60 * time.Minute

// tokenClaims is the wire form of domain.Claims.
type tokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 identity tokens. Tokens are
// stateless; the optional denylist only records early revocations.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	denylist ports.TokenDenylist
	now      func() time.Time
	log      zerolog.Logger
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithDenylist enables revocation checks.
func WithDenylist(d ports.TokenDenylist) TokenOption {
	return func(s *TokenService) { s.denylist = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret string, ttl time.Duration, log zerolog.Logger, opts ...TokenOption) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for user valid for the configured TTL.
func (s *TokenService) Issue(user *domain.User) (string, domain.Claims, error) {
	now := s.now().UTC().Truncate(time.Second)
	claims := domain.Claims{
		SubjectID: user.ID,
		Username:  user.Username,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
		TokenID:   uuid.NewString(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: claims.Username,
		Role:     claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.SubjectID,
			ID:        claims.TokenID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", domain.Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, algorithm, expiry and revocation. Callers only
// ever see domain.ErrInvalidToken; the precise reason is logged.
func (s *TokenService) Verify(ctx context.Context, raw string) (domain.Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(raw, &tc, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Claims{}, s.reject(verifyFailureReason(err), err)
	}
	if tc.Subject == "" || !domain.ValidRole(tc.Role) {
		return domain.Claims{}, s.reject("claims", errors.New("missing subject or unknown role"))
	}

	claims := domain.Claims{
		SubjectID: tc.Subject,
		Username:  tc.Username,
		Role:      tc.Role,
		TokenID:   tc.ID,
		ExpiresAt: tc.ExpiresAt.Time.UTC(),
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time.UTC()
	}

	if s.denylist != nil && claims.TokenID != "" {
		denied, err := s.denylist.IsDenied(ctx, claims.TokenID)
		if err != nil {
			// Fail open: a denylist outage does not reject valid tokens.
			s.log.Warn().Err(err).Str("jti", claims.TokenID).Msg("denylist check failed")
		} else if denied {
			return domain.Claims{}, s.reject("revoked", nil)
		}
	}

	return claims, nil
}

// Revoke denylists the token until its natural expiry.
func (s *TokenService) Revoke(ctx context.Context, claims domain.Claims) error {
	if s.denylist == nil || claims.TokenID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Deny(ctx, claims.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenService) reject(reason string, cause error) error {
	metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	ev := s.log.Info().Str("reason", reason)
	if cause != nil {
		ev = ev.Err(cause)
	}
	ev.Msg("token rejected")
	return domain.ErrInvalidToken
}

func verifyFailureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return "not_yet_valid"
	default:
		return "invalid"
	}
}
