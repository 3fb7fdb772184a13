package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/service"
)

type stubBasic struct {
	users map[string]string
}

func (s *stubBasic) AuthenticateBasic(_ context.Context, username, password string) (domain.Claims, error) {
	if pw, ok := s.users[username]; ok && pw == password {
		return domain.Claims{SubjectID: "u-" + username, Username: username, Role: domain.RoleUser}, nil
	}
	return domain.Claims{}, domain.ErrInvalidCredentials
}

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func runAuth(t *testing.T, header string, basic *stubBasic, tokens *service.TokenService) (*domain.Claims, error) {
	t.Helper()
	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *domain.Claims
	authenticator := Authenticate(tokens, nil)
	if basic != nil {
		authenticator = Authenticate(tokens, basic)
	}
	err := authenticator(func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			t.Fatal("claims not bound")
		}
		seen = &claims
		return c.NoContent(http.StatusOK)
	})(c)
	return seen, err
}

func newTokens() *service.TokenService {
	return service.NewTokenService("secret", time.Hour, zerolog.Nop())
}

func TestAuthenticate_ValidBearer(t *testing.T) {
	tokens := newTokens()
	token, _, err := tokens.Issue(&domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := runAuth(t, "Bearer "+token, nil, tokens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims == nil || claims.SubjectID != "u1" || claims.Username != "alice" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	other := service.NewTokenService("other-secret", time.Hour, zerolog.Nop())
	forged, _, _ := other.Issue(&domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin})

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", domain.ErrUnauthenticated},
		{"unknown scheme", "Token abc", domain.ErrUnauthenticated},
		{"scheme only", "Bearer", domain.ErrUnauthenticated},
		{"garbage token", "Bearer not-a-token", domain.ErrInvalidToken},
		{"wrong secret", "Bearer " + forged, domain.ErrInvalidToken},
		{"basic disabled", basicHeader("alice", "pw"), domain.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := runAuth(t, tt.header, nil, newTokens())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if claims != nil {
				t.Fatal("next handler must not run")
			}
		})
	}
}

func TestAuthenticate_Basic(t *testing.T) {
	basic := &stubBasic{users: map[string]string{"bob": "hunter22"}}

	claims, err := runAuth(t, basicHeader("bob", "hunter22"), basic, newTokens())
	if err != nil || claims == nil || claims.Username != "bob" {
		t.Fatalf("expected bob authenticated, got %v %+v", err, claims)
	}

	claims, err = runAuth(t, basicHeader("bob", "wrong"), basic, newTokens())
	if !errors.Is(err, domain.ErrInvalidCredentials) || claims != nil {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	_, err = runAuth(t, "Basic !!!notbase64", basic, newTokens())
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for bad encoding, got %v", err)
	}
}

func TestAuthenticate_ExpiredTokenIs401(t *testing.T) {
	now := time.Now()
	issuer := service.NewTokenService("secret", time.Minute, zerolog.Nop(),
		service.WithClock(func() time.Time { return now.Add(-2 * time.Hour) }))
	token, _, err := issuer.Issue(&domain.User{ID: "u1", Username: "alice", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Authenticate(newTokens(), nil)(func(c echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
