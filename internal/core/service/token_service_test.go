package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storefront/gateway/internal/core/domain"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestTokenService(clock *fakeClock, opts ...TokenOption) *TokenService {
	opts = append([]TokenOption{WithClock(clock.Now)}, opts...)
	return NewTokenService("secret", time.Hour, discardLogger, opts...)
}

var testUser = &domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin}

func TestTokenService_IssueVerify_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestTokenService(clock)

	token, issued, err := svc.Issue(testUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.TokenID == "" {
		t.Fatal("expected a token id")
	}
	if !issued.ExpiresAt.Equal(clock.now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", issued.ExpiresAt)
	}

	clock.now = clock.now.Add(59 * time.Minute)
	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.SubjectID != "u1" || claims.Username != "alice" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenID != issued.TokenID {
		t.Fatalf("token id mismatch: %q vs %q", claims.TokenID, issued.TokenID)
	}
}

func TestTokenService_Verify_Expired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestTokenService(clock)

	token, _, err := svc.Issue(testUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock.now = clock.now.Add(61 * time.Minute)
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_Verify_Rejects(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestTokenService(clock)
	other := NewTokenService("other-secret", time.Hour, discardLogger, WithClock(clock.Now))

	foreign, _, _ := other.Issue(testUser)
	valid, _, _ := svc.Issue(testUser)
	tampered := valid[:strings.LastIndex(valid, ".")+1] + "AAAA"

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  "u1",
		"role": domain.RoleAdmin,
		"exp":  clock.now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": domain.RoleAdmin,
	}).SignedString([]byte("secret"))

	badRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": "root",
		"exp":  clock.now.Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))

	cases := map[string]string{
		"malformed":      "not-a-token",
		"wrong secret":   foreign,
		"tampered":       tampered,
		"alg none":       noneToken,
		"missing expiry": noExp,
		"unknown role":   badRole,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenService_Revoke(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	deny := newStubDenylist()
	svc := newTestTokenService(clock, WithDenylist(deny))

	token, claims, _ := svc.Issue(testUser)

	clock.now = clock.now.Add(20 * time.Minute)
	if err := svc.Revoke(context.Background(), claims); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ttl := deny.denied[claims.TokenID]; ttl != 40*time.Minute {
		t.Fatalf("expected denylist ttl of remaining lifetime, got %v", ttl)
	}
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("revoked token must not verify, got %v", err)
	}
}

func TestTokenService_Verify_DenylistOutageFailsOpen(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	deny := newStubDenylist()
	deny.err = errors.New("redis down")
	svc := newTestTokenService(clock, WithDenylist(deny))

	token, _, _ := svc.Issue(testUser)
	if _, err := svc.Verify(context.Background(), token); err != nil {
		t.Fatalf("expected token to verify when denylist is unreachable, got %v", err)
	}
}

func TestTokenService_Revoke_NoDenylistIsNoop(t *testing.T) {
	svc := newTestTokenService(&fakeClock{now: time.Now()})
	_, claims, _ := svc.Issue(testUser)
	if err := svc.Revoke(context.Background(), claims); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
