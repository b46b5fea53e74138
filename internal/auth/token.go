package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const sessionAudience = "session"

// AdminSubject is the subject of every admin session token.
const AdminSubject = "admin"

// Claims is the payload of a session token.
type Claims struct {
	Name string `json:"name,omitempty"`
	Role Role   `json:"role"`
	jwt.RegisteredClaims
}

// UserID is the token subject.
func (c *Claims) UserID() string { return c.Subject }

func (c *Claims) IsAdmin() bool { return c.Role == RoleAdmin }

// Tokens issues and verifies HS256 tokens for one secret and issuer.
type Tokens struct {
	secret   []byte
	issuer   string
	userTTL  time.Duration
	adminTTL time.Duration
	now      func() time.Time
}

func NewTokens(secret, issuer string, userTTL, adminTTL time.Duration) *Tokens {
	return &Tokens{
		secret:   []byte(secret),
		issuer:   issuer,
		userTTL:  userTTL,
		adminTTL: adminTTL,
		now:      time.Now,
	}
}

// SetClock replaces the time source; used by tests.
func (t *Tokens) SetClock(now func() time.Time) {
	t.now = now
}

// IssueUser signs a user session token and returns it with its expiry.
func (t *Tokens) IssueUser(uid, name string) (string, time.Time, error) {
	return t.issue(uid, name, RoleUser, sessionAudience, t.userTTL)
}

// IssueAdmin signs an administrator session token.
func (t *Tokens) IssueAdmin() (string, time.Time, error) {
	return t.issue(AdminSubject, "Administrador", RoleAdmin, sessionAudience, t.adminTTL)
}

// IssueScoped signs a token for subject that is only valid for audience.
func (t *Tokens) IssueScoped(subject, audience string, ttl time.Duration) (string, time.Time, error) {
	return t.issue(subject, "", "", audience, ttl)
}

func (t *Tokens) issue(subject, name string, role Role, audience string, ttl time.Duration) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(ttl)
	claims := Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks a session token and returns its claims.
func (t *Tokens) Verify(raw string) (*Claims, error) {
	claims, err := t.VerifyScoped(raw, sessionAudience)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleUser && claims.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}

// VerifyScoped checks signature, issuer, expiry and audience of raw.
func (t *Tokens) VerifyScoped(raw, audience string) (*Claims, error) {
	if raw == "" {
		return nil, ErrUnauthenticated
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		// An expired session counts as no session at all.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
