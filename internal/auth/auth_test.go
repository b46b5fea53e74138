package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/database"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newProvider(t *testing.T) *LocalProvider {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "dws.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	p := NewLocalProvider(db)
	p.cost = bcrypt.MinCost
	return p
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("super-secret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, CheckPasswordHash(hash, "super-secret"))
	assert.Error(t, CheckPasswordHash(hash, "wrong"))
}

func TestLocalProviderLifecycle(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	require.NoError(t, p.CreateUser(ctx, "u1", "Ana@X.com", "secret123"))
	assert.ErrorIs(t, p.CreateUser(ctx, "u2", "ana@x.com", "secret123"), ErrEmailExists)
	assert.ErrorIs(t, p.CreateUser(ctx, "u3", "bia@x.com", "123"), ErrWeakPassword)

	uid, err := p.VerifyPassword(ctx, " ana@x.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	_, err = p.VerifyPassword(ctx, "ana@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.VerifyPassword(ctx, "nobody@x.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, p.UpdateEmail(ctx, "u1", "ana2@x.com"))
	uid, err = p.VerifyPassword(ctx, "ana2@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	require.NoError(t, p.DeleteUser(ctx, "u1"))
	assert.ErrorIs(t, p.DeleteUser(ctx, "u1"), ErrUserNotFound)
	assert.ErrorIs(t, p.UpdateEmail(ctx, "u1", "x@x.com"), ErrUserNotFound)
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", "dws", 15*time.Minute, time.Hour)

	raw, exp, err := tokens.IssueUser("u1", "Ana")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())
	assert.Equal(t, "Ana", claims.Name)
	assert.False(t, claims.IsAdmin())
	assert.NotEmpty(t, claims.ID)

	raw, exp, err = tokens.IssueAdmin()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
	claims, err = tokens.Verify(raw)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, AdminSubject, claims.UserID())
}

func TestTokensRejects(t *testing.T) {
	tokens := NewTokens("secret", "dws", 15*time.Minute, time.Hour)
	valid, _, err := tokens.IssueUser("u1", "Ana")
	require.NoError(t, err)

	_, err = tokens.Verify("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = tokens.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokens("other-secret", "dws", 15*time.Minute, time.Hour)
	_, err = other.Verify(valid)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong signature")

	scoped, _, err := tokens.IssueScoped("photo.png", "images", time.Minute)
	require.NoError(t, err)
	_, err = tokens.Verify(scoped)
	assert.ErrorIs(t, err, ErrInvalidToken, "image tokens are not sessions")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensExpire(t *testing.T) {
	tokens := NewTokens("secret", "dws", 15*time.Minute, time.Hour)
	start := time.Now()
	tokens.SetClock(func() time.Time { return start })
	raw, _, err := tokens.IssueUser("u1", "Ana")
	require.NoError(t, err)

	tokens.SetClock(func() time.Time { return start.Add(14 * time.Minute) })
	_, err = tokens.Verify(raw)
	assert.NoError(t, err)

	tokens.SetClock(func() time.Time { return start.Add(16 * time.Minute) })
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	SetTokenCookie(rec, UserCookie, "abc", time.Now().Add(time.Minute), true)
	ClearTokenCookie(rec, AdminCookie, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, UserCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	assert.Equal(t, AdminCookie, cookies[1].Name)
	assert.Equal(t, -1, cookies[1].MaxAge)
}

func TestClaimsContext(t *testing.T) {
	assert.Nil(t, ClaimsFromContext(context.Background()))
	c := &Claims{Role: RoleUser}
	assert.Same(t, c, ClaimsFromContext(WithClaims(context.Background(), c)))
}
