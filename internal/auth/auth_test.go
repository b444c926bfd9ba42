package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTokens(t *testing.T, now time.Time) *Tokens {
	t.Helper()
	tokens, err := NewTokens(testSecret, time.Hour)
	require.NoError(t, err)
	return tokens.WithClock(func() time.Time { return now })
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
	assert.False(t, CheckPassword("not a hash", "correct horse"))
}

func TestNewTokensRejectsShortSecret(t *testing.T) {
	_, err := NewTokens("tiny", time.Hour)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
	tokens := newTokens(t, now)

	token, expires, err := tokens.Issue(core.User{ID: 42, Username: "asha"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "asha", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyRejects(t *testing.T) {
	now := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
	tokens := newTokens(t, now)
	valid, _, err := tokens.Issue(core.User{ID: 1, Username: "a"})
	require.NoError(t, err)

	later := newTokens(t, now.Add(2*time.Hour))
	other, err := NewTokens(strings.Repeat("z", 32), time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "iss": Issuer, "exp": now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": Issuer, "exp": now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		tokens *Tokens
		token  string
	}{
		{"empty", tokens, ""},
		{"garbage", tokens, "not.a.jwt"},
		{"expired", later, valid},
		{"wrong secret", other.WithClock(func() time.Time { return now }), valid},
		{"alg none", tokens, none},
		{"missing subject", tokens, noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tokens.Verify(tt.token)
			assert.ErrorIs(t, err, core.ErrUnauthorized)
		})
	}
}

func TestMiddleware(t *testing.T) {
	now := time.Now()
	tokens := newTokens(t, now)
	token, expires, err := tokens.Issue(core.User{ID: 9, Username: "ravi"})
	require.NoError(t, err)

	var gotID int64
	h := Middleware(tokens, func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserIDFromContext(r.Context())
	}))

	t.Run("cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SetCookie(rec, token, expires, true)
		cookie := rec.Result().Cookies()[0]
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)

		req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
		req.AddCookie(cookie)
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(9), gotID)
	})

	t.Run("bearer", func(t *testing.T) {
		gotID = 0
		req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(9), gotID)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestClearCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearCookie(rec, false)
	cookie := rec.Result().Cookies()[0]
	assert.Equal(t, CookieName, cookie.Name)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestAuthenticator(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	a := NewAuthenticator(repo, newTokens(t, time.Now()), nil)
	ctx := context.Background()

	user, err := a.Register(ctx, "Meera", "", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "meera", user.Username)
	assert.Equal(t, "Meera", user.DisplayName)

	session, err := a.Login(ctx, "MEERA", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
	assert.NotEmpty(t, session.Token)

	_, err = a.Login(ctx, "meera", "wrong-pass")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = a.Login(ctx, "nobody", "whatever1")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = a.Login(ctx, "", "")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	me, err := a.CurrentUser(WithUserID(ctx, user.ID))
	require.NoError(t, err)
	assert.Equal(t, "meera", me.Username)

	_, err = a.CurrentUser(WithUserID(ctx, 999))
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = a.CurrentUser(ctx)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}
