package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier(t *testing.T) {
	v := NewVerifier("s3cret", "https://id.example.com", "marquee")

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := v.Sign("user-1", "u@example.com", time.Hour)
		require.NoError(t, err)

		claims, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "u@example.com", claims.Email)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := v.Sign("user-1", "", -time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := NewVerifier("other", "https://id.example.com", "marquee").Sign("user-1", "", time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("WrongAudience", func(t *testing.T) {
		token, err := NewVerifier("s3cret", "https://id.example.com", "billing").Sign("user-1", "", time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("NoExpiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:  "user-1",
			Issuer:   "https://id.example.com",
			Audience: jwt.ClaimStrings{"marquee"},
		}).SignedString([]byte("s3cret"))
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		_, err := v.Sign("", "", time.Hour)
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
	})
}

func TestBearer(t *testing.T) {
	for header, want := range map[string]error{
		"":              shared.ErrUnauthenticated,
		"Basic abc":     shared.ErrUnauthenticated,
		"Bearer ":       shared.ErrUnauthenticated,
		"bearer abc.de": nil,
	} {
		_, err := bearer(header)
		if want == nil {
			assert.NoError(t, err, header)
		} else {
			assert.ErrorIs(t, err, want, header)
		}
	}
}

type failingUsers struct{}

func (failingUsers) Ensure(context.Context, *models.User) error { return errors.New("disk full") }

func TestMiddleware(t *testing.T) {
	db := tu.NewTestDB(t)
	users := repositories.NewUserRepository(db)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("Bearer", func(t *testing.T) {
		v := NewVerifier("s3cret", "", "")
		a := NewAuthenticator(v, users, nil)
		require.False(t, a.DevMode())

		token, err := v.Sign("sub-42", "x@example.com", time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/lists", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		a.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "sub-42", seen)

		user, err := users.Get(context.Background(), "sub-42")
		require.NoError(t, err)
		assert.Equal(t, "x@example.com", user.Email)
	})

	t.Run("BadToken", func(t *testing.T) {
		a := NewAuthenticator(NewVerifier("s3cret", "", ""), users, nil)
		req := httptest.NewRequest(http.MethodGet, "/lists", nil)
		req.Header.Set("Authorization", "Bearer nope")
		req.Header.Set(DevUserHeader, "sneaky")
		rec := httptest.NewRecorder()
		a.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"invalid or expired token"}`, rec.Body.String())
	})

	t.Run("DevHeader", func(t *testing.T) {
		a := FromConfig(shared.AuthConfig{}, users, nil)
		require.True(t, a.DevMode())

		req := httptest.NewRequest(http.MethodGet, "/lists", nil)
		req.Header.Set(DevUserHeader, "dev-user")
		rec := httptest.NewRecorder()
		a.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "dev-user", seen)
	})

	t.Run("DevHeaderMissing", func(t *testing.T) {
		a := NewAuthenticator(nil, users, nil)
		rec := httptest.NewRecorder()
		a.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lists", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("UserStoreFails", func(t *testing.T) {
		a := NewAuthenticator(nil, failingUsers{}, nil)
		req := httptest.NewRequest(http.MethodGet, "/lists", nil)
		req.Header.Set(DevUserHeader, "dev-user")
		rec := httptest.NewRecorder()
		a.Middleware(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestUserID(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)

	id, ok := UserID(WithUserID(context.Background(), "u"))
	assert.True(t, ok)
	assert.Equal(t, "u", id)
}
