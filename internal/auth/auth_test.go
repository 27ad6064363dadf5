package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokenManager("secret", "storefront")

	token, err := tokens.Issue("u1", "ayse@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ayse@example.com", claims.Email)
	assert.Equal(t, "storefront", claims.Issuer)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", "storefront").Issue("u1", "a@b.com")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", "storefront").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := NewTokenManager("secret", "storefront").Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestMiddleware_AttachesClaims(t *testing.T) {
	tokens := NewTokenManager("secret", "storefront")
	token, err := tokens.Issue("u1", "a@b.com")
	require.NoError(t, err)

	var got *Claims
	handler := Middleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
}

func TestMiddleware_AnonymousOnBadToken(t *testing.T) {
	tokens := NewTokenManager("secret", "storefront")

	var got *Claims
	handler := Middleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Nil(t, got)
}

func TestRequire(t *testing.T) {
	tokens := NewTokenManager("secret", "storefront")
	token, err := tokens.Issue("u1", "a@b.com")
	require.NoError(t, err)

	called := false
	handler := Middleware(tokens)(Require(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// anonymous request is rejected
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	// authenticated request passes
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}
