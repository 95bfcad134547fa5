package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"questnote/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func identifyTestSetup(t *testing.T) (*auth.JWTValidator, *auth.JWTGenerator) {
	t.Helper()

	cfg := auth.JWTConfig{SecretKey: "test-secret", Issuer: "questnote"}
	validator, err := auth.NewJWTValidator(cfg)
	require.NoError(t, err)
	generator, err := auth.NewJWTGenerator(cfg, time.Hour)
	require.NoError(t, err)
	return validator, generator
}

func captureActor(t *testing.T, validator *auth.JWTValidator, req *http.Request) (*auth.Actor, *httptest.ResponseRecorder) {
	t.Helper()

	var captured *auth.Actor
	handler := Identify(validator, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.GetActorFromContext(r.Context())
		require.NoError(t, err)
		captured = actor
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return captured, rec
}

func TestIdentify_BearerToken(t *testing.T) {
	validator, generator := identifyTestSetup(t)

	token, err := generator.GenerateToken("account-1", "a@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	actor, rec := captureActor(t, validator, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, actor)
	assert.True(t, actor.Authenticated)
	assert.Equal(t, "account-1", actor.ID)
	assert.Equal(t, "a@example.com", actor.Email)
}

func TestIdentify_LocalIDHeader(t *testing.T) {
	validator, _ := identifyTestSetup(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(LocalIDHeader, "user_local-1")

	actor, rec := captureActor(t, validator, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, actor)
	assert.False(t, actor.Authenticated)
	assert.Equal(t, "user_local-1", actor.LocalID)
}

func TestIdentify_NoCredentials(t *testing.T) {
	validator, _ := identifyTestSetup(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	actor, rec := captureActor(t, validator, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, actor)
	assert.False(t, actor.Authenticated)
	assert.Empty(t, actor.ID)
	assert.Empty(t, actor.LocalID)
}

func TestIdentify_InvalidTokenRejected(t *testing.T) {
	validator, _ := identifyTestSetup(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	actor, rec := captureActor(t, validator, req)
	assert.Nil(t, actor)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentify_WrongSecretRejected(t *testing.T) {
	validator, _ := identifyTestSetup(t)

	otherGen, err := auth.NewJWTGenerator(auth.JWTConfig{SecretKey: "other", Issuer: "questnote"}, time.Hour)
	require.NoError(t, err)
	token, err := otherGen.GenerateToken("account-1", "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	actor, rec := captureActor(t, validator, req)
	assert.Nil(t, actor)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
