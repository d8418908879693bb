package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propel-insights/internal/domain"
)

const testSecret = "test-secret"

type stubTenantLookup struct {
	byID   map[string]*domain.Tenant
	byHash map[string]*domain.Tenant
}

func (s *stubTenantLookup) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	t, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("tenant %s not found", id)
	}
	return t, nil
}

func (s *stubTenantLookup) GetByAPIKeyHash(_ context.Context, hash string) (*domain.Tenant, error) {
	t, ok := s.byHash[hash]
	if !ok {
		return nil, domain.ErrNotFound("api key not found")
	}
	return t, nil
}

func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// nextHandler records the tenant resolved into the request context.
func nextHandler() (http.Handler, func() (*domain.Tenant, bool)) {
	var tenant *domain.Tenant
	var found bool
	h := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		tenant, found = domain.TenantFromContext(r.Context())
	})
	return h, func() (*domain.Tenant, bool) { return tenant, found }
}

func newAuth(lookup TenantLookup) *Authenticator {
	return NewAuthenticator(testSecret, lookup, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAuth_ValidJWT(t *testing.T) {
	handler, getTenant := nextHandler()
	auth := newAuth(&stubTenantLookup{byID: map[string]*domain.Tenant{
		"t1": {ID: "t1", Name: "Alpha Estates"},
	}})

	req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"tenant": "t1"}))
	w := httptest.NewRecorder()

	auth.Middleware()(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	tenant, found := getTenant()
	require.True(t, found)
	assert.Equal(t, "Alpha Estates", tenant.Name)
}

func TestAuth_JWTUnknownTenant(t *testing.T) {
	auth := newAuth(&stubTenantLookup{byID: map[string]*domain.Tenant{}})

	req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"tenant": "ghost"}))
	w := httptest.NewRecorder()

	auth.Middleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_JWTMissingTenantClaim(t *testing.T) {
	auth := newAuth(&stubTenantLookup{byID: map[string]*domain.Tenant{
		"t1": {ID: "t1"},
	}})

	req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "someone"}))
	w := httptest.NewRecorder()

	auth.Middleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_BadSignature(t *testing.T) {
	auth := newAuth(&stubTenantLookup{})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"tenant": "t1"}).
		SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	auth.Middleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidAPIKey(t *testing.T) {
	handler, getTenant := nextHandler()
	rawKey := "pi_live_1234567890"
	auth := newAuth(&stubTenantLookup{byHash: map[string]*domain.Tenant{
		hashKey(rawKey): {ID: "t2", Name: "Beta Homes"},
	}})

	req := httptest.NewRequest(http.MethodGet, "/v1/schema", nil)
	req.Header.Set("X-API-Key", rawKey)
	w := httptest.NewRecorder()

	auth.Middleware()(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	tenant, found := getTenant()
	require.True(t, found)
	assert.Equal(t, "t2", tenant.ID)
}

func TestAuth_UnknownAPIKey(t *testing.T) {
	auth := newAuth(&stubTenantLookup{byHash: map[string]*domain.Tenant{}})

	req := httptest.NewRequest(http.MethodGet, "/v1/schema", nil)
	req.Header.Set("X-API-Key", "unknown-key")
	w := httptest.NewRecorder()

	auth.Middleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_NoCredentials(t *testing.T) {
	auth := newAuth(&stubTenantLookup{})

	req := httptest.NewRequest(http.MethodGet, "/v1/schema", nil)
	w := httptest.NewRecorder()

	auth.Middleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_BearerPrecedence(t *testing.T) {
	handler, getTenant := nextHandler()
	rawKey := "pi_live_1234567890"
	auth := newAuth(&stubTenantLookup{
		byID:   map[string]*domain.Tenant{"t1": {ID: "t1", Name: "JWT Tenant"}},
		byHash: map[string]*domain.Tenant{hashKey(rawKey): {ID: "t2", Name: "Key Tenant"}},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"tenant": "t1"}))
	req.Header.Set("X-API-Key", rawKey)
	w := httptest.NewRecorder()

	auth.Middleware()(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	tenant, found := getTenant()
	require.True(t, found)
	assert.Equal(t, "t1", tenant.ID, "Bearer token should take precedence over API key")
}
