// Package middleware provides HTTP middleware for tenant authentication,
// request IDs, and rate limiting.
package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"propel-insights/internal/domain"
)

// TenantLookup resolves tenants from credentials.
type TenantLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Tenant, error)
}

// Authenticator resolves the tenant for each request: a JWT Bearer token
// carrying a "tenant" claim first, then an X-API-Key header. Requests that
// resolve no tenant are rejected with 401.
type Authenticator struct {
	jwtSecret []byte // empty disables JWT auth
	tenants   TenantLookup
	logger    *slog.Logger
}

// NewAuthenticator creates the tenant resolver middleware.
func NewAuthenticator(jwtSecret string, tenants TenantLookup, logger *slog.Logger) *Authenticator {
	return &Authenticator{jwtSecret: []byte(jwtSecret), tenants: tenants, logger: logger}
}

// Middleware returns the HTTP middleware function.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tenant := a.resolve(r); tenant != nil {
				ctx := domain.WithTenant(r.Context(), tenant)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			writeUnauthorized(w)
		})
	}
}

func (a *Authenticator) resolve(r *http.Request) *domain.Tenant {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") && len(a.jwtSecret) > 0 {
		if tenant := a.resolveJWT(r.Context(), strings.TrimPrefix(auth, "Bearer ")); tenant != nil {
			return tenant
		}
	}
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		hash := sha256.Sum256([]byte(apiKey))
		tenant, err := a.tenants.GetByAPIKeyHash(r.Context(), hex.EncodeToString(hash[:]))
		if err == nil {
			return tenant
		}
	}
	return nil
}

func (a *Authenticator) resolveJWT(ctx context.Context, tokenStr string) *domain.Tenant {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	tenantID, ok := claims["tenant"].(string)
	if !ok || tenantID == "" {
		return nil
	}

	tenant, err := a.tenants.GetByID(ctx, tenantID)
	if err != nil {
		a.logger.Debug("jwt tenant claim did not resolve", slog.String("tenant_id", tenantID))
		return nil
	}
	return tenant
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    401,
		"message": "unauthorized: provide a valid JWT Bearer token or API key",
	})
}
