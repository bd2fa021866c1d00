package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TruongPersonal/HUSC-ResearchHub/config"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChecker struct{ revoked map[string]bool }

func (f *fakeChecker) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

type fakeLimiter struct {
	calls int
	err   error
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, _ string, limit int, _ time.Duration) (bool, error) {
	f.calls++
	return f.calls <= limit, f.err
}

func newTestManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	mgr := newTestManager()
	access, _ := mgr.GenerateAccessToken("u1", "assistant", "d1")
	refresh, _ := mgr.GenerateRefreshToken("u1", "assistant", "d1")
	claims, _ := mgr.ParseToken(access)
	checker := &fakeChecker{revoked: map[string]bool{}}

	r := gin.New()
	r.GET("/protected", JWTAuth(mgr, checker), func(c *gin.Context) {
		if c.GetString(CtxDepartmentID) != "d1" || c.GetString(CtxTokenJTI) != claims.ID {
			c.Status(http.StatusTeapot)
			return
		}
		c.Status(http.StatusOK)
	})

	if w := doRequest(r, access); w.Code != http.StatusOK {
		t.Errorf("valid access token: expected 200, got %d", w.Code)
	}
	if w := doRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing header: expected 401, got %d", w.Code)
	}
	if w := doRequest(r, refresh); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token: expected 401, got %d", w.Code)
	}

	checker.revoked[claims.ID] = true
	if w := doRequest(r, access); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: expected 401, got %d", w.Code)
	}
}

func TestJWTAuth_NilChecker(t *testing.T) {
	mgr := newTestManager()
	access, _ := mgr.GenerateAccessToken("u1", "student", "")

	r := gin.New()
	r.GET("/protected", JWTAuth(mgr, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := doRequest(r, access); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRoleAuth(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"assistant", http.StatusOK},
		{"student", http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		r := gin.New()
		r.GET("/protected", func(c *gin.Context) {
			if tt.role != "" {
				c.Set(CtxRole, tt.role)
			}
		}, RoleAuth("admin", "assistant"), func(c *gin.Context) { c.Status(http.StatusOK) })

		if w := doRequest(r, ""); w.Code != tt.want {
			t.Errorf("role=%q: expected %d, got %d", tt.role, tt.want, w.Code)
		}
	}
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{}
	r := gin.New()
	r.GET("/protected", RateLimit(limiter, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if w := doRequest(r, ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
	if w := doRequest(r, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}

	// Redis 故障时放行
	limiter.err = errors.New("redis down")
	if w := doRequest(r, ""); w.Code != http.StatusOK {
		t.Errorf("limiter error: expected 200, got %d", w.Code)
	}
}
