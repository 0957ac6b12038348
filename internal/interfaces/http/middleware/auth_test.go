package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"merovian.backend/pkg/jwt"
	"merovian.backend/pkg/redis"
)

type stubSessions struct {
	data    map[string]*redis.SessionData
	getErr  error
	saved   map[string]*redis.SessionData
	saveErr error
}

func (s *stubSessions) GetSession(_ context.Context, id string) (*redis.SessionData, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	d, ok := s.data[id]
	if !ok {
		return nil, redis.ErrSessionNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *stubSessions) CreateSession(_ context.Context, id string, d *redis.SessionData, _ time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.saved == nil {
		s.saved = map[string]*redis.SessionData{}
	}
	s.saved[id] = d
	return nil
}

func newAuthRouter(jwtService *jwt.JWTService, sessions SessionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(jwtService, sessions, time.Hour))
	r.GET("/me", func(c *gin.Context) {
		id, _ := GetUserID(c)
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "role": role, "session": GetSessionID(c)})
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_BearerFlow(t *testing.T) {
	jwtService := jwt.NewJWTService("secret", time.Minute, time.Hour)
	r := newAuthRouter(jwtService, nil)
	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(userID, "u@merovian.io", "user")
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authorization header is required")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthorizationHeader, "Token abc")
		w := serve(r, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthorizationHeader, "Bearer invalid")
		w := serve(r, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid token")
	})

	t.Run("refresh token is not a bearer credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthorizationHeader, BearerPrefix+pair.RefreshToken)
		w := serve(r, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwt.NewJWTService("secret", -time.Minute, time.Hour)
		old, err := expired.GenerateTokenPair(userID, "u@merovian.io", "user")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthorizationHeader, BearerPrefix+old.AccessToken)
		w := serve(r, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Token has expired")
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthorizationHeader, BearerPrefix+pair.AccessToken)
		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}

func TestAuthMiddleware_SessionFlow(t *testing.T) {
	jwtService := jwt.NewJWTService("secret", time.Minute, time.Hour)
	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(userID, "u@merovian.io", "admin")
	require.NoError(t, err)

	sessions := &stubSessions{data: map[string]*redis.SessionData{
		"live": {UserID: userID.String(), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	}}
	r := newAuthRouter(jwtService, sessions)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(SessionHeader, "live")
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
	assert.Contains(t, w.Body.String(), `"session":"live"`)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(SessionHeader, "unknown")
	w = serve(r, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session not found or expired")
}

func TestAuthMiddleware_SessionRenewsExpiredAccessToken(t *testing.T) {
	jwtService := jwt.NewJWTService("secret", time.Minute, time.Hour)
	shortLived := jwt.NewJWTService("secret", -time.Minute, time.Hour)
	userID := uuid.New()
	stale, err := shortLived.GenerateTokenPair(userID, "u@merovian.io", "user")
	require.NoError(t, err)

	sessions := &stubSessions{data: map[string]*redis.SessionData{
		"s1": {UserID: userID.String(), AccessToken: stale.AccessToken, RefreshToken: stale.RefreshToken},
	}}
	r := newAuthRouter(jwtService, sessions)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(SessionHeader, "s1")
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, sessions.saved, "s1")
	assert.NotEqual(t, stale.AccessToken, sessions.saved["s1"].AccessToken)

	_, err = jwtService.ValidateAccessToken(sessions.saved["s1"].AccessToken)
	assert.NoError(t, err)
}

func TestAuthMiddleware_SessionStoreDown(t *testing.T) {
	jwtService := jwt.NewJWTService("secret", time.Minute, time.Hour)
	r := newAuthRouter(jwtService, &stubSessions{getErr: errors.New("redis down")})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(SessionHeader, "s1")
	w := serve(r, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	build := func(role string) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if role != "" {
				c.Set(UserRoleKey, role)
			}
			c.Next()
		})
		r.Use(RequireAdmin())
		r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r
	}

	assert.Equal(t, http.StatusNoContent, serve(build("admin"), httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(build("user"), httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(build(""), httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
}
