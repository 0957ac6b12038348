package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/interfaces/http/response"
	"merovian.backend/pkg/jwt"
	"merovian.backend/pkg/logger"
	"merovian.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// SessionHeader carries a server side session id instead of a bearer token.
	SessionHeader = "X-Session-Id"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for user role
	UserRoleKey = "userRole"
	// SessionIDKey is set when the request authenticated with a session.
	SessionIDKey = "sessionId"
)

// SessionStore is the subset of the redis session store the middleware uses.
type SessionStore interface {
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
}

// AuthMiddleware accepts a bearer access token or a session id. A session
// whose access token has expired is renewed from its refresh token and
// written back with sessionTTL.
func AuthMiddleware(jwtService *jwt.JWTService, sessions SessionStore, sessionTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var (
			claims *jwt.Claims
			err    error
		)
		if sessionID := c.GetHeader(SessionHeader); sessionID != "" && sessions != nil {
			claims, err = claimsFromSession(ctx, jwtService, sessions, sessionID, sessionTTL)
			if err == nil {
				c.Set(SessionIDKey, sessionID)
			}
		} else {
			authHeader := c.GetHeader(AuthorizationHeader)
			switch {
			case authHeader == "":
				err = domainerrors.Unauthorized("Authorization header is required")
			case !strings.HasPrefix(authHeader, BearerPrefix):
				err = domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>")
			default:
				claims, err = jwtService.ValidateAccessToken(strings.TrimPrefix(authHeader, BearerPrefix))
			}
		}

		if err != nil {
			logger.Warn(ctx, "authentication failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			response.Abort(c, unauthorized(err))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, claims.Role)
		c.Request = c.Request.WithContext(context.WithValue(ctx, logger.UserIDKey, claims.UserID.String()))

		c.Next()
	}
}

func claimsFromSession(ctx context.Context, jwtService *jwt.JWTService, sessions SessionStore, sessionID string, ttl time.Duration) (*jwt.Claims, error) {
	session, err := sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, domainerrors.Unauthorized("Session not found or expired")
		}
		return nil, err
	}

	claims, err := jwtService.ValidateAccessToken(session.AccessToken)
	if !errors.Is(err, jwt.ErrExpiredToken) {
		return claims, err
	}

	refresh, err := jwtService.ValidateRefreshToken(session.RefreshToken)
	if err != nil {
		return nil, domainerrors.Unauthorized("Session has expired")
	}
	pair, err := jwtService.GenerateTokenPair(refresh.UserID, refresh.Email, refresh.Role)
	if err != nil {
		return nil, err
	}
	session.AccessToken = pair.AccessToken
	session.RefreshToken = pair.RefreshToken
	if err := sessions.CreateSession(ctx, sessionID, session, ttl); err != nil {
		return nil, err
	}
	return jwtService.ValidateAccessToken(pair.AccessToken)
}

func unauthorized(err error) error {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, jwt.ErrExpiredToken) {
		return domainerrors.Unauthorized("Token has expired")
	}
	if errors.Is(err, jwt.ErrWrongTokenType) || errors.Is(err, jwt.ErrInvalidToken) {
		return domainerrors.Unauthorized("Invalid token")
	}
	return domainerrors.NewAppError(http.StatusServiceUnavailable, domainerrors.CodeUnavailable, "Session store unavailable", err)
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserRole gets the user role from context
func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	s, ok := role.(string)
	return s, ok
}

// GetSessionID returns the session id the request authenticated with.
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// RequireRole creates a middleware that requires a specific role
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := GetUserRole(c)
		if !exists {
			response.Abort(c, domainerrors.Unauthorized("User role not found"))
			return
		}

		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}

		response.Abort(c, domainerrors.Forbidden("Insufficient permissions"))
	}
}

// RequireAdmin creates a middleware that requires admin role. Usecases
// still re-check the role against the profiles row.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole("admin")
}
