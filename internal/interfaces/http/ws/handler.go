package ws

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/infrastructure/realtime"
	"merovian.backend/internal/interfaces/http/response"
	"merovian.backend/pkg/jwt"
	"merovian.backend/pkg/logger"
)

// Handler upgrades authenticated requests to realtime sockets.
type Handler struct {
	hub      *realtime.Hub
	jwt      *jwt.JWTService
	authz    *Authorizer
	upgrader websocket.Upgrader
}

// NewHandler builds the socket handler. allowedOrigins restricts browser
// origins; requests without an Origin header (non browser clients) pass.
func NewHandler(hub *realtime.Hub, jwtService *jwt.JWTService, authz *Authorizer, allowedOrigins []string) *Handler {
	return &Handler{
		hub:   hub,
		jwt:   jwtService,
		authz: authz,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// Serve handles GET /realtime/v1/websocket?token=<access token>.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, domainerrors.Unauthorized("Invalid token"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		logger.Warn(c.Request.Context(), "websocket upgrade failed", zap.Error(err))
		return
	}

	s := newSession(c.Request.Context(), conn, claims.UserID, h.hub, h.authz)
	logger.Info(s.ctx, "realtime socket connected", zap.String("session_id", s.id), zap.String("user_id", claims.UserID.String()))
	s.run()
	logger.Info(s.ctx, "realtime socket disconnected", zap.String("session_id", s.id))
}
