package main

import (
	"github.com/gin-gonic/gin"
	"merovian.backend/internal/config"
	"merovian.backend/internal/interfaces/http/handlers"
	"merovian.backend/internal/interfaces/http/middleware"
	"merovian.backend/internal/interfaces/http/ws"
	"merovian.backend/pkg/metrics"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	profileHandler    *handlers.ProfileHandler
	depositHandler    *handlers.DepositHandler
	withdrawalHandler *handlers.WithdrawalHandler
	kycHandler        *handlers.KYCHandler
	supportHandler    *handlers.SupportHandler
	marketHandler     *handlers.MarketHandler
	adminHandler      *handlers.AdminHandler
	storageHandler    *handlers.StorageHandler
	healthHandler     *handlers.HealthHandler
	realtimeHandler   *ws.Handler
	authMiddleware    gin.HandlerFunc
}

func newRouter(cfg *config.Config, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(metrics.Middleware())

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r, d.healthHandler)
	r.GET("/metrics", metrics.GinHandler())
	r.GET("/storage/v1/object/public/:bucket/*path", d.storageHandler.GetPublicObject)
	r.GET("/realtime/v1/websocket", d.realtimeHandler.Serve)
	registerAPIV1Routes(r, d)
	return r
}

func registerHealthRoute(r *gin.Engine, h *handlers.HealthHandler) {
	r.GET("/health", h.Health)
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", d.authHandler.Signup)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.POST("/logout", d.authMiddleware, d.authHandler.Logout)
			auth.GET("/user", d.authMiddleware, d.authHandler.Me)
		}

		// Public market data
		v1.GET("/market/movers", d.marketHandler.Movers)

		protected := v1.Group("")
		protected.Use(d.authMiddleware)
		{
			protected.GET("/profile", d.profileHandler.GetProfile)
			protected.GET("/transactions", d.profileHandler.ListTransactions)

			protected.GET("/deposit/assets", d.depositHandler.ListAssets)
			protected.GET("/deposit/assets/:code", d.depositHandler.GetAsset)
			protected.GET("/deposit/assets/:code/qr", d.depositHandler.QRCode)

			protected.POST("/withdrawals", middleware.IdempotencyMiddleware(), d.withdrawalHandler.Withdraw)
			protected.GET("/withdrawals/limits", d.withdrawalHandler.Limits)

			protected.POST("/kyc", d.kycHandler.Submit)
			protected.GET("/kyc", d.kycHandler.GetDetails)

			protected.GET("/tickets", d.supportHandler.ListTickets)
			protected.POST("/tickets", middleware.IdempotencyMiddleware(), d.supportHandler.CreateTicket)
			protected.GET("/tickets/:id/messages", d.supportHandler.ListMessages)
			protected.POST("/tickets/:id/messages", d.supportHandler.PostMessage)
		}

		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/profiles", d.adminHandler.ListProfiles)
			admin.PUT("/profiles/:id/balance", d.adminHandler.UpdateBalance)
			admin.PUT("/profiles/:id/kyc-status", d.adminHandler.UpdateKYCStatus)
			admin.GET("/profiles/:id/kyc", d.adminHandler.GetKYCDetails)
			admin.GET("/tickets", d.adminHandler.ListTickets)
			admin.GET("/tickets/:id/messages", d.adminHandler.ListTicketMessages)
			admin.POST("/tickets/:id/messages", d.adminHandler.ReplyToTicket)
			admin.GET("/stats", d.adminHandler.Stats)
		}
	}
}
