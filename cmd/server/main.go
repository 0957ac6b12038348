package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"merovian.backend/internal/config"
	"merovian.backend/internal/infrastructure/datasources/database"
	"merovian.backend/internal/infrastructure/jobs"
	"merovian.backend/internal/infrastructure/market"
	"merovian.backend/internal/infrastructure/realtime"
	"merovian.backend/internal/infrastructure/repositories"
	"merovian.backend/internal/infrastructure/storage"
	"merovian.backend/internal/interfaces/http/handlers"
	"merovian.backend/internal/interfaces/http/middleware"
	"merovian.backend/internal/interfaces/http/ws"
	"merovian.backend/internal/usecases"
	"merovian.backend/pkg/jwt"
	"merovian.backend/pkg/logger"
	"merovian.backend/pkg/redis"
)

var (
	loadDotenv      = godotenv.Load
	loadCfg         = config.Load
	initLog         = logger.Init
	initRedis       = redis.Init
	openDB          = database.NewConnection
	migrateDB       = database.Migrate
	newSessionStore = redis.NewSessionStore
	newTickerFeed   = func(url string) (usecases.MarketFeed, error) { return market.NewTickerFeed(url) }
	runServer       = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := migrateDB(db); err != nil {
			return err
		}
	}
	logger.Info(context.Background(), "Database ready", zap.String("driver", cfg.Database.Driver))

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub()
	broker, err := newBroker(cfg, db, hub)
	if err != nil {
		return err
	}
	defer broker.Close()
	go func() {
		if err := broker.Run(ctx, hub); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(ctx, "realtime broker stopped", zap.Error(err))
		}
	}()
	publisher := realtime.NewPublisher(broker)

	identityRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	kycRepo := repositories.NewKYCRepository(db)
	ticketRepo := repositories.NewTicketRepository(db)
	messageRepo := repositories.NewTicketMessageRepository(db)
	uow := repositories.NewUnitOfWork(db)
	objectStore := storage.NewObjectStore(db, cfg.Storage.PublicBaseURL)

	authUsecase := usecases.NewAuthUsecase(uow, identityRepo, profileRepo, jwtService, sessionStore, cfg.Security.SessionExpiry, publisher)
	profileUsecase := usecases.NewProfileUsecase(profileRepo, txRepo)
	depositUsecase, err := usecases.NewDepositUsecase(cfg.Deposit.Addresses)
	if err != nil {
		return fmt.Errorf("invalid deposit configuration: %w", err)
	}
	withdrawalUsecase := usecases.NewWithdrawalUsecase(uow, profileRepo, txRepo, publisher, cfg.Withdrawal.MinAmount)
	kycUsecase := usecases.NewKYCUsecase(uow, profileRepo, kycRepo, objectStore, publisher)
	supportUsecase := usecases.NewSupportUsecase(uow, profileRepo, ticketRepo, messageRepo, publisher)
	adminUsecase := usecases.NewAdminUsecase(profileRepo, kycRepo, ticketRepo, txRepo, supportUsecase, publisher)

	feed, err := newTickerFeed(cfg.Market.FeedURL)
	if err != nil {
		return fmt.Errorf("failed to initialize market feed: %w", err)
	}
	marketUsecase := usecases.NewMarketUsecase(feed, market.NewRedisQuoteCache(), cfg.Market.Symbols, cfg.Market.CacheTTL)

	marketJob := jobs.NewMarketRefreshJob(marketUsecase, cfg.Market.RefreshInterval)
	if err := marketJob.Start(); err != nil {
		logger.Warn(ctx, "market refresh job not started", zap.Error(err))
	} else {
		defer marketJob.Stop()
	}

	r := newRouter(cfg, routeDeps{
		authHandler:       handlers.NewAuthHandler(authUsecase),
		profileHandler:    handlers.NewProfileHandler(profileUsecase),
		depositHandler:    handlers.NewDepositHandler(depositUsecase),
		withdrawalHandler: handlers.NewWithdrawalHandler(withdrawalUsecase),
		kycHandler:        handlers.NewKYCHandler(kycUsecase, cfg.Storage.MaxUploadBytes),
		supportHandler:    handlers.NewSupportHandler(supportUsecase),
		marketHandler:     handlers.NewMarketHandler(marketUsecase),
		adminHandler:      handlers.NewAdminHandler(adminUsecase),
		storageHandler:    handlers.NewStorageHandler(objectStore),
		healthHandler:     handlers.NewHealthHandler(healthChecks(db)),
		realtimeHandler:   ws.NewHandler(hub, jwtService, ws.NewAuthorizer(profileRepo, supportUsecase), cfg.Server.AllowedOrigins),
		authMiddleware:    middleware.AuthMiddleware(jwtService, sessionStore, cfg.Security.SessionExpiry),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-ctx.Done():
			return
		}
		logger.Info(ctx, "Shutting down server")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "Merovian backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("broker", cfg.Realtime.Broker),
	)
	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// newBroker picks the change feed transport. Redis and Postgres fan events
// out to every instance; memory only reaches sockets on this process.
func newBroker(cfg *config.Config, db *gorm.DB, hub *realtime.Hub) (realtime.Broker, error) {
	switch cfg.Realtime.Broker {
	case "redis":
		return realtime.NewRedisBroker(redis.GetClient()), nil
	case "postgres":
		if cfg.Database.Driver != "postgres" {
			return nil, fmt.Errorf("postgres realtime broker requires the postgres driver, got %q", cfg.Database.Driver)
		}
		return realtime.NewPostgresBroker(db, cfg.Database.URL()), nil
	case "memory":
		return realtime.NewMemoryBroker(hub), nil
	default:
		return nil, fmt.Errorf("unknown realtime broker %q", cfg.Realtime.Broker)
	}
}

func healthChecks(db *gorm.DB) map[string]handlers.Pinger {
	return map[string]handlers.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			client := redis.GetClient()
			if client == nil {
				return errors.New("redis not initialized")
			}
			return client.Ping(ctx).Err()
		},
	}
}
