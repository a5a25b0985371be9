package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vending-machine-api/config"
	httpHandler "vending-machine-api/internal/adapter/http/handler"
	mysqlStorage "vending-machine-api/internal/adapter/storage/mysql"
	pgStorage "vending-machine-api/internal/adapter/storage/postgres"
	redisStorage "vending-machine-api/internal/adapter/storage/redis"
	"vending-machine-api/internal/adapter/storage/retry"
	"vending-machine-api/internal/core/ports"
	"vending-machine-api/internal/service"
	"vending-machine-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// storage bundles the repositories of the configured database driver.
type storage struct {
	users  ports.UserRepository
	items  ports.ItemRepository
	audit  ports.AuditRepository
	health ports.HealthChecker
	// idempotency is the database fallback for purchase receipts; nil on mysql.
	idempotency ports.IdempotencyCache
	close       func()
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*storage, error) {
	policy := retry.Policy{
		Timeout: cfg.QueryTimeout,
		Retries: cfg.ReadRetries,
		Backoff: retry.DefaultBackoff,
	}

	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := mysqlStorage.Open(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &storage{
			users:  mysqlStorage.NewUserRepo(db, policy),
			items:  mysqlStorage.NewItemRepo(db, policy),
			audit:  mysqlStorage.NewAuditRepo(db),
			health: mysqlStorage.NewHealthCheck(db),
			close:  func() { _ = db.Close() },
		}, nil
	default:
		pool, err := pgStorage.NewPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &storage{
			users:       pgStorage.NewUserRepo(pool, policy),
			items:       pgStorage.NewItemRepo(pool, policy),
			audit:       pgStorage.NewAuditRepo(pool),
			health:      pgStorage.NewHealthCheck(pool),
			idempotency: pgStorage.NewIdempotencyRepo(pool, policy),
			close:       pool.Close,
		}, nil
	}
}

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config.yaml or ./config/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Pretty:     cfg.Log.Pretty,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Msg("Starting Vending Machine API")

	ctx := context.Background()

	store, err := openStorage(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to database")
	}
	defer store.close()

	healthCheckers := []ports.HealthChecker{store.health}

	// Redis backs rate limiting, the catalog cache and purchase idempotency.
	// Without it the machine still sells, just without those extras.
	var (
		rateLimitStore *redisStorage.RateLimitStore
		catalogCache   ports.CatalogCache
		idempCache     ports.IdempotencyCache
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		catalogCache = redisStorage.NewCatalogCache(rdb, cfg.Redis.CatalogTTL)
		idempCache = redisStorage.NewIdempotencyCache(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		idempCache = store.idempotency
		log.Warn().
			Bool("idempotency", idempCache != nil).
			Msg("Redis disabled: no rate limiting or catalog cache")
	}

	hashSvc, err := service.NewHashService(cfg.Auth.HashAlgorithm, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize hash service")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry, cfg.JWT.Issuer)

	authSvc := service.NewAuthService(store.users, hashSvc, tokenSvc)
	catalogSvc := service.NewCatalogService(store.items, catalogCache, log)
	register := service.NewDepositRegister(log)
	purchaseSvc := service.NewPurchaseService(store.items, register, idempCache, service.PurchaseOptions{
		ResetOnFailure: cfg.Vending.ResetOnFailure,
		IdempotencyTTL: cfg.Vending.IdempotencyTTL,
	}, log)
	auditSvc := service.NewAuditService(store.audit, log)

	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	gin.SetMode(cfg.Server.Mode)
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		CatalogSvc:     catalogSvc,
		Register:       register,
		PurchaseSvc:    purchaseSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
