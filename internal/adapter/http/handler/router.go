package handler

import (
	"vending-machine-api/internal/adapter/http/middleware"
	redisStore "vending-machine-api/internal/adapter/storage/redis"
	"vending-machine-api/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 64 << 10

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	CatalogSvc     ports.CatalogService
	Register       ports.DepositRegister
	PurchaseSvc    ports.PurchaseService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}
	bearer := middleware.BearerAuth(deps.AuthSvc, deps.Logger)

	authHandler := NewAuthHandler(deps.AuthSvc)
	r.POST("/token", rl(middleware.GroupAuthToken), authHandler.Token)
	r.POST("/token/refresh", rl(middleware.GroupTokenRefresh), authHandler.Refresh)

	itemHandler := NewItemHandler(deps.CatalogSvc)
	r.GET("/items", itemHandler.List)
	r.PUT("/items", bearer, rl(middleware.GroupItemsWrite), itemHandler.Upsert)
	r.DELETE("/items", bearer, rl(middleware.GroupItemsWrite), itemHandler.Delete)

	depositHandler := NewDepositHandler(deps.Register)
	r.POST("/deposit", rl(middleware.GroupDeposit), depositHandler.Insert)
	r.GET("/deposit", depositHandler.Balance)
	r.GET("/reset", depositHandler.Reset)

	purchaseHandler := NewPurchaseHandler(deps.PurchaseSvc)
	r.POST("/buy", rl(middleware.GroupBuy), purchaseHandler.Buy)

	return r
}
