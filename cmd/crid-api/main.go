package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/crid-api/api/swagger"
	"github.com/noah-isme/crid-api/internal/events"
	"github.com/noah-isme/crid-api/internal/handler"
	"github.com/noah-isme/crid-api/internal/middleware"
	"github.com/noah-isme/crid-api/internal/models"
	"github.com/noah-isme/crid-api/internal/registry"
	"github.com/noah-isme/crid-api/internal/repository"
	"github.com/noah-isme/crid-api/internal/service"
	"github.com/noah-isme/crid-api/pkg/cache"
	"github.com/noah-isme/crid-api/pkg/config"
	"github.com/noah-isme/crid-api/pkg/database"
	"github.com/noah-isme/crid-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/crid-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/crid-api/pkg/middleware/requestid"
)

// @title CRID Registry API
// @version 1.0.0
// @description Access-controlled course registration registry
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, caching and fact publishing disabled", zap.Error(err))
	} else {
		redisClient = client
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	recorder := events.NewRecorder(redisClient, cfg.Events.Channel, metricsSvc, logr)

	reg, err := registry.New(cfg.Secretary.ID, cfg.Registry.InitialPeriod, recorder)
	if err != nil {
		logr.Sugar().Fatalw("failed to construct registry", "error", err)
	}

	journalRepo := repository.NewJournalRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	registrySvc := service.NewRegistryService(reg, journalRepo, cacheSvc, metricsSvc, validate, logr)
	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		SecretaryID:           cfg.Secretary.ID,
		SecretaryEmail:        cfg.Secretary.Email,
		SecretaryFullName:     cfg.Secretary.FullName,
		SecretaryPasswordHash: cfg.Secretary.PasswordHash,
		AccessTokenSecret:     cfg.JWT.Secret,
		AccessTokenExpiry:     cfg.JWT.Expiration,
		Issuer:                cfg.JWT.Issuer,
	})

	registryHandler := handler.NewRegistryHandler(registrySvc, nil)
	if cfg.Exports.Enabled {
		registryHandler = handler.NewRegistryHandler(registrySvc, service.NewExportService(registrySvc, logr))
	}
	authHandler := handler.NewAuthHandler(authSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		api.GET("/registry", registryHandler.Info)
		api.GET("/students/:studentId/registrations", registryHandler.ListByPeriod)
		if cfg.Exports.Enabled {
			api.GET("/students/:studentId/registrations/export", registryHandler.Export)
		}

		secretary := api.Group("")
		secretary.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleSecretary))
		{
			secretary.PUT("/registry/period",
				middleware.Audit(auditRepo, models.AuditActionSetPeriod, "registry"),
				registryHandler.SetPeriod)
			secretary.POST("/registrations",
				middleware.Audit(auditRepo, models.AuditActionEnroll, "registrations"),
				registryHandler.Enroll)
			secretary.PATCH("/registrations/status",
				middleware.Audit(auditRepo, models.AuditActionChangeStatus, "registrations"),
				registryHandler.ChangeStatus)
			secretary.DELETE("/registrations",
				middleware.Audit(auditRepo, models.AuditActionRemove, "registrations"),
				registryHandler.Remove)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "period", cfg.Registry.InitialPeriod)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
