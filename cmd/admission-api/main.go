package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/uni-admission-api/api/swagger"
	"github.com/noah-isme/uni-admission-api/internal/handler"
	"github.com/noah-isme/uni-admission-api/internal/middleware"
	"github.com/noah-isme/uni-admission-api/internal/repository"
	"github.com/noah-isme/uni-admission-api/internal/service"
	"github.com/noah-isme/uni-admission-api/pkg/cache"
	"github.com/noah-isme/uni-admission-api/pkg/config"
	"github.com/noah-isme/uni-admission-api/pkg/database"
	"github.com/noah-isme/uni-admission-api/pkg/export"
	"github.com/noah-isme/uni-admission-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-admission-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-admission-api/pkg/middleware/requestid"
)

// @title Admission Simulation API
// @version 1.0.0
// @description Capacity-constrained admission simulation with passing-score computation
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	// redis is an accelerator only; the server runs without it
	var cacheSvc *service.CacheService
	if cfg.Simulation.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, result cache disabled", "error", err)
			cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Simulation.CacheTTL, logr, false)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Simulation.CacheTTL, logr, true)
		}
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Simulation.CacheTTL, logr, false)
	}

	programRepo := repository.NewProgramRepository(db)
	applicantRepo := repository.NewApplicantRepository(db)
	priorityRepo := repository.NewPriorityRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	passingScoreRepo := repository.NewPassingScoreRepository(db)

	validate := validator.New()

	calculator := service.NewPassingScoreCalculator(programRepo, enrollmentRepo, passingScoreRepo, logr)
	simulationSvc := service.NewSimulationService(
		programRepo, applicantRepo, priorityRepo, enrollmentRepo, passingScoreRepo,
		calculator, db, cacheSvc, metricsSvc, logr,
	)
	ingestSvc := service.NewIngestService(
		programRepo, applicantRepo, priorityRepo, enrollmentRepo, passingScoreRepo,
		db, validate, logr,
	)
	applicantSvc := service.NewApplicantService(applicantRepo, priorityRepo, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, programRepo, logr)
	adminSvc := service.NewAdminService(
		enrollmentRepo, passingScoreRepo, applicantRepo, priorityRepo,
		simulationSvc, db, logr,
	)
	reportSvc := service.NewReportService(
		enrollmentRepo, passingScoreRepo,
		export.NewCSVExporter(), export.NewPDFExporter(), logr,
	)

	simulationHandler := handler.NewSimulationHandler(simulationSvc)
	ingestHandler := handler.NewIngestHandler(ingestSvc)
	applicantHandler := handler.NewApplicantHandler(applicantSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/passing-scores", simulationHandler.PassingScores)
		api.GET("/enrollments", enrollmentHandler.List)
		api.GET("/programs", enrollmentHandler.Programs)
		api.GET("/applicants", applicantHandler.ListApplicants)
		api.GET("/applicants/:id", applicantHandler.GetApplicant)
		api.GET("/priorities", applicantHandler.ListPriorities)
		api.POST("/ingest/batches", ingestHandler.ReplaceBatch)
		api.POST("/admin/clear-enrollment", adminHandler.ClearEnrollment)
		api.POST("/admin/clear", adminHandler.ClearAll)
		api.GET("/system/metrics", metricsHandler.Snapshot)
		if cfg.Reports.Enabled {
			api.GET("/reports/enrollment", reportHandler.Enrollment)
			api.GET("/reports/passing-scores", reportHandler.PassingScores)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
