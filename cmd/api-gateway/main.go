package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/uni-timetable-api/api/swagger"
	"github.com/noah-isme/uni-timetable-api/internal/handler"
	"github.com/noah-isme/uni-timetable-api/internal/middleware"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/repository"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/cache"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	"github.com/noah-isme/uni-timetable-api/pkg/database"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
	"github.com/noah-isme/uni-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

// @title University Timetable API
// @version 1.0.0
// @description Weekly timetable placement engine with shared-lecture fan-out
// @BasePath /
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	appointmentRepo := repository.NewAppointmentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	userRepo := repository.NewUserRepository(db)

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()
	grid := models.NewTimeGrid(cfg.Grid.FirstHour, cfg.Grid.LastHour)
	board := models.NewBoard()

	metricsSvc := service.NewMetricsService()

	placementSvc := service.NewPlacementService(appointmentRepo, groupRepo, courseRepo, roomRepo, board, grid, validate, logr)

	var querySvc *service.ScheduleQueryService
	if cacheRepo != nil {
		querySvc = service.NewScheduleQueryService(appointmentRepo, roomRepo, cacheRepo, metricsSvc, cfg.Cache.ScheduleTTL, logr)
	} else {
		querySvc = service.NewScheduleQueryService(appointmentRepo, roomRepo, nil, metricsSvc, cfg.Cache.ScheduleTTL, logr)
	}

	exportSvc := service.NewExportService(appointmentRepo, export.NewPDFExporter(), grid, service.ExportConfig{
		Institution:  cfg.Export.Institution,
		FooterNotice: cfg.Export.FooterNotice,
	}, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := placementSvc.LoadBoard(ctx); err != nil {
		cancel()
		logr.Fatal("failed to load working board", zap.Error(err))
	}
	cancel()

	placementHandler := handler.NewPlacementHandler(placementSvc, querySvc, metricsSvc)
	scheduleHandler := handler.NewScheduleHandler(querySvc, exportSvc)
	authHandler := handler.NewAuthHandler(authSvc)
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
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusServiceUnavailable, "database unreachable"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/snapshot", metricsHandler.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/departments", placementHandler.Departments)
	authed.GET("/groups/available", placementHandler.AvailableGroups)
	authed.GET("/groups/:id/departments", placementHandler.DepartmentsFor)
	authed.GET("/placements/:id", placementHandler.Get)
	authed.GET("/schedules", scheduleHandler.Week)
	authed.GET("/schedules/export", scheduleHandler.Export)
	authed.GET("/instructors/:id/schedule", scheduleHandler.Instructor)
	authed.GET("/rooms", scheduleHandler.Rooms)
	authed.GET("/rooms/:name/schedule", scheduleHandler.Room)

	planners := authed.Group("")
	planners.Use(middleware.RequireRole(models.RoleAdmin, models.RolePlanner))

	planners.POST("/placements", placementHandler.Place)
	planners.POST("/placements/check", placementHandler.Check)
	planners.DELETE("/placements/:id", placementHandler.Unplace)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
