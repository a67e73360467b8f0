package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/teach-app/teach-api/api/swagger"
	"github.com/teach-app/teach-api/internal/handler"
	"github.com/teach-app/teach-api/internal/middleware"
	"github.com/teach-app/teach-api/internal/repository"
	"github.com/teach-app/teach-api/internal/service"
	"github.com/teach-app/teach-api/pkg/cache"
	"github.com/teach-app/teach-api/pkg/config"
	"github.com/teach-app/teach-api/pkg/database"
	appErrors "github.com/teach-app/teach-api/pkg/errors"
	"github.com/teach-app/teach-api/pkg/export"
	"github.com/teach-app/teach-api/pkg/logger"
	corsmiddleware "github.com/teach-app/teach-api/pkg/middleware/cors"
	reqidmiddleware "github.com/teach-app/teach-api/pkg/middleware/requestid"
	"github.com/teach-app/teach-api/pkg/response"
)

// @title Teach API
// @version 1.0.0
// @description Tutoring platform backend: weekly plans, availability projection and session booking
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	liveClassRepo := repository.NewLiveClassRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr, metricsSvc)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "teach-api",
	})
	userSvc := service.NewUserService(userRepo, cacheRepo, cfg.Recommendations.Count, cfg.Recommendations.CacheTTL, validate, logr)
	projector := service.NewAvailabilityProjector(cfg.Availability.WindowDays)
	availabilitySvc := service.NewAvailabilityService(userRepo, cacheRepo, cfg.Availability.CacheTTL, logr)
	scheduleSvc := service.NewScheduleService(userRepo, projector, availabilitySvc, validate, logr)
	classSvc := service.NewClassService(classRepo, userRepo, validate, logr)
	bookingSvc := service.NewBookingService(userRepo, classRepo, liveClassRepo, availabilitySvc, validate, logr)
	reviewSvc := service.NewReviewService(reviewRepo, liveClassRepo, classRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, userSvc, export.NewSchedulePDFExporter(), metricsSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, availabilitySvc, metricsSvc)
	classHandler := handler.NewClassHandler(classSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.ErrNotFound)
	})

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

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/users/me", userHandler.Me)
	authed.PUT("/users/me", userHandler.UpdateProfile)
	authed.PUT("/users/me/teacher-status", userHandler.SetTeacherStatus)
	authed.GET("/users/recommended", userHandler.Recommended)
	authed.GET("/users/:id", userHandler.Get)
	authed.GET("/users", userHandler.Search)

	authed.GET("/tutors/:id/schedule", scheduleHandler.Get)
	authed.GET("/tutors/:id/schedule/export", scheduleHandler.Export)
	authed.GET("/tutors/:id/availability", bookingHandler.Availability)
	authed.GET("/tutors/:id/availability/candidates", bookingHandler.Candidates)
	authed.GET("/tutors/:id/classes", classHandler.ListByTeacher)

	tutorOnly := authed.Group("")
	tutorOnly.Use(middleware.RequireTeacher())
	tutorOnly.POST("/tutors/me/schedule/slots", scheduleHandler.AddSlot)
	tutorOnly.PUT("/tutors/me/schedule/slots/:slotId", scheduleHandler.UpdateSlot)
	tutorOnly.DELETE("/tutors/me/schedule/slots/:slotId", scheduleHandler.RemoveSlot)
	tutorOnly.POST("/classes", classHandler.Create)
	tutorOnly.PUT("/classes/:id", classHandler.Update)
	tutorOnly.DELETE("/classes/:id", classHandler.Delete)

	authed.GET("/classes/:id", classHandler.Get)
	authed.GET("/classes/:id/reviews", reviewHandler.ListByClass)

	authed.POST("/bookings", bookingHandler.Book)
	authed.GET("/bookings/teaching", bookingHandler.Teaching)
	authed.GET("/bookings/learning", bookingHandler.Learning)

	authed.POST("/reviews", reviewHandler.Submit)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
