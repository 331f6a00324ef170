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
	"github.com/prohmpiriya/community-events/internal/di"
	"github.com/prohmpiriya/community-events/internal/handler"
	"github.com/prohmpiriya/community-events/internal/metrics"
	"github.com/prohmpiriya/community-events/internal/service"
	"github.com/prohmpiriya/community-events/migrations"
	"github.com/prohmpiriya/community-events/pkg/config"
	"github.com/prohmpiriya/community-events/pkg/database"
	"github.com/prohmpiriya/community-events/pkg/logger"
	"github.com/prohmpiriya/community-events/pkg/middleware"
	"github.com/prohmpiriya/community-events/pkg/redis"
	"github.com/prohmpiriya/community-events/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	serviceName := cfg.OTel.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Community Events Service...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)
	metrics.Init()

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		DSN:             cfg.Database.DSN(),
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db.Pool()); err != nil {
			appLog.Fatal(fmt.Sprintf("Failed to apply migrations: %v", err))
		}
		appLog.Info("Database migrations applied")
	}

	// Initialize Redis connection (optional - idempotent replay is disabled without it)
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisCfg := &redis.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			MinIdleConns:  cfg.Redis.MinIdleConns,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			MaxRetries:    3,
			RetryInterval: time.Second,
			EnableTracing: cfg.OTel.Enabled,
		}
		redisClient, err = redis.NewClient(ctx, redisCfg)
		if err != nil {
			appLog.Warn(fmt.Sprintf("Redis connection failed (idempotency disabled): %v", err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info(fmt.Sprintf("Redis connected (%s)", redisCfg.Addr()))
		}
	}

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.ParticipationTopic,
			ServiceName: serviceName,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		} else {
			eventPublisher = kafkaPublisher
			appLog.Info("Kafka event publisher connected")
		}
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
		ServiceConfig: &service.ParticipationServiceConfig{
			MaxRetries:      cfg.Participation.MaxRetries,
			InitialInterval: cfg.Participation.InitialInterval,
			MaxInterval:     cfg.Participation.MaxInterval,
		},
	})
	defer container.Close()

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(telemetry.TracingMiddleware(serviceName))
	router.Use(middleware.Logger(appLog))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	jwtCfg := middleware.JWTConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}
	optionalJWT := jwtCfg
	optionalJWT.Optional = true

	// Repeated participation POSTs replay the stored response when Redis is available
	var idempotent gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if redisClient != nil {
		idempotent = middleware.Idempotency(middleware.IdempotencyConfig{
			Redis:  redisClient,
			TTL:    cfg.Redis.IdempotencyTTL,
			Logger: appLog,
		})
	}

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Public reads; a token, if present, lets admins see drafts
		public := v1.Group("")
		public.Use(middleware.JWTMiddleware(optionalJWT))
		{
			public.GET("/events", container.EventHandler.List)
			public.GET("/events/:id", container.EventHandler.GetByID)
			public.GET("/events/:id/availability", container.EventHandler.Availability)
			public.GET("/events/:id/sessions", container.SessionHandler.ListByEvent)
			public.GET("/events/:id/ticket-types", container.TicketTypeHandler.ListByEvent)
			public.GET("/sessions/:id", container.SessionHandler.GetByID)
			public.GET("/ticket-types/:id", container.TicketTypeHandler.GetByID)
		}

		// Participation endpoints for the authenticated caller
		user := v1.Group("")
		user.Use(middleware.JWTMiddleware(jwtCfg))
		{
			user.GET("/events/:id/participation", container.ParticipationHandler.GetStatus)
			user.POST("/events/:id/rsvp", idempotent, container.ParticipationHandler.CreateRSVP)
			user.POST("/events/:id/tickets", idempotent, container.ParticipationHandler.CreateTicketPurchase)
			user.POST("/events/:id/participation/cancel", container.ParticipationHandler.Cancel)
			user.GET("/me/participations", container.ParticipationHandler.ListMine)
		}

		// Administration
		admin := v1.Group("")
		admin.Use(middleware.JWTMiddleware(jwtCfg))
		admin.Use(middleware.RequireRole(handler.RoleAdmin))
		{
			admin.POST("/events", container.EventHandler.Create)
			admin.PUT("/events/:id", container.EventHandler.Update)
			admin.DELETE("/events/:id", container.EventHandler.Delete)
			admin.POST("/events/:id/publish", container.EventHandler.Publish)
			admin.GET("/events/:id/participations", container.ParticipationHandler.ListByEvent)
			admin.GET("/participations/:id/history", container.ParticipationHandler.History)

			admin.POST("/events/:id/sessions", container.SessionHandler.Create)
			admin.PUT("/sessions/:id", container.SessionHandler.Update)
			admin.DELETE("/sessions/:id", container.SessionHandler.Delete)

			admin.POST("/events/:id/ticket-types", container.TicketTypeHandler.Create)
			admin.PUT("/ticket-types/:id", container.TicketTypeHandler.Update)
			admin.DELETE("/ticket-types/:id", container.TicketTypeHandler.Delete)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Community Events Service listening on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
