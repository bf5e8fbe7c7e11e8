package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"mentora/internal/config"
	"mentora/internal/database"
	"mentora/internal/handlers"
	"mentora/internal/jobs"
	"mentora/internal/logging"
	"mentora/internal/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Mentora Adaptive Engine...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, sweep interval: %dm, daily hour: %d)",
		cfg.Port, cfg.SweepIntervalMinutes, cfg.DailyHour)

	if cfg.MongoURI == "" {
		log.Fatal("❌ MONGODB_URI environment variable is required")
	}
	mongoDB, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close(context.Background())

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := mongoDB.Initialize(initCtx); err != nil {
		log.Fatalf("❌ Failed to initialize MongoDB indexes: %v", err)
	}

	// Redis is optional: without it, adaptation events degrade to logged no-ops
	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable: %v (adaptation events disabled)", err)
			redisService = nil
		}
	}

	instanceID := uuid.New().String()

	userService := services.NewUserService(mongoDB)
	analyticsService := services.NewAnalyticsService(mongoDB)
	recommendationService := services.NewRecommendationService(mongoDB)
	ruleService := services.NewRuleService(mongoDB)
	notificationService := services.NewNotificationService(redisService, instanceID)

	if err := ruleService.EnsureSeedRules(initCtx); err != nil {
		log.Fatalf("❌ Failed to seed adaptation rules: %v", err)
	}

	engine, err := jobs.NewEngine(jobs.Config{
		SweepInterval: time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
		DailyHour:     cfg.DailyHour,
		DailyCron:     cfg.DailySweepCron,
		RetentionDays: cfg.RetentionDays,
		DailyRate:     cfg.DailySweepRate,
	}, jobs.Deps{
		Users:           userService,
		Analytics:       analyticsService,
		Recommendations: recommendationService,
		Rules:           ruleService,
		Profiles:        userService,
		Notifier:        notificationService,
		Planner:         notificationService,
		Content:         notificationService,
		Metrics:         jobs.InitMetrics(),
	})
	if err != nil {
		log.Fatalf("❌ Failed to create adaptive engine: %v", err)
	}

	// Start runs the first sweep synchronously before arming timers
	go engine.Start()

	app := fiber.New(fiber.Config{
		AppName:      "Mentora Adaptive Engine v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("mentora")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	healthHandler := handlers.NewHealthHandler(mongoDB, engine)
	adaptiveHandler := handlers.NewAdaptiveHandler(engine)

	app.Get("/health", healthHandler.Handle)
	app.Get("/api/adaptive/status", adaptiveHandler.Status)
	app.Post("/api/adaptive/sweep", adaptiveHandler.TriggerSweep)

	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("🕐 Background sweeps: regular every %dm, comprehensive daily at %d:00", cfg.SweepIntervalMinutes, cfg.DailyHour)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		engine.Stop()

		if redisService != nil {
			redisService.Close()
		}

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
