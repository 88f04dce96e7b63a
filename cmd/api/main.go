package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/http/handlers"
	appmw "github.com/academyhq/academy-bookings/internal/http/middleware"
	"github.com/academyhq/academy-bookings/internal/mailer"
	"github.com/academyhq/academy-bookings/internal/notify"
	"github.com/academyhq/academy-bookings/internal/platform/blob"
	"github.com/academyhq/academy-bookings/internal/repo/postgres"
	"github.com/academyhq/academy-bookings/internal/service"
	"github.com/academyhq/academy-bookings/pkg/config"
	"github.com/academyhq/academy-bookings/pkg/database"
	"github.com/academyhq/academy-bookings/pkg/events"
	"github.com/academyhq/academy-bookings/pkg/logger"
	mw "github.com/academyhq/academy-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(cfg.Database.URL); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	blobStore, err := blob.NewLocalStore(cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		logger.Error("Failed to initialize upload storage", "error", err)
		os.Exit(1)
	}

	// Repositories
	learnerRepo := postgres.NewLearnerRepository(pool)
	staffRepo := postgres.NewStaffRepository(pool)
	principalRepo := postgres.NewPrincipalRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	courseRepo := postgres.NewCourseRepository(pool)
	instructorRepo := postgres.NewInstructorRepository(pool)

	// Services
	authService := service.NewAuthService(learnerRepo, staffRepo, principalRepo, cfg)
	bookingService := service.NewBookingService(bookingRepo, courseRepo, eventBus, cfg)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, blobStore, eventBus)
	approvalService := service.NewApprovalService(bookingRepo, paymentRepo, eventBus, cfg)
	catalogService := service.NewCatalogService(courseRepo, instructorRepo)

	if err := authService.EnsureStaff(ctx, cfg.Staff.Name, cfg.Staff.Email, cfg.Staff.Password); err != nil {
		logger.Error("Failed to provision staff account", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewNotifier(eventBus, mailer.NewFromConfig(cfg.Email))
	if err := notifier.Start(); err != nil {
		logger.Error("Failed to start notifier", "error", err)
		os.Exit(1)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	learnerHandler := handlers.NewLearnerHandler(bookingService, paymentService)
	adminHandler := handlers.NewAdminHandler(approvalService, catalogService)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authLimit := appmw.RateLimit(redisClient, 10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.With(authLimit).Mount("/auth", authHandler.Routes())
		r.Mount("/courses", catalogHandler.Routes())

		r.Route("/bookings", func(r chi.Router) {
			r.Use(appmw.RequireRole(cfg.Auth.JWTSecret, domain.RoleLearner))
			r.Mount("/", learnerHandler.Routes())
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(appmw.RequireRole(cfg.Auth.JWTSecret, domain.RoleStaff))
			r.Mount("/", adminHandler.Routes())
		})
	})

	// Serve uploaded payment evidence
	r.Handle(cfg.Blob.BaseURL+"/*", http.StripPrefix(cfg.Blob.BaseURL+"/", http.FileServer(http.Dir(cfg.Blob.Dir))))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}
