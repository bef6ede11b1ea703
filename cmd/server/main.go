package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/chairtime/internal/availability"
	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/internal/handler"
	"github.com/yourorg/chairtime/internal/infrastructure/logger"
	"github.com/yourorg/chairtime/internal/infrastructure/redis"
	"github.com/yourorg/chairtime/internal/notification"
	"github.com/yourorg/chairtime/internal/observability/metrics"
	"github.com/yourorg/chairtime/internal/observability/tracing"
	"github.com/yourorg/chairtime/internal/repository"
	"github.com/yourorg/chairtime/internal/security/auth"
	"github.com/yourorg/chairtime/internal/security/middleware"
	"github.com/yourorg/chairtime/internal/security/ratelimit"
	"github.com/yourorg/chairtime/internal/service"
	"github.com/yourorg/chairtime/internal/worker"
	"github.com/yourorg/chairtime/pkg/cache"
	"github.com/yourorg/chairtime/pkg/config"
	"github.com/yourorg/chairtime/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting chairtime server", slog.String("environment", cfg.Environment))

	// 3. Initialize tracing
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "chairtime", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize Redis client (shared rate limiter state)
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 5. Initialize Postgres connection pool and run migrations
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool.GetDB()); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Initialize repositories
	db := pool.GetDB()
	tenantRepo := repository.NewPostgresTenantRepository(db, log)
	catalogRepo := repository.NewPostgresCatalogRepository(db, log)
	scheduleRepo := repository.NewPostgresScheduleRepository(db, log)
	bookingRepo := repository.NewPostgresBookingRepository(db, log)
	intentRepo := repository.NewPostgresPaymentIntentRepository(db, log)
	webhookRepo := repository.NewPostgresWebhookEventRepository(db, log)

	// 7. Initialize services
	slicer, err := availability.NewSlicer(cfg.AvailabilityMode, time.Duration(cfg.SlotStepMinutes)*time.Minute)
	if err != nil {
		log.Error("invalid availability mode", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tenantCache := cache.New[*domain.Tenant](5 * time.Minute)
	resolver := service.NewTenantResolver(tenantRepo, tenantCache, log)
	availabilitySvc := service.NewAvailabilityService(catalogRepo, scheduleRepo, bookingRepo, slicer, cfg.MaxRangeDays, log)
	notifier := notification.NewLogDispatcher(log)
	bookingSvc := service.NewBookingService(bookingRepo, catalogRepo, notifier, log)
	checkoutSvc := service.NewCheckoutService(catalogRepo, intentRepo, bookingRepo, bookingSvc, cfg.IntentTTL, log)
	conflictSvc := service.NewConflictService(bookingRepo, scheduleRepo, bookingSvc, log)
	webhookSvc := service.NewWebhookService(webhookRepo, intentRepo, checkoutSvc, log)

	// 8. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "chairtime")
	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow, log)
	requireStaff := middleware.RequireStaff(tokenManager, log)

	// 9. Initialize handlers and routes
	availabilityHandler := handler.NewAvailabilityHandler(resolver, availabilitySvc, cfg.MaxRangeDays, log)
	intentHandler := handler.NewCheckoutIntentHandler(checkoutSvc, log)
	confirmHandler := handler.NewCheckoutConfirmHandler(checkoutSvc, log)
	bookingsHandler := handler.NewBookingsHandler(bookingSvc, log)
	conflictsHandler := handler.NewConflictsHandler(conflictSvc, log)
	forceHandler := handler.NewForceBookingHandler(conflictSvc, log)
	statusHandler := handler.NewBookingStatusHandler(bookingSvc, log)
	webhookHandler := handler.NewWebhookHandler(webhookSvc, cfg.WebhookSecret, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	mux := http.NewServeMux()
	mux.Handle("GET /api/availability", availabilityHandler)
	mux.Handle("POST /api/checkout/intent", intentHandler)
	mux.Handle("POST /api/checkout/confirm", confirmHandler)
	mux.Handle("POST /api/webhooks/payment", webhookHandler)
	mux.Handle("POST /api/bookings", requireStaff(bookingsHandler))
	mux.Handle("GET /api/bookings/conflicts", requireStaff(conflictsHandler))
	mux.Handle("POST /api/bookings/force", requireStaff(forceHandler))
	mux.Handle("PATCH /api/bookings/{id}/status", requireStaff(statusHandler))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Live)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Authorization", "X-Webhook-Signature"},
	})

	// Chain middleware: request ID -> metrics -> CORS -> rate limit. The
	// budget applies only to the public booking surface; staff calls,
	// webhooks and probes bypass it.
	rootHandler := middleware.RequestID(log)(
		metrics.HTTPMetricsMiddleware(
			corsMiddleware.Handler(
				middleware.RateLimit(rateLimiter, publicSurface, log)(mux),
			),
		),
	)
	rootHandler = otelhttp.NewHandler(rootHandler, "chairtime")

	// 10. Start intent sweeper in background
	sweeper := worker.NewIntentSweeper(intentRepo, log, cfg.SweepInterval)
	go sweeper.Start(ctx)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("availability_mode", cfg.AvailabilityMode),
		slog.Int("rate_limit", cfg.RateLimitRequests),
		slog.Duration("rate_limit_window", cfg.RateLimitWindow),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stop sweeper
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

// publicSurface reports whether a request belongs to the unauthenticated
// booking surface, which carries the shared rate limit budget.
func publicSurface(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/availability") ||
		strings.HasPrefix(r.URL.Path, "/api/checkout/")
}
