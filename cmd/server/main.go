package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/config"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/alert"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/api"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/auth"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/ledger"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/provider"
	openaiprovider "github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/provider/openai"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/seeder"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/telemetry"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/ttscache"
	"github.com/pssabdus/hidrazy-fluent-journey-sub003/pkg/ratelimit"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Init telemetry
	shutdownTracer, err := telemetry.InitTracer("hidrazy-usage", cfg)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer shutdownTracer()

	// 3. Connect PostgreSQL
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping postgres: %v", err)
	}
	log.Println("PostgreSQL connected")

	// 4. Connect Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to ping redis: %v", err)
	}
	log.Println("Redis connected")

	// 5. Init auth
	authStore := auth.NewPostgresStore(pool)
	authMiddleware := auth.NewMiddleware(authStore, rdb)

	// 6. Init ledger
	ledgerStore := ledger.NewPostgresStore(pool)

	// 7. Init burst limiter and TTS cache
	limiter := ratelimit.NewLimiter(rdb, cfg.RequestsPerMinute, time.Minute)
	audioCache := ttscache.New(rdb, 24*time.Hour)

	// 8. Init upstream providers behind circuit breakers
	gateway := provider.NewGateway(
		openaiprovider.NewChat(cfg.OpenAIAPIKey),
		openaiprovider.NewSpeech(cfg.OpenAIAPIKey),
	)

	// 9. Init handler
	tracer := otel.GetTracerProvider().Tracer("hidrazy-usage")
	handler := api.NewHandler(ledgerStore, cfg.Limits, gateway, gateway, audioCache, tracer)

	// 10. Start the advisory cost monitor
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	monitor := alert.NewMonitor(ledgerStore, cfg.Limits.MonthlyCostAlertUSD, time.Hour)
	go monitor.Run(monitorCtx)

	// 11. Seed test token if RUN_SEED=true
	if os.Getenv("RUN_SEED") == "true" {
		seeder.SeedTestToken(ctx, authStore)
	}

	// 12. Init Chi router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(api.CORS)

	// Public routes
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"hidrazy-usage"}`))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(api.RateLimit(limiter))
		r.Post("/v1/chat", handler.HandleChat)
		r.Post("/v1/speech", handler.HandleSpeech)
		r.Get("/v1/usage", handler.HandleGetUsage)
		r.Post("/v1/usage/check", handler.HandleCheckLimits)
	})

	// 13. Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Hidrazy usage service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down gracefully...")
	stopMonitor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
