package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/georgemunganga/vendor-categories/internal/config"
	"github.com/georgemunganga/vendor-categories/internal/httpx"
	"github.com/georgemunganga/vendor-categories/internal/logger"
	"github.com/georgemunganga/vendor-categories/internal/metrics"
	"github.com/georgemunganga/vendor-categories/internal/modules/auth"
	"github.com/georgemunganga/vendor-categories/internal/modules/user"
	"github.com/georgemunganga/vendor-categories/internal/modules/vendor"
	"github.com/georgemunganga/vendor-categories/internal/modules/vendorcategory"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer appLogger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Postgres.URL)
	if err != nil {
		appLogger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	appLogger.Info("connected to the database")

	collector := metrics.NewCollector("vendor_categories")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpx.AccessLog(appLogger))
	router.Use(collector.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	router.Handle("/metrics", collector.Handler())

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	auth.NewHandler(authService).RegisterRoutes(router)
	authenticate := auth.Authenticate(authService)

	// ── Vendor categories ───────────────────────────────────
	vendorRepo := vendor.NewPostgresRepository(db)
	vendorService := vendor.NewService(vendorRepo, cfg.Server.StoreBaseURL)

	categoryService := vendorcategory.NewService(
		vendorcategory.NewPostgresTermStore(db),
		vendorcategory.NewPostgresAssignmentStore(db),
		vendorService,
		vendorcategory.WithLogger(appLogger.Named("vendorcategory")),
		vendorcategory.WithMetrics(collector),
	)
	categoryHandler := vendorcategory.NewHandler(categoryService, vendorService, authenticate, appLogger.Named("vendorcategory"))

	// Store listings run through the category filter.
	vendorHandler := vendor.NewHandler(vendorService, authenticate, appLogger.Named("vendor"),
		vendorcategory.ListingFilter(categoryService, appLogger.Named("vendorcategory")),
	)

	router.Route("/api/v1", func(r chi.Router) {
		vendorHandler.RegisterRoutes(r)
		categoryHandler.RegisterRoutes(r)
	})
	categoryHandler.RegisterPages(router)

	// ── Start Server ────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("vendor category API starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Server.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server shutdown", zap.Error(err))
	}
}
