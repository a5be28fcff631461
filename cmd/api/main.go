package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/brandlens/internal/application"
	appanalytics "github.com/bryanwahyu/brandlens/internal/application/analytics"
	appreviews "github.com/bryanwahyu/brandlens/internal/application/reviews"
	"github.com/bryanwahyu/brandlens/internal/config"
	domai "github.com/bryanwahyu/brandlens/internal/domain/ai"
	"github.com/bryanwahyu/brandlens/internal/domain/assets"
	domain "github.com/bryanwahyu/brandlens/internal/domain/reviews"
	"github.com/bryanwahyu/brandlens/internal/domain/reviewerrors"
	localai "github.com/bryanwahyu/brandlens/internal/infra/ai/local"
	openaiclient "github.com/bryanwahyu/brandlens/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/brandlens/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/brandlens/internal/infra/db/postgres"
	sqlitep "github.com/bryanwahyu/brandlens/internal/infra/db/sqlite"
	"github.com/bryanwahyu/brandlens/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/brandlens/internal/infra/storage"
	"github.com/bryanwahyu/brandlens/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database sesuai driver
	var (
		db         *sql.DB
		reviewRepo domain.Repository
		assetRepo  assets.Repository
		errRepo    reviewerrors.Repository
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		reviewRepo = mysqlp.NewReviewRepository(db)
		assetRepo = mysqlp.NewAssetRepository(db)
		errRepo = mysqlp.NewReviewErrorRepository(db)
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		reviewRepo = postgresp.NewReviewRepository(db)
		assetRepo = postgresp.NewAssetRepository(db)
		errRepo = postgresp.NewReviewErrorRepository(db)
	case "sqlite", "":
		db, err = sqlitep.Open(cfg.SQLitePath())
		if err != nil {
			log.Fatalf("sqlite open error: %v", err)
		}
		reviewRepo = sqlitep.NewReviewRepository(db)
		assetRepo = sqlitep.NewAssetRepository(db)
		errRepo = sqlitep.NewReviewErrorRepository(db)
	default:
		log.Fatalf("unknown database driver: %s", cfg.Database.Driver)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// pilih analyzer: openai kalau ada key, kalau tidak pakai heuristik lokal
	var analyzer domai.Client
	if cfg.OpenAI.APIKey != "" {
		analyzer = openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		log.Println("no openai key configured, using local analyzer")
		analyzer = localai.NewClient()
	}

	// init services
	svc := &appreviews.Service{
		Reviews:  reviewRepo,
		Assets:   assetRepo,
		Errors:   errRepo,
		Files:    store,
		Analyzer: analyzer,
		Model:    cfg.OpenAI.Model,
		Clock:    application.SystemClock{},
	}
	analyticsSvc := appanalytics.NewService(reviewRepo)

	// init router + middleware chain
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if cfg.Auth.Enabled {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
		mux.Use(middleware.RequireValidTenant)
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	mux.Use(limiter.Middleware)

	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Mount("/", httpserver.NewRouter(svc, analyticsSvc, cfg.MaxUploadBytes()))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
