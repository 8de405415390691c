package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockscope/internal/cache"
	"stockscope/internal/config"
	"stockscope/internal/db"
	"stockscope/internal/handler"
	"stockscope/internal/job"
	"stockscope/internal/provider"
	"stockscope/internal/repository"
	"stockscope/internal/service"
	"stockscope/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "stockscope/docs"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initTracerFunc = tracing.InitTracer
	newStoreFunc   = newStore
	newSourceFunc  = provider.NewSource
	connectDBFunc  = func(ctx context.Context, url string) (repository.PgxPool, func(), error) {
		pool, err := db.ConnectPostgres(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return pool, pool.Close, nil
	}
	startWarmerFunc        = func(w *job.CacheWarmer, ctx context.Context) { go w.Start(ctx) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Stockscope API
// @version         1.0
// @description     Stock quotes, daily prices, moving averages and company profiles.

// @host      localhost:8000
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := loadEnvFunc(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Settings{
		Enabled:  cfg.TracingEnabled,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	store := newStoreFunc(ctx, cfg)

	source, err := newSourceFunc(cfg.Provider, cfg.ProviderBaseURL)
	if err != nil {
		log.Fatalf("failed to configure provider: %v", err)
	}
	if cfg.APIKey() == "" {
		log.Printf("warning: no API key configured for provider %s", source.Name())
	}
	client := provider.NewClient(tracer, source, cfg.APIKey(), store,
		provider.WithTimeout(cfg.ProviderTimeout),
		provider.WithLimiter(provider.PerMinute(cfg.ProviderPerMinute)),
	)
	stocks := service.NewStockService(tracer, client)

	h := handler.New(tracer, stocks)

	if cfg.DatabaseURL != "" {
		pool, closePool, err := connectDBFunc(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer closePool()

		enableAccounts(ctx, tracer, cfg, h, pool, stocks)
	} else {
		log.Println("DATABASE_URL not set, user and watchlist routes disabled")
	}

	r := newRouterFunc()
	r.Use(corsMiddleware(cfg))
	r.Use(otelgin.Middleware(tracing.ServiceName))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Printf("Listening on %s (provider %s)", cfg.HTTPAddr, source.Name())
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

// corsMiddleware allows the configured origins, falling back to the local
// frontend origins when none are set.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		log.Println("no CORS origins configured, allowing local frontend origins")
		origins = config.DefaultCORSOrigins()
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// newStore picks the cache backend. A redis connection failure falls back
// to the in-process store so the API keeps serving.
func newStore(ctx context.Context, cfg *config.Config) cache.Store {
	if cfg.CacheBackend != config.CacheRedis {
		return cache.NewMemoryStore()
	}
	client, err := cache.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("redis unavailable, using in-memory cache: %v", err)
		return cache.NewMemoryStore()
	}
	return cache.NewRedisStore(client)
}

func enableAccounts(ctx context.Context, tracer trace.Tracer, cfg *config.Config, h *handler.Handler, pool repository.PgxPool, stocks *service.StockService) {
	users := service.NewUserService(tracer,
		repository.NewUserRepository(pool, tracer),
		service.NewSessionStore(cfg.SessionTTL),
	)
	watchlists := service.NewWatchlistService(tracer, repository.NewWatchlistRepository(pool, tracer))
	h.EnableAccounts(users, watchlists)

	warmer := job.NewCacheWarmer(tracer, watchlists, stocks, cfg.WarmPollSecs)
	if warmer.Enabled() {
		startWarmerFunc(warmer, ctx)
	}
}
