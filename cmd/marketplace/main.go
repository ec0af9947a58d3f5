package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aaravmahajanofficial/marketplace-catalog/docs"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/api/handlers"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/api/middleware"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/cache"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/config"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/health"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/metrics"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/observability"
	repository "github.com/aaravmahajanofficial/marketplace-catalog/internal/repositories"
	service "github.com/aaravmahajanofficial/marketplace-catalog/internal/services"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//	@title						Marketplace Catalog API
//	@version					1.0
//	@description				Public product catalog with a read-through cache, and seller-only catalog writes.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup
	tracer, err := observability.InitTracer(context.Background(), cfg.Otel, cfg.Env)
	if err != nil {
		slog.Error("❌ Error initializing tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Cache setup
	backend, redisClient := newCacheBackend(cfg)

	catalogCache := cache.NewCatalogCache(backend, repos.Product, cache.Options{
		ListingTTL:          cfg.Cache.ListingTTL,
		ItemTTL:             cfg.Cache.ItemTTL,
		OpTimeout:           cfg.Cache.OpTimeout,
		InvalidationTimeout: cfg.Cache.InvalidationTimeout,
		Observer:            metrics.CacheObserver{},
	})

	productService := service.NewProductService(repos.Product, catalogCache)
	productHandler := handlers.NewProductHandler(productService)
	authMiddleware := middleware.NewAuthMiddleware([]byte(cfg.Security.JWTKey))

	liveness, err := health.NewLivenessHandler()
	if err != nil {
		slog.Error("❌ Error creating health handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	readiness, err := health.NewFullHandler(cfg)
	if err != nil {
		slog.Error("❌ Error creating health handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized",
		slog.String("env", cfg.Env),
		slog.String("version", docs.SwaggerInfo.Version),
		slog.Bool("cache_enabled", cfg.Cache.Enabled),
		slog.String("cache_backend", cfg.Cache.Backend),
	)

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/products/{slug}", productHandler.GetProduct())
	routerMux.HandleFunc("POST /api/v1/products", authMiddleware.Authenticate(middleware.RequireSeller(productHandler.CreateProduct())))
	routerMux.HandleFunc("PUT /api/v1/products/{id}", authMiddleware.Authenticate(middleware.RequireSeller(productHandler.UpdateProduct())))
	routerMux.HandleFunc("DELETE /api/v1/products/{id}", authMiddleware.Authenticate(middleware.RequireSeller(productHandler.DeleteProduct())))
	routerMux.Handle("GET /health", liveness)
	routerMux.Handle("GET /health/full", readiness)
	routerMux.Handle("GET /metrics", metrics.Handler())
	routerMux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "marketplace-catalog")

	// Setup http server
	server := http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {

		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.String("error", err.Error()))
			done <- syscall.SIGTERM
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Redis connection closed")
		}
	}

	if err := repos.Close(); err != nil {
		slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Database connection closed")
	}

	if err := tracer.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
	}
}

// newCacheBackend builds the configured catalog cache backend. A nil backend
// disables caching. The returned redis client, if any, is closed by main.
func newCacheBackend(cfg *config.Config) (cache.Backend, *redis.Client) {

	if !cfg.Cache.Enabled {
		slog.Info("Catalog cache disabled; serving the catalog from the database")
		return nil, nil
	}

	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		return cache.NewMemoryBackend(cache.MemoryConfig{
			Capacity:  cfg.Cache.MemoryCapacity,
			NumShards: cfg.Cache.MemoryShards,
			MaxTTL:    max(cfg.Cache.ListingTTL, cfg.Cache.ItemTTL),
		}), nil

	default:
		client, err := repository.NewRedisClient(cfg)
		if client == nil {
			slog.Error("❌ Invalid redis configuration; catalog cache disabled", slog.String("error", err.Error()))
			return nil, nil
		}
		if err != nil {
			// reads fall back to the database until redis becomes reachable
			slog.Warn("⚠️ Redis is not reachable at startup", slog.String("error", err.Error()))
		}

		return cache.NewRedisBackend(client), client
	}
}
