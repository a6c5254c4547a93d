package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tourspots/explorer/internal/api"
	"github.com/tourspots/explorer/internal/cache"
	"github.com/tourspots/explorer/internal/destination"
	"github.com/tourspots/explorer/internal/storage"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	port := getEnv("PORT", "8080")
	redisURL := os.Getenv("REDIS_URL")
	databaseURL := os.Getenv("DATABASE_URL")

	ctx := context.Background()

	embedded, err := destination.LoadCatalog()
	if err != nil {
		return fmt.Errorf("loading embedded catalog: %w", err)
	}

	backends := map[string]api.Pinger{"redis": nil, "db": nil}

	// Cache substrate: Redis when configured, in-process map otherwise.
	var store cache.Store = cache.NewMemoryStore()
	if redisURL != "" {
		redisClient, err := cache.Connect(ctx, redisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		store = cache.NewRedisStore(redisClient)
		backends["redis"] = &redisPingerAdapter{client: redisClient}
	} else {
		log.Warn("REDIS_URL not set, using in-memory response cache")
	}
	cacheLayer := cache.New(store)

	// Catalog source: Postgres when configured, with the embedded
	// records as the fail-open fallback; embedded only otherwise.
	var catalog destination.Source = embedded
	if databaseURL != "" {
		pool, err := storage.Connect(ctx, databaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		if err := storage.RunMigrations(ctx, pool); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}

		repo := storage.NewRepository(pool)
		dests, err := embedded.Destinations(ctx)
		if err != nil {
			return fmt.Errorf("reading embedded catalog: %w", err)
		}
		if err := repo.Seed(ctx, dests); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
		log.Info("catalog seeded", "destinations", len(dests))

		catalog = destination.NewFallbackSource(repo, embedded, log)
		backends["db"] = &pgxPoolPinger{pool: pool}
	} else {
		log.Warn("DATABASE_URL not set, serving the embedded catalog")
	}

	provider := destination.NewProvider(catalog, cacheLayer, log)
	handlers := api.NewHandlers(provider, log)
	router := api.NewRouter(handlers, log, backends)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// pgxPoolPinger adapts pgxpool.Pool to the api.Pinger interface.
type pgxPoolPinger struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p *pgxPoolPinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// redisPingerAdapter adapts redis.Client to the api.Pinger interface.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
