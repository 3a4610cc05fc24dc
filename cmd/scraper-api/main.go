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

	"github.com/atoyeh09/LinkBazar/internal/api"
	"github.com/atoyeh09/LinkBazar/internal/config"
	"github.com/atoyeh09/LinkBazar/internal/database"
	"github.com/atoyeh09/LinkBazar/internal/events"
	"github.com/atoyeh09/LinkBazar/internal/fetcher"
	"github.com/atoyeh09/LinkBazar/internal/scraper"
	"github.com/atoyeh09/LinkBazar/internal/search"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []scraper.Option{}
	var catalog api.ProductCatalog

	// Optional persistence: snapshots plus transactional outbox relayed
	// to a redis stream.
	if cfg.Database.Enabled {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure database schema", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}

		relay := database.NewRelay(db, redisClient, logger, database.RelayConfig{
			PollInterval: 5 * time.Second,
			BatchSize:    100,
		})
		go func() {
			if err := relay.Start(ctx); err != nil && err != context.Canceled {
				logger.Error("relay stopped with error", "error", err)
			}
		}()

		publisher := events.NewPublisher(db, cfg.Redis.Stream, logger)
		opts = append(opts, scraper.WithStore(publisher))

		snapshots := database.NewSnapshotRepository(db)
		catalog = snapshots

		// Expire snapshots past the retention window.
		if cfg.Database.RetentionDays > 0 {
			retention := time.Duration(cfg.Database.RetentionDays) * 24 * time.Hour
			go func() {
				ticker := time.NewTicker(12 * time.Hour)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						purged, err := snapshots.PurgeOlderThan(ctx, time.Now().Add(-retention))
						if err != nil {
							logger.Error("failed to purge snapshots", "error", err)
							continue
						}
						if purged > 0 {
							logger.Info("purged stale snapshots", "count", purged)
						}
					}
				}
			}()
		}
	}

	// Optional browser fallback for bot-blocked pages.
	if cfg.Scraper.BrowserEnabled {
		browser, err := fetcher.NewBrowserFetcher(&fetcher.BrowserOptions{
			Headless: cfg.Scraper.BrowserHeadless,
			Timeout:  time.Duration(cfg.Scraper.FetchTimeoutSeconds) * time.Second,
		})
		if err != nil {
			logger.Error("failed to initialize browser", "error", err)
			os.Exit(1)
		}
		defer browser.Close()
		opts = append(opts, scraper.WithBrowser(browser))
	}

	var metrics *scraper.Metrics
	if cfg.Scraper.MetricsEnabled {
		metrics = scraper.NewMetrics()
		opts = append(opts, scraper.WithMetrics(metrics))
	}

	// Initialize services
	staticFetcher := fetcher.NewStaticFetcher(time.Duration(cfg.Scraper.FetchTimeoutSeconds) * time.Second)
	provider := search.NewDuckDuckGo(cfg.Search.RequestsPerSecond)

	scraperService := scraper.NewService(staticFetcher, provider, scraper.Config{
		MinPriceThreshold: cfg.Scraper.MinPriceThreshold,
		MaxImages:         cfg.Scraper.MaxImages,
		MaxSearchAttempts: cfg.Search.MaxAttempts,
		DefaultRegion:     cfg.Search.DefaultRegion,
		CacheSize:         cfg.Scraper.CacheSize,
		CacheTTL:          time.Duration(cfg.Scraper.CacheTTLSeconds) * time.Second,
	}, logger, opts...)

	// Initialize API handlers and router
	handlers := api.NewHandlers(scraperService, catalog, logger)
	routerOpts := api.RouterOptions{
		Timeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}
	if metrics != nil {
		routerOpts.Registry = metrics.Registry
	}
	router := api.NewRouter(handlers, routerOpts)

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
