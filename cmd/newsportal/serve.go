package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"newsportal/internal/cache"
	"newsportal/internal/database"
	"newsportal/internal/handlers"
	"newsportal/internal/middleware"
	"newsportal/internal/router"
	"newsportal/internal/store"
	"newsportal/internal/taxonomy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"category_prefix", cfg.CategoryPathPrefix,
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Seed the default root categories (no-op if any exist).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	aliases, err := taxonomy.LoadAliasFile(cfg.LegacyAliasFile)
	if err != nil {
		return fmt.Errorf("load legacy aliases: %w", err)
	}
	slog.Info("legacy alias table loaded", "entries", aliases.Len(), "file", cfg.LegacyAliasFile)

	// The listing cache is optional; without Valkey every request queries
	// PostgreSQL.
	var (
		listings handlers.ListingCache = cache.NopCache{}
		purger   handlers.ListingPurger = cache.NopCache{}
	)
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, listing cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		lc := cache.NewListingCache(valkeyClient, cache.DefaultListingTTL)
		listings, purger = lc, lc
	}

	categoryStore := store.NewCategoryStore(db)
	redirectStore := store.NewRedirectStore(db)
	articleStore := store.NewArticleStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	resolver := taxonomy.NewResolver(
		categoryStore,
		taxonomy.NewExpander(categoryStore),
		aliases,
		redirectStore,
		taxonomy.ResolverConfig{PathPrefix: cfg.CategoryPathPrefix, SiteRoot: cfg.SiteRoot},
	)

	purge := handlers.NewInvalidator(purger, cacheLogStore)
	limiter := middleware.NewRateLimiter(cfg.AdminRateLimit, time.Minute)
	defer limiter.Stop()

	r := router.New(router.Handlers{
		Categories: handlers.NewCategories(taxonomy.NewService(categoryStore), purge),
		Redirects:  handlers.NewRedirects(redirectStore, purge, cfg.SiteURL),
		Purges:     purge,
		Public:     handlers.NewPublic(resolver, articleStore, listings, handlers.DefaultPageSize),
	}, limiter, cfg.CategoryPathPrefix)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
