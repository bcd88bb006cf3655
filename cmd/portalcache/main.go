package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/harborcms/portalcache/internal/admin"
	"github.com/harborcms/portalcache/internal/cache"
	"github.com/harborcms/portalcache/internal/cacheable"
	"github.com/harborcms/portalcache/internal/config"
	"github.com/harborcms/portalcache/internal/metrics"
	"github.com/harborcms/portalcache/internal/portal"
	"github.com/harborcms/portalcache/internal/status"
)

// portalCaches are the named caches the portal registers at startup. Each
// starts disabled unless the persisted status file says otherwise. Pages are
// served out of the "page" cache.
var portalCaches = []string{"page", "portlet", "site-properties"}

// contactModel is the form description for the shipped contact page.
type contactModel struct {
	Email   portal.FormField
	Message portal.FormField
}

// pageModel supplies the render model per page. In a full deployment the
// content repository sits behind this; the shipped templates only need the
// static form descriptions.
func pageModel(page, _ string, _ *http.Request) any {
	if page == "contact" {
		return contactModel{
			Email:   portal.FormField{Name: "email", Label: "Email", Mandatory: true},
			Message: portal.FormField{Name: "message"},
		}
	}
	return nil
}

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("provider", cfg.Cache.Provider).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Str("status_file", cfg.Cache.StatusFile).
		Msg("Application started with configuration")

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logger.Warn().Err(err).Msg("Sentry initialization failed, continuing without error reporting")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ttl := time.Hour // default
	if cfg.Cache.TTL != "" {
		parsed, err := time.ParseDuration(cfg.Cache.TTL)
		if err != nil {
			logger.Warn().Err(err).Str("ttl", cfg.Cache.TTL).Msg("Invalid cache TTL, using default 1h")
		} else {
			ttl = parsed
		}
	}

	store, err := status.NewFileStore(cfg.Cache.StatusFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load cache status file")
	}
	registry := cacheable.NewRegistry(store, logger)
	defer registry.CloseAll()

	services := make(map[string]*cacheable.Service, len(portalCaches))
	for _, name := range portalCaches {
		providerCfg := cache.ProviderConfig{
			Size:          cfg.Cache.Size,
			TTL:           ttl,
			Group:         name,
			RedisAddress:  cfg.Cache.RedisAddress,
			RedisPassword: cfg.Cache.RedisPassword,
			RedisDB:       cfg.Cache.RedisDB,
		}
		svc, err := cacheable.NewService(name, cfg.Cache.Provider, providerCfg, registry, logger)
		if err != nil {
			// The cache stays registered but disabled; an admin can retry the
			// enable once the backend is reachable.
			logger.Error().Err(err).Str("cache", name).Msg("Cache could not be enabled at startup")
		}
		services[name] = svc
	}

	mux := http.NewServeMux()
	adminHandler := admin.NewServer(registry, logger).Handler()
	mux.Handle("/caches", adminHandler)
	mux.Handle("/caches/", adminHandler)

	tmpl, err := portal.ParseTemplates(cfg.Portal.TemplatesGlob)
	if err != nil {
		logger.Warn().Err(err).Str("glob", cfg.Portal.TemplatesGlob).Msg("No page templates loaded, page serving disabled")
	} else {
		pages := portal.NewPageService(tmpl, services["page"], logger)
		mux.Handle("/pages/", pages.Handler(pageModel))
		logger.Info().Str("glob", cfg.Portal.TemplatesGlob).Msg("Page serving enabled")
	}

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Info().Str("address", server.Addr).Msg("Starting portal HTTP server")

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to serve HTTP")
	}

	logger.Info().Msg("Server stopped gracefully")
}
