package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wems/internal/adapter/feeds"
	httpadapter "github.com/couchcryptid/wems/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/wems/internal/adapter/kafka"
	"github.com/couchcryptid/wems/internal/adapter/mapbox"
	"github.com/couchcryptid/wems/internal/alert"
	"github.com/couchcryptid/wems/internal/config"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/observability"
	"github.com/couchcryptid/wems/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// One pooled client for every feed and webhook.
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        64,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	client := feeds.NewClient(httpClient, metrics, logger, feeds.WithAirNowKey(cfg.AirNowAPIKey))
	fetcher := feeds.NewCachedFetcher(client, cfg.FeedCacheSize, cfg.FeedCacheTTL, clockwork.NewRealClock(), metrics)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		mc := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger, mapbox.WithHTTPClient(httpClient))
		geocoder = mapbox.NewCachedGeocoder(mc, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	rules, err := alert.LoadRules(cfg.AlertsConfig, logger)
	if err != nil {
		logger.Error("failed to load alert rules", "error", err)
		os.Exit(1)
	}
	store := alert.NewStore(rules)

	var (
		publisher alert.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.PublishAlerts() {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaAlertTopic, logger)
		publisher = writer
		logger.Info("alert publication enabled", "topic", cfg.KafkaAlertTopic)
	}
	dispatcher := alert.NewDispatcher(store, httpClient, cfg.WebhookTimeout, publisher, logger, metrics)

	p := pipeline.New(fetcher, dispatcher, store, geocoder, logger, metrics, pipeline.Options{
		FetchTimeout: cfg.FetchTimeout,
		Concurrency:  cfg.FetchConcurrency,
	})
	p.MarkReady()

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, store, cfg.TierFor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	dispatcher.Wait()
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	httpClient.CloseIdleConnections()

	logger.Info("shutdown complete")
}
