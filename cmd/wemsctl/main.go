// Command wemsctl runs one hazard check and prints its report.
//
// Usage:
//
//	go run ./cmd/wemsctl -hazard earthquakes -tier premium \
//	  -args '{"min_magnitude": 6, "time_period": "week"}'
//
// Feed, geocoding and alert-rule settings come from the same environment
// variables as the service. Logs go to stderr.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/wems/internal/adapter/feeds"
	"github.com/couchcryptid/wems/internal/adapter/mapbox"
	"github.com/couchcryptid/wems/internal/alert"
	"github.com/couchcryptid/wems/internal/config"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/observability"
	"github.com/couchcryptid/wems/internal/pipeline"
)

func main() {
	hazard := flag.String("hazard", "", "check to run (see -list)")
	tierName := flag.String("tier", "free", "tier to evaluate the request against: free or premium")
	rawArgs := flag.String("args", "{}", "check parameters as a JSON object")
	list := flag.Bool("list", false, "list available checks and exit")
	flag.Parse()

	if *list {
		for _, h := range pipeline.Hazards() {
			fmt.Println(h)
		}
		return
	}
	if *hazard == "" {
		fmt.Fprintln(os.Stderr, "wemsctl: -hazard is required")
		flag.Usage()
		os.Exit(2)
	}

	var args pipeline.Args
	if err := json.Unmarshal([]byte(*rawArgs), &args); err != nil {
		fmt.Fprintf(os.Stderr, "wemsctl: invalid -args: %v\n", err)
		os.Exit(2)
	}

	if err := run(*hazard, *tierName, args); err != nil {
		fmt.Fprintf(os.Stderr, "wemsctl: %v\n", err)
		os.Exit(1)
	}
}

func run(hazard, tierName string, args pipeline.Args) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLoggerTo(os.Stderr, cfg.LogLevel, "text")
	metrics := observability.NewMetrics()

	httpClient := &http.Client{}
	defer httpClient.CloseIdleConnections()

	fetcher := feeds.NewClient(httpClient, metrics, logger, feeds.WithAirNowKey(cfg.AirNowAPIKey))

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		geocoder = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger, mapbox.WithHTTPClient(httpClient))
	}

	rules, err := alert.LoadRules(cfg.AlertsConfig, logger)
	if err != nil {
		return err
	}
	store := alert.NewStore(rules)
	dispatcher := alert.NewDispatcher(store, httpClient, cfg.WebhookTimeout, nil, logger, metrics)
	defer dispatcher.Wait()

	p := pipeline.New(fetcher, dispatcher, store, geocoder, logger, metrics, pipeline.Options{
		FetchTimeout: cfg.FetchTimeout,
		Concurrency:  cfg.FetchConcurrency,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := p.Run(ctx, pipeline.Hazard(hazard), tierName, args)
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}
