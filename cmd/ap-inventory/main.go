// Command ap-inventory serves the Wi-Fi access point inventory of one Meraki
// organization over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/opteama/wifi-aps/api/meraki"
	"github.com/opteama/wifi-aps/internal/config"
	"github.com/opteama/wifi-aps/internal/inventory"
	"github.com/opteama/wifi-aps/internal/server"
	"github.com/opteama/wifi-aps/observability"
)

var (
	envFile = flag.String("env-file", config.DefaultEnvFile, "dotenv file read for unset variables")
	listen  = flag.String("listen", "", "listen address (overrides "+config.EnvListenAddr+")")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("ap-inventory: %+v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}

	zapLogger, err := observability.NewZapProduction(cfg.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", config.EnvLogLevel)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := observability.NewZapLogger(zapLogger)

	proxy, err := cfg.Proxy()
	if err != nil {
		return err
	}

	client, err := meraki.NewWithConfig(&meraki.ClientConfig{
		APIKey:             cfg.APIKey,
		BaseURL:            cfg.APIURL,
		Proxy:              proxy,
		RateLimitPerSecond: cfg.RateLimit,
		Timeout:            cfg.Timeout,
		Logger:             logger.With(observability.Component("meraki")),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create Meraki client")
	}

	resolver := meraki.NewResolver(client, cfg.Organization,
		meraki.WithResolverLogger(logger.With(observability.Component("resolver"))))

	doc, err := server.LoadDocument(ctx, cfg.OpenAPISpec)
	if err != nil {
		return err
	}
	sites, err := server.Sites(doc)
	if err != nil {
		return err
	}
	validator, err := server.NewValidator(doc)
	if err != nil {
		return err
	}

	service := inventory.NewService(client, resolver, sites,
		inventory.WithLogger(logger.With(observability.Component("inventory"))))

	logger.Info("starting",
		observability.Field{Key: "organization", Value: cfg.Organization},
		observability.Field{Key: "sites", Value: fmt.Sprint(sites)},
		observability.Field{Key: "proxy", Value: proxy != nil},
	)

	return server.New(service, validator, logger).Run(ctx, cfg.ListenAddr)
}
