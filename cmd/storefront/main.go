package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/verdantlane/storefront-core/api"
	"github.com/verdantlane/storefront-core/api/routes"
	"github.com/verdantlane/storefront-core/internal/globaldiscount"
	"github.com/verdantlane/storefront-core/internal/localstore"
	"github.com/verdantlane/storefront-core/internal/session"
	"github.com/verdantlane/storefront-core/pkg/config"
	"github.com/verdantlane/storefront-core/pkg/logger"
	"github.com/verdantlane/storefront-core/pkg/metrics"
	"github.com/verdantlane/storefront-core/pkg/remote"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	client, err := remote.NewClient(cfg.Remote)
	if err != nil {
		logg.Error(context.Background(), "failed to build remote client", err)
		os.Exit(1)
	}

	store := localstore.New(cfg.Profile.GuestCartPath(), logg)

	discounts, err := globaldiscount.NewProvider(client, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build discount provider", err)
		os.Exit(1)
	}
	// Warm the cache once; a failure leaves the provider empty until a
	// refresh is requested.
	if err := discounts.Refresh(context.Background()); err != nil {
		logg.Warn(context.Background(), "global discount warm-up failed")
	}

	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	manager, err := session.NewManager(session.ManagerConfig{
		Store:          store,
		Carts:          client,
		Products:       client,
		Discounts:      discounts,
		Logger:         logg,
		Metrics:        cartMetrics,
		OpenPanelOnAdd: cfg.Session.OpenPanelOnAdd,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build session manager", err)
		os.Exit(1)
	}

	if err := manager.Refresh(context.Background()); err != nil {
		logg.Warn(context.Background(), "initial cart refresh failed")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront session server")

	server := api.NewServer(addr, routes.NewRouter(cfg, logg, manager, discounts, client, registry))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront server stopped unexpectedly", err)
		os.Exit(1)
	}
}
