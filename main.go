// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/millwright-dev/millwright/internal/api"
	"github.com/millwright-dev/millwright/internal/conf"
	"github.com/millwright-dev/millwright/internal/db"
	"github.com/millwright-dev/millwright/internal/kpis"
	"github.com/millwright-dev/millwright/internal/monitoring"
	"github.com/millwright-dev/millwright/internal/mqtt"
	"github.com/millwright-dev/millwright/internal/scheduler"
	"github.com/millwright-dev/millwright/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sapcc/go-bits/httpext"
	"golang.org/x/sync/errgroup"
)

// Run the prometheus metrics server for monitoring.
func runMonitoringServer(ctx context.Context, registry *monitoring.Registry, config conf.MonitoringConfig) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	slog.Info("metrics listening", "port", config.Port)
	addr := fmt.Sprintf(":%d", config.Port)
	return httpext.ListenAndServeContext(ctx, addr, mux)
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		if args[0] == "--version" {
			fmt.Printf("%s version %s", "millwright", "0.0.1")
			os.Exit(0)
		}
	}

	config := conf.NewConfig()
	if err := config.Validate(); err != nil {
		panic(err)
	}
	config.GetLoggingConfig().SetDefaultLogger()

	// This context will gracefully shutdown when the process receives the
	// standard shutdown signal SIGINT, with a 10-second delay to allow
	// load balancers to stop sending new requests well before the process
	// starts to shut down.
	ctx := httpext.ContextWithSIGINT(context.Background(), 10*time.Second)

	registry := monitoring.NewRegistry(config.GetMonitoringConfig())

	dbMonitor := db.NewDBMonitor(registry)
	database := db.NewPostgresDB(conf.NewSecretDBConfig(config.GetDBConfig()), dbMonitor)
	defer database.Close()

	shopFloorStore := store.NewStore(database)
	if err := shopFloorStore.Init(); err != nil {
		panic(err)
	}

	mqttMonitor := mqtt.NewMQTTMonitor(registry)
	mqttClient := mqtt.NewClient(config.GetMQTTConfig(), mqttMonitor)
	if err := mqttClient.Connect(); err != nil {
		panic("failed to connect to mqtt broker: " + err.Error())
	}
	defer mqttClient.Disconnect()

	kpiPipeline := kpis.NewPipeline(config.GetKPIsConfig())
	if err := kpiPipeline.Init(kpis.SupportedKPIs, database, registry); err != nil {
		panic(err)
	}

	schedulerMonitor := scheduler.NewSchedulerMonitor(registry)
	schedulerPipeline := scheduler.NewPipeline(schedulerMonitor)
	schedulerAPI := api.NewAPI(
		config.GetSchedulerConfig(),
		config.GetShopFloorConfig(),
		schedulerPipeline,
		shopFloorStore,
		mqttClient,
		api.NewAPIMonitor(registry),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return runMonitoringServer(groupCtx, registry, config.GetMonitoringConfig())
	})
	group.Go(func() error {
		schedulerAPI.Init(groupCtx)
		return nil
	})
	if err := group.Wait(); err != nil {
		panic(err)
	}
}
