package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/dispensadoras/internal/services/dashboard/app"
	"github.com/LeonardoBeccarini/dispensadoras/pkg/dedup"
	"github.com/LeonardoBeccarini/dispensadoras/pkg/rabbitmq"
)

const grpcHealthInterval = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, client, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Backend.StartupWait > 0 {
		if err := app.WaitForBackend(ctx, client, cfg.Backend.StartupWait, log.Named("startup")); err != nil {
			log.Warn("starting with an unavailable backend", zap.Error(err))
		}
	}

	metrics := app.NewMetrics()

	var history *app.History
	if cfg.Influx.Enabled() {
		influx := influxdb2.NewClient(cfg.Influx.URL, cfg.Influx.Token)
		defer influx.Close()
		history = app.NewHistory(influx.WriteAPI(cfg.Influx.Org, cfg.Influx.Bucket), metrics, log.Named("history"))
		log.Info("device history enabled", zap.String("url", cfg.Influx.URL), zap.String("bucket", cfg.Influx.Bucket))
	}

	var broker mqtt.Client
	if cfg.MQTT.Enabled() {
		broker, err = rabbitmq.NewConn(ctx, &rabbitmq.Config{
			Host:     cfg.MQTT.Host,
			Port:     cfg.MQTT.Port,
			User:     cfg.MQTT.User,
			Password: cfg.MQTT.Password,
			ClientID: cfg.MQTT.ClientID,
		}, log.Named("mqtt"))
		if err != nil {
			log.Warn("device events disabled", zap.Error(err))
			broker = nil
		} else {
			defer rabbitmq.CloseConn(broker, log.Named("mqtt"))
		}
	}

	a := app.New(app.Options{
		Backend:          client,
		Metrics:          metrics,
		History:          history,
		MQTT:             broker,
		Polling:          cfg.Polling,
		CORSOrigins:      cfg.Server.CORSOrigins,
		MaintenanceEvery: cfg.Reports.MaintenanceEvery,
		Logger:           log,
	})
	defer a.Close()

	if broker != nil {
		events := app.NewDeviceEvents(a.Hub(), dedup.New(cfg.MQTT.DedupTTL, 0), metrics, log.Named("events"))
		consumer := rabbitmq.NewConsumer(broker, cfg.MQTT.Topic, 1, log.Named("mqtt"))
		consumer.SetHandler(events.Handle)
		go func() {
			if err := consumer.ConsumeMessage(ctx); err != nil {
				log.Error("device event consumer stopped", zap.Error(err))
			}
		}()
	}

	if cfg.Server.GRPCHealthPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCHealthPort)
		if err != nil {
			return fmt.Errorf("listen grpc health: %w", err)
		}
		go func() {
			if err := a.Health().ServeGRPC(ctx, lis, grpcHealthInterval); err != nil {
				log.Error("grpc health server stopped", zap.Error(err))
			}
		}()
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown", zap.Error(err))
		}
	}()

	log.Info("dashboard listening",
		zap.String("addr", server.Addr),
		zap.String("backend", cfg.Backend.URL),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
