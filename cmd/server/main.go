package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/compliance"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/config"
	httpapi "github.com/Nicolas4485/allam-demo-payment-integration/internal/interfaces/http"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/invoice"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/metrics"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/payment"
	"github.com/Nicolas4485/allam-demo-payment-integration/pkg/utils"
)

const serviceName = "saudi-payments"

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(cfg.LoggerConfig(serviceName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Saudi payments service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("moyasar_configured", cfg.Payment.Moyasar.SecretKey != ""),
		zap.Bool("tap_configured", cfg.Payment.Tap.SecretKey != ""))

	// Compliance rules
	evaluator, err := compliance.LoadEvaluator(cfg.Compliance.RulesPath)
	if err != nil {
		logger.Fatal("Failed to load compliance rules", zap.Error(err))
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Payments
	processor := payment.NewProcessor(cfg.PaymentConfig(),
		payment.WithLogger(logger.Named("payment")),
		payment.WithRecorder(collector))

	mode := cfg.Server.Mode
	if cfg.Logger.Level == "debug" {
		mode = gin.DebugMode
	}

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		Mode:            mode,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpapi.Dependencies{
		Evaluator: evaluator,
		Processor: processor,
		Exporter:  invoice.NewExporter(logger.Named("invoice")),
		Metrics:   collector,
		Gatherer:  registry,
	}, logger)

	// Wait for interrupt signal to gracefully shutdown the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exited successfully")
}
