package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mesob/internal/analytics"
	"mesob/internal/api"
	"mesob/internal/config"
	"mesob/internal/database"
	"mesob/internal/live"
	"mesob/internal/logger"
	"mesob/internal/monitoring"
	"mesob/internal/orders"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "Path to configuration file")
	logFile    = flag.String("log-file", "", "Optional JSON log file path")
)

func main() {
	flag.Parse()

	// A local .env is optional; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.ParseLevel(cfg.LogLevel), *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if err := database.InitDB(cfg.Database.Path); err != nil {
		log.Fatal("DB", fmt.Sprintf("failed to open database: %v", err))
	}
	defer database.CloseDB()

	db := database.GetDB()
	if err := database.Migrate(db); err != nil {
		log.Fatal("DB", fmt.Sprintf("migration failed: %v", err))
	}
	if err := database.Seed(db); err != nil {
		log.Fatal("DB", fmt.Sprintf("seeding failed: %v", err))
	}

	policy, err := orders.ParsePolicy(cfg.Orders.StatusPolicy)
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}

	// One hub, one service, passed by handle everywhere.
	monitor := monitoring.NewMonitor(prometheus.DefaultRegisterer)
	hub := live.NewHub(monitor, log)
	store := orders.NewGormStore(db)
	ordersSvc := orders.NewService(store, hub, policy, monitor, log)
	analyticsSvc := analytics.NewService(db)

	server := api.NewServer(db, ordersSvc, analyticsSvc, hub, cfg, log)

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, log)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("SERVER", "shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("SERVER", fmt.Sprintf("shutdown error: %v", err))
		}
	}()

	log.Info("SERVER", fmt.Sprintf("starting API server on port %d (status policy: %s)", cfg.Server.Port, policy))
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("SERVER", fmt.Sprintf("API server error: %v", err))
	}
}

func startMetricsServer(port int, log *logger.Logger) {
	metricsRouter := gin.New()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info("METRICS", fmt.Sprintf("starting metrics server on port %d", port))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), metricsRouter); err != http.ErrServerClosed {
		log.Error("METRICS", fmt.Sprintf("metrics server error: %v", err))
	}
}
