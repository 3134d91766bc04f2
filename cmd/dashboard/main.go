package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/portfolio-dashboard/internal/application"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/config"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/holdingscsv"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/marketdata/exchangerate"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/marketdata/naver"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/marketdata/yahoo"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/persistence/memory"
	httpHandler "github.com/jmanzanog/portfolio-dashboard/internal/interfaces/http"
	"github.com/joho/godotenv"
)

// setupLogger configures and returns a structured logger with source information
func setupLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLevel(level),
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// buildDashboardService wires the quote and exchange-rate clients into the service.
func buildDashboardService(cfg *config.Config) *application.DashboardService {
	prices := application.NewPriceResolver(
		naver.NewClientWithBaseURL(cfg.NaverBaseURL),
		yahoo.NewClientWithBaseURL(cfg.YahooBaseURL),
		cfg.QuoteTimeout,
		cfg.QuoteConcurrency,
	)
	rates := application.NewExchangeRateResolver(
		exchangerate.NewClientWithBaseURL(cfg.ExchangeRateBaseURL),
		cfg.FallbackExchangeRate,
		cfg.ExchangeRateTTL,
	)

	return application.NewDashboardService(
		memory.NewHoldingsRepository(),
		prices,
		rates,
		application.WithLocation(cfg.Location),
	)
}

// restoreHoldings values the holdings file configured for startup, if any.
func restoreHoldings(ctx context.Context, service *application.DashboardService, path string) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open holdings file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close holdings file", "path", path, "error", closeErr)
		}
	}()

	holdings, err := holdingscsv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse holdings file: %w", err)
	}

	if _, err := service.UploadHoldings(ctx, holdings); err != nil {
		return fmt.Errorf("failed to value restored holdings: %w", err)
	}

	slog.Info("Restored holdings", "path", path, "count", len(holdings))
	return nil
}

// buildServer creates and configures the HTTP server with all routes and handlers
func buildServer(cfg *config.Config, dashboardService httpHandler.DashboardService) *http.Server {
	router := gin.Default()
	handler := httpHandler.NewHandler(dashboardService)
	httpHandler.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

// App wraps the application components for easier testing
type App struct {
	Server        *http.Server
	PriceUpdater  *application.PriceUpdater
	CancelContext context.CancelFunc
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	a.PriceUpdater.Stop()
	a.CancelContext()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	select {
	case <-a.PriceUpdater.Done():
	case <-ctx.Done():
		return fmt.Errorf("price updater did not stop: %w", ctx.Err())
	}

	return nil
}

// run contains the main application logic without os.Exit calls
func run() error {
	setupLogger("info")

	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.LogLevel)

	dashboardService := buildDashboardService(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := restoreHoldings(ctx, dashboardService, cfg.HoldingsCSVPath); err != nil {
		slog.Warn("Starting without holdings", "path", cfg.HoldingsCSVPath, "error", err)
	}

	priceUpdater := application.NewPriceUpdater(dashboardService, cfg.PriceRefreshInterval)
	go priceUpdater.Start(ctx)

	server := buildServer(cfg, dashboardService)

	app := &App{
		Server:        server,
		PriceUpdater:  priceUpdater,
		CancelContext: cancel,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
