package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	delivery "golang-stock-forecaster/internal/forecaster/delivery/http"
	_ "golang-stock-forecaster/internal/forecaster/docs"
	"golang-stock-forecaster/internal/forecaster/service"
	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the forecast HTTP service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(configPath)
	defer a.close()
	cfg, appLogger := a.cfg, a.logger

	appLogger.Info("Starting Forecast Service", logger.Field("name", cfg.App.Name), logger.StringField("version", cfg.App.Version))

	// Warm the catalog so the first request does not pay for it
	if _, err := a.svc.ResolveCatalog(ctx); err != nil {
		appLogger.Warn("Initial catalog load failed, will retry on demand", logger.ErrorField(err))
	}

	if cfg.Catalog.RefreshCron != "" {
		refresher, err := service.NewCatalogRefresher(a.svc, cfg.Catalog.RefreshCron, cfg.Catalog.Timeout, appLogger)
		if err != nil {
			appLogger.Fatal("Invalid catalog refresh schedule", logger.ErrorField(err))
		}
		if err := refresher.Start(ctx); err != nil {
			appLogger.Fatal("Failed to start catalog refresher", logger.ErrorField(err))
		}
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(appLogger))

	apiV1 := e.Group("/api/v1")
	delivery.NewMarketHandler(a.svc, cfg.News.FeedURL, appLogger).RegisterRoutes(apiV1)
	delivery.NewForecastHandler(a.svc, cfg.Forecast.DefaultYears, appLogger).RegisterRoutes(apiV1.Group("/forecast"))

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	utils.GoSafe(func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	})

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// requestLogger tags the request context with its id and logs each request.
func requestLogger(appLogger *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			appLogger.InfoContext(c.Request().Context(), "HTTP request",
				logger.StringField("method", req.Method),
				logger.StringField("path", req.URL.Path),
				logger.IntField("status", c.Response().Status),
				logger.DurationField("duration", time.Since(started)),
			)
			return nil
		}
	}
}

// @title Stock Forecast API
// @version 1.0
// @description Symbol catalog, price history and trend + seasonality forecasts.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{
		Use:   "forecast-service",
		Short: "Stock price forecasting service",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-forecaster.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd, symbolsCmd, forecastCmd, newsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing forecast-service CLI: %s\n", err)
		os.Exit(1)
	}
}
