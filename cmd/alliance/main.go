package main

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/container"
	appmiddleware "github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/middleware"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/routes"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/db"
)

//go:embed schema.sql
var schemaSQL string

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, reading environment variables directly")
	}

	// Bootstrap common components (DB, logger, queue, cache, telemetry)
	components, err := bootstrap.Setup(ctx, "alliance",
		bootstrap.WithDBInitHook(applySchema),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap alliance service: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Background workers: live hub, in-process recorder, periodic sweeps
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	startWorkers(workerCtx, serviceContainer)

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e, serviceContainer)

	// Setup health check
	setupHealthCheck(e, serviceContainer)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server, block until shutdown
	startServer(e, serviceContainer)
}

// applySchema runs the embedded schema on boot; every statement is
// idempotent so restarts are safe
func applySchema(database *db.DB) error {
	if _, err := database.Exec(context.Background(), schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// startWorkers starts the background pieces that live alongside the API
func startWorkers(ctx context.Context, c *container.Container) {
	components := c.Components

	go c.Hub.Run(ctx)
	if err := c.Hub.Start(ctx, components.Queue, components.Config.Events.Stream); err != nil {
		components.Logger.Error("failed to start live hub", "error", err)
	}

	// Non-nil only with the memory queue; with Redis streams the timeline
	// worker owns recording
	if c.Recorder != nil {
		if err := c.Recorder.Start(ctx); err != nil {
			components.Logger.Error("failed to start in-process recorder", "error", err)
		}
	}

	if components.Config.Scheduler.Enabled {
		if err := c.Sweeper.Start(); err != nil {
			components.Logger.Error("failed to start sweeper", "error", err)
		}
	}
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, c *container.Container) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(appmiddleware.ExtractUser())

	cfg := c.Components.Config
	if cfg.RateLimit.Enabled && c.RateLimiter != nil {
		e.Use(appmiddleware.RateLimit(
			c.RateLimiter,
			c.SubscriptionService,
			cfg.RateLimit,
			cfg.Auth.InternalToken,
			c.Components.Logger,
		))
	}
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, c *container.Container) {
	e.GET("/health", func(ec echo.Context) error {
		if err := c.Components.Health(ec.Request().Context()); err != nil {
			return ec.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "degraded",
				"error":  err.Error(),
			})
		}
		return ec.JSON(http.StatusOK, map[string]interface{}{
			"status":           "ok",
			"service":          "alliance",
			"live_connections": c.Hub.ConnectionCount(),
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterAllianceRoutes(e, serviceContainer)
	routes.RegisterCollaboratorRoutes(e, serviceContainer)
	routes.RegisterMemberRoutes(e, serviceContainer)
	routes.RegisterSeasonRoutes(e, serviceContainer)
	routes.RegisterRuleRoutes(e, serviceContainer)
	routes.RegisterOwnershipRoutes(e, serviceContainer)
	routes.RegisterEligibilityRoutes(e, serviceContainer)
	routes.RegisterLedgerRoutes(e, serviceContainer)
	routes.RegisterSubscriptionRoutes(e, serviceContainer)
	routes.RegisterAnalyticsRoutes(e, serviceContainer)
}

// startServer starts the Echo server and waits for a shutdown signal
func startServer(e *echo.Echo, c *container.Container) {
	components := c.Components
	port := components.Config.Service.Port

	go func() {
		components.Logger.Info("starting alliance service", "port", port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && err != http.ErrServerClosed {
			components.Logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	components.Logger.Info("shutting down server")

	if components.Config.Scheduler.Enabled {
		if err := c.Sweeper.Stop(); err != nil {
			components.Logger.Warn("sweeper shutdown error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		components.Logger.Error("server shutdown error", "error", err)
	}
}
