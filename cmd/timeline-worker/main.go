package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/server"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/timeline"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, reading environment variables directly")
	}

	// Bootstrap service components (DB for timeline rows, queue for events)
	components, err := bootstrap.Setup(ctx, "timeline-worker",
		bootstrap.WithoutCache(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup service: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// A memory queue is process-local; a separate worker would sit on an
	// empty stream forever
	if components.Config.Events.Backend != "redis" {
		components.Logger.Error("timeline-worker requires the redis events backend",
			"backend", components.Config.Events.Backend,
		)
		os.Exit(1)
	}

	components.Logger.Info("timeline-worker starting")

	eventRepo := repository.NewEventRepository(components.DB)
	recorder := timeline.NewRecorder(
		components.Queue,
		eventRepo,
		components.Config.Events.Stream,
		components.Logger,
	)

	if err := recorder.Start(ctx); err != nil {
		components.Logger.Error("failed to start recorder", "error", err)
		os.Exit(1)
	}

	components.Logger.Info("timeline-worker started successfully")

	// Health probe for the worker process
	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.HealthHandler("timeline-worker", components.Health))

	srv := server.New(
		components.Config.Service.Name,
		components.Config.Service.Port,
		mux,
		components.Logger,
	)

	// Start blocks until a shutdown signal; the consumer stops with it
	if err := srv.Start(); err != nil {
		components.Logger.Error("server error", "error", err)
		os.Exit(1)
	}

	cancel()
	components.Logger.Info("timeline-worker shutting down gracefully")
}
