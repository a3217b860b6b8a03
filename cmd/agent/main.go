package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"watchpay-back/internal/agent"
	"watchpay-back/pkg/logger"
	"watchpay-back/pkg/server"
)

func main() {
	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := agent.MustLoadConfig()

	log := logger.MustSetupLogger(&logger.Config{
		Level:      cfg.Log.Level,
		FormatJSON: cfg.Log.FormatJSON,
	})

	prober := agent.NewProber(log, agent.Config{
		Region:       cfg.Region,
		ProbeTimeout: cfg.ProbeTimeout,
	})

	router := agent.SetupRouter(log, agent.NewHandler(log, prober))

	httpServer := server.NewHTTPServer(
		server.WithAddr(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		server.WithTimeout(cfg.HTTPServer.Timeout.Read, cfg.HTTPServer.Timeout.Write, cfg.HTTPServer.Timeout.Idle),
		server.WithHandler(router),
	)

	errors := make(chan error, 1)

	go func() { errors <- httpServer.Run() }()

	log.Info("Probe agent started", zap.String("region", cfg.Region))

	select {
	case err := <-errors:
		if err != nil {
			log.Error("Server error, shutting down...", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Received stop signal, shutting down...")
	}

	if err := httpServer.Shutdown(); err != nil {
		log.Error("Failed to shutdown http server", zap.Error(err))
	}

	_ = log.Sync()
}
