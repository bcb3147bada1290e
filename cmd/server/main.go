package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sisyphuswastaken/web-scraper/internal/config"
	"github.com/sisyphuswastaken/web-scraper/internal/server"
	"github.com/sisyphuswastaken/web-scraper/internal/util"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger"
	"github.com/sisyphuswastaken/web-scraper/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	settings := config.Load()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: settings.Debug,
		JSON:  settings.LogJSON,
	})
	logger.Init(consoleLogger)

	if err := settings.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}

	client, err := server.NewAIClient(settings)
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := client.LoadModel(loadCtx); err != nil {
		logger.Warn("[Server] Failed to preload extraction model", "model", settings.AIExtractModel, "err", err)
	}
	cancel()

	app, err := server.NewApp(settings, client)
	if err != nil {
		logger.Fatal("Failed to initialize services", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, app); err != nil {
		logger.Fatal("Server failed", "err", err)
	}
}
