package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-messagely/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, newSlogLogger(cfg.LogLevel))
	if err != nil {
		log.Fatalf("create app: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
