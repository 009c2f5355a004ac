package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"sitecompliance/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases), seeding when SEED_PATH is set.
// 3) Serve HTTP until SIGINT/SIGTERM.
func main() {
	log.Println("compliance api starting")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Printf("compliance api stopped with error: %v", err)
	}
}
