package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/imkonsowa/restaurants-chat/config"
)

func main() {
	cfg := config.LoadConfig()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nc, err := NewNats(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer nc.Close()

	pg, err := NewPg(cfg.Postgres.ConnStr())
	if err != nil {
		log.Fatal(err)
	}

	handler := NewHandler(pg)

	workers := cfg.Ingest.Workers
	if workers < 1 {
		workers = 2
	}
	queueSize := cfg.Ingest.QueueSize
	if queueSize < 1 {
		queueSize = 100
	}
	slog.Info("Starting ingest", "workers", workers, "queueSize", queueSize)

	pool := NewWorkerPool(ctx, workers, queueSize, handler.HandleMessage)

	worker := errgroup.Group{}
	errChan := make(chan error)

	worker.Go(func() error {
		return nc.Subscribe(ctx, cfg.Nats.RestaurantsSubject, pool)
	})

	go func() {
		errChan <- worker.Wait()
	}()

	select {
	case <-shutdown:
		slog.Info("Shutting down")
		cancel()
	case err := <-errChan:
		slog.Info("Shutting down due to error", "error", err)
		cancel()
	}

	pool.Stop()
	pool.Wait()
}
