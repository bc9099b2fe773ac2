package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"boxinventory/api/internal/app"
	"boxinventory/api/internal/config"
	"boxinventory/api/internal/engine"
	"boxinventory/api/internal/export"
	"boxinventory/api/internal/notify"
	"boxinventory/api/internal/store"
)

// feedAdapter narrows the notifier to the engine's ChangeFeed interface.
type feedAdapter struct {
	notifier *notify.Notifier
}

func (f feedAdapter) Publish(ctx context.Context, doc store.Document) error {
	return f.notifier.Publish(ctx, doc)
}

func (f feedAdapter) Subscribe(ctx context.Context, handler func(store.Document)) (io.Closer, error) {
	return f.notifier.Subscribe(ctx, handler)
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	documents := store.NewPostgresStore(db)

	var feed engine.ChangeFeed
	if strings.TrimSpace(cfg.RedisURL) != "" {
		notifier, err := notify.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer notifier.Close()
		feed = feedAdapter{notifier: notifier}
	} else {
		log.Printf("No Redis configured, running without change feed")
	}

	eng := engine.New(documents, feed, cfg.Debounce)
	if err := eng.Start(ctx); err != nil {
		log.Fatalf("state engine bootstrap failed: %v", err)
	}
	defer eng.Close()

	var archiver app.Archiver
	if strings.TrimSpace(cfg.S3Endpoint) != "" {
		a, err := export.NewArchiver(ctx, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
		if err != nil {
			log.Fatalf("object storage connection failed: %v", err)
		}
		archiver = a
		log.Printf("Archiving exports to bucket %s", cfg.S3Bucket)
	}

	service := app.New(eng, documents, archiver)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Box inventory API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	// Don't lose an edit still sitting inside the debounce window.
	if err := eng.Flush(shutdownCtx); err != nil {
		log.Printf("final flush error: %v", err)
	}
}
