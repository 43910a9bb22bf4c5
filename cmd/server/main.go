package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/contactbook/internal/config"
	"github.com/mmynk/contactbook/internal/handler"
	"github.com/mmynk/contactbook/internal/service"
	"github.com/mmynk/contactbook/internal/storage/sqlite"
	"github.com/mmynk/contactbook/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: $CONTACTBOOK_CONFIG or contactbook.yaml)")
	flag.Parse()

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		logging.Setup("")
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Storage.DBPath)

	queue := service.NewMutationQueue()
	h := &handler.Handler{
		Contacts: service.NewContactService(store, queue),
		Catalog:  service.NewCatalogService(store, queue),
		Transfer: service.NewTransferService(store, queue),
	}

	if _, err := h.Catalog.EnsureCategories(ctx, cfg.DefaultCategories); err != nil {
		return err
	}

	// Wrap with h2c for HTTP/2 without TLS
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           h2c.NewHandler(handler.NewRouter(h), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		slog.Info("HTTP server starting", "address", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
