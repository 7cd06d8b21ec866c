package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/perfector/docpipe"
	"github.com/hazyhaar/perfector/idgen"
	"github.com/hazyhaar/perfector/library"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "perfector:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "perfector.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := library.Open(cfg.LibraryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	cfg.Docpipe.Logger = logger
	pipe := docpipe.New(cfg.Docpipe)

	if cfg.MCPTransport == "stdio" {
		return runMCP(ctx, pipe, logger)
	}
	return runHTTP(ctx, cfg, pipe, store, logger)
}

// runMCP serves the import tools over stdio for editor integrations.
func runMCP(ctx context.Context, pipe *docpipe.Pipeline, logger *slog.Logger) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: "perfector", Version: "1.0.0"}, nil)
	pipe.RegisterMCP(srv)
	logger.Info("mcp server starting", "transport", "stdio")
	return srv.Run(ctx, &mcp.StdioTransport{})
}

func runHTTP(ctx context.Context, cfg *Config, pipe *docpipe.Pipeline, store *library.Store, logger *slog.Logger) error {
	a := &api{
		pipe:   pipe,
		store:  store,
		logger: logger,
		newID:  idgen.Default,
	}
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newRouter(a, cfg.AuthPasswordHash),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "listen", cfg.Listen, "library_db", cfg.LibraryDB)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
