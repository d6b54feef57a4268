package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/Parswanadh/memory-mcp-server/internal/config"
	"github.com/Parswanadh/memory-mcp-server/internal/gateway/mcpserver"
	"github.com/Parswanadh/memory-mcp-server/internal/memory"
	"github.com/Parswanadh/memory-mcp-server/internal/memory/memerr"
)

// runServe implements the serve command: load config, build the manager,
// start the scheduler, and block on the MCP stdio transport until a
// shutdown signal arrives.
func runServe(ctx context.Context) error {
	cfg := config.Load()

	mgr, err := memory.NewManager(ctx, cfg, slog.Default())
	if err != nil {
		var fatal *memerr.FatalInit
		if errors.As(err, &fatal) {
			slog.Error("fatal initialization failure", "error", fatal.Error())
		} else {
			slog.Error("failed to initialize memory manager", "error", err)
		}
		return err
	}
	defer mgr.Close()

	sched := memory.NewScheduler(mgr, slog.Default())
	sched.Start(ctx)
	defer sched.Stop()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := mcpserver.NewServer(mgr, slog.Default())

	slog.Info("memory-mcp server starting",
		"vectorStore", cfg.VectorStoreType,
		"embeddingProvider", cfg.EmbeddingProvider,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeStdio(ctx)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping memory-mcp server")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
	}
	return nil
}
