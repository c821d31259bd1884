package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/repository"
	"github.com/joseph-ayodele/pdfsheets/internal/server"
)

func newServeCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction gRPC API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&cfg.Server.GRPCAddr, "addr", cfg.Server.GRPCAddr, "gRPC listen address")
	cmd.Flags().StringVar(&cfg.Store.DSN, "store", cfg.Store.DSN, "artifact store: memory, dir:<path>, sqlite:<path> or postgres://...")
	return cmd
}

func serve(parent context.Context, cfg *common.Config, logger *slog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	if !strings.Contains(cfg.Server.GRPCAddr, ":") {
		cfg.Server.GRPCAddr = ":" + cfg.Server.GRPCAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.Store.DSN, cfg.Store.Retention, logger)
	if err != nil {
		logger.Error("failed to open artifact store", "error", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close artifact store", "error", err)
		}
	}()

	janitor := repository.NewJanitor(store, cfg.Store.Retention, time.Minute, logger)
	janitor.Start()

	proc := buildProcessor(ctx, cfg, store, logger)
	grpcServer, health := server.NewGRPCServer(server.NewExtractionServer(proc, logger), logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		return err
	}

	logger.Info("pdfsheets listening", "addr", cfg.Server.GRPCAddr, "templates", cfg.TemplateDirs(), "store", storeKind(cfg.Store.DSN))
	errc := make(chan error, 1)
	go func() { errc <- grpcServer.Serve(lis) }()

	select {
	case <-ctx.Done():
	case err = <-errc:
		logger.Error("gRPC serve error", "error", err)
	}

	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	janitor.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	logger.Info("pdfsheets stopped")
	return err
}

// storeKind hides credentials that a postgres DSN may carry.
func storeKind(dsn string) string {
	if i := strings.Index(dsn, ":"); i > 0 {
		return dsn[:i]
	}
	if dsn == "" {
		return "memory"
	}
	return dsn
}
