package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rana718/seedforge/internal/repository"
	"github.com/Rana718/seedforge/internal/server"
	"github.com/Rana718/seedforge/internal/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repo, closeRepo, err := repository.Open(ctx, a.cfg)
		if err != nil {
			return fmt.Errorf("failed to open schema storage: %w", err)
		}
		defer closeRepo()

		store, err := storage.Open(ctx, a.cfg)
		if err != nil {
			return fmt.Errorf("failed to open artifact store: %w", err)
		}

		addr := a.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := server.New(server.Deps{
			Engine:    a.engine,
			Repo:      repo,
			Store:     store,
			Metrics:   a.metrics,
			Logger:    a.logger,
			Addr:      addr,
			BodyLimit: a.cfg.Server.BodyLimit,
		})

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()
		color.Green("🚀 seedforge API listening on %s", addr)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			a.logger.Error("shutdown failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}
