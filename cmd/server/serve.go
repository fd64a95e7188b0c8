package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/router"
	"github.com/habitlog/internal/scheduler"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}

		gin.SetMode(a.cfg.GinMode)
		srv := &http.Server{
			Addr:              a.cfg.ListenAddr,
			Handler:           router.SetupRouter(a.api, a.logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		if a.cfg.SyncSchedule != "" {
			sched, err := scheduler.New(a.cfg.SyncSchedule, a.api.DailyLogs(), a.cfg.ProviderTimeout*4, a.logger)
			if err != nil {
				return err
			}
			sched.Start()
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				sched.Stop(stopCtx)
			}()
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.WithField("addr", srv.Addr).Info("http server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("run server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	},
}
