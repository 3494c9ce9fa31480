package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/davidvanstory/flowgenius"
	"github.com/davidvanstory/flowgenius/internal/config"
	httpAdapter "github.com/davidvanstory/flowgenius/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow HTTP server",
	Long:  `Starts the FlowGenius workflow engine in server mode, exposing the execute/validate/session operations as a JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		logger := newLogger(cfg)

		engine, err := newEngine(cfg, logger,
			flowgenius.WithMetrics(prometheus.DefaultRegisterer),
		)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		handler := httpAdapter.NewHandler(engine, logger)

		srv := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: handler,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", srv.Addr, "backend", cfg.StorageBackend)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
			logger.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides FLOWGENIUS_PORT)")
}
