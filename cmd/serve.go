package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/config"
	"github.com/brain-tumor-detection/tumorscan/internal/handlers"
	"github.com/brain-tumor-detection/tumorscan/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var sessionTTL time.Duration
	var flags config.Flags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the upload interface",
		Long: `Starts the Tumorscan web interface on the specified port.

The web interface lets you pick a brain MRI scan, preview it, send it for
classification and view the predicted class with its confidence.`,
		Example: `  # Start server on default port 8888
  tumorscan serve

  # Start server on custom port against a remote model
  tumorscan serve --port 3000 --url http://model:5000

  # Demo mode: generated results when the model is unreachable
  tumorscan serve --fallback`,
		RunE: func(cmd *cobra.Command, args []string) error {
			predictor, settings, err := flags.Predictor(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("port") {
				if envPort := os.Getenv("PORT"); envPort != "" {
					port = envPort
				}
			}

			handler := handlers.NewWithTTL(predictor, sessionTTL)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Tumorscan interface available",
					"addr", addr,
					"url", "http://localhost"+addr,
					"backend", settings.Backend,
					"endpoint", settings.Endpoint(),
					"on_failure", settings.OnFailure)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				err := server.Shutdown(shutdownCtx)
				handler.Close()
				if err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				if err := handler.WaitContext(shutdownCtx); err != nil {
					slog.Warn("Predictions still running at shutdown", "err", err)
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				handler.Close()
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (PORT env var when unset)")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", storage.DefaultTTL, "Drop sessions unused for this long (0 keeps them)")
	flags.Register(cmd)

	return cmd
}
