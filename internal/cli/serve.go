package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lextri/tritime/internal/adapters/http/api"
	"github.com/lextri/tritime/internal/app"
	"github.com/lextri/tritime/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analyzer service",
	Long: `Serve the analyzer over HTTP: store timelines, classify them, query
detected anomalies and expose Prometheus metrics. The store is in-memory
unless database_url is configured; set publish_enabled to forward
classified timelines to NATS.`,
	Example: `  tritime serve
  TRITIME_ADDR=:8088 TRITIME_DATABASE_URL=postgres://... tritime serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log := logger.Get().Named("serve")

		opts := []app.Option{
			app.WithClassifier(newClassifier()),
			app.WithLogger(log),
		}
		if cfg.DatabaseURL != "" {
			opts = append(opts, app.WithDatabaseURL(cfg.DatabaseURL))
		}
		if cfg.MaxSkewSeconds > 0 {
			opts = append(opts, app.WithMaxSkew(secondsToDuration(cfg.MaxSkewSeconds)))
		}
		if cfg.PublishEnabled {
			opts = append(opts, app.WithPublishing(cfg.NATSURL))
		}

		svc := app.New(opts...)
		if err := svc.Start(ctx); err != nil {
			return err
		}
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           mux,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info(ctx, "server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
