package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/caravel-cli/caravel/internal/server"
	"github.com/caravel-cli/caravel/pkg/history"
)

// newServeCmd creates the serve command: run the resolution JSON API.
//
// With [mongo] configured, completed resolutions are recorded durably;
// otherwise an in-memory history backlog is kept. With [redis]
// configured, instances share one HTTP response cache.
func newServeCmd(configPath *string) *cobra.Command {
	opts := resolveOpts{configPath: configPath}
	listen := ":8372"

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the resolution JSON API",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Listen != "" && !c.Flags().Changed("listen") {
				listen = cfg.Listen
			}

			res, err := opts.buildResolver(ctx)
			if err != nil {
				return err
			}

			var hist history.Store
			if cfg.Mongo.URI != "" {
				hist, err = history.NewMongoStore(ctx, history.MongoConfig{
					URI:        cfg.Mongo.URI,
					Database:   cfg.Mongo.Database,
					Collection: cfg.Mongo.Collection,
				})
				if err != nil {
					return err
				}
				logger.Info("history store connected", "backend", "mongodb")
			} else {
				hist = history.NewMemoryStore()
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = hist.Close(shutdownCtx)
			}()

			srv := &http.Server{
				Addr:              listen,
				Handler:           server.New(res, hist, logger).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			logger.Info("serving resolution API", "addr", listen)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", listen, "listen address")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel resolves per level (default 8)")
	return cmd
}
