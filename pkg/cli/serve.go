package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/cli/config"
	httpctrl "github.com/plugsmith/plugsmith/pkg/controller/http"
	"github.com/plugsmith/plugsmith/pkg/utils/async"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var publicURL string
	var ingestOnStart bool
	var app appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("PLUGSMITH_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "public-url",
			Usage:       "Public base URL used in download and playground links (e.g., https://your-domain.com). Derived from each request when empty",
			Sources:     cli.EnvVars("PLUGSMITH_PUBLIC_URL"),
			Destination: &publicURL,
		},
		&cli.BoolFlag{
			Name:        "ingest-on-start",
			Usage:       "Ingest the reference corpus before serving. Always enabled for the memory index",
			Sources:     cli.EnvVars("PLUGSMITH_INGEST_ON_START"),
			Destination: &ingestOnStart,
		},
	}

	// Add shared config flags
	flags = append(flags, app.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := app.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			// Requests served before ingestion finishes get less or no reference material
			if uc.RetrievalEnabled() && (ingestOnStart || app.index.Backend() == config.IndexMemory) {
				async.Dispatch(ctx, "ingest", func(ctx context.Context) error {
					count, err := uc.Ingest(ctx)
					if err != nil {
						return err
					}
					logging.From(ctx).Info("Reference corpus ingested", "count", count)
					return nil
				})
			}

			httpHandler, err := httpctrl.New(uc, httpctrl.WithPublicURL(publicURL))
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "public_url", publicURL)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
