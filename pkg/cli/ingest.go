package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/cli/config"
	"github.com/plugsmith/plugsmith/pkg/corpus"
	"github.com/plugsmith/plugsmith/pkg/usecase"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var corpusPath string
	var concurrency int
	var app appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "corpus",
			Usage:       "TOML file with reference documents. The embedded corpus is used when empty",
			Sources:     cli.EnvVars("PLUGSMITH_CORPUS"),
			Destination: &corpusPath,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Number of parallel embedding calls",
			Value:       usecase.DefaultIngestConcurrency,
			Sources:     cli.EnvVars("PLUGSMITH_INGEST_CONCURRENCY"),
			Destination: &concurrency,
			Validator:   validateConcurrency,
		},
	}
	flags = append(flags, app.Flags()...)

	return &cli.Command{
		Name:    "ingest",
		Aliases: []string{"i"},
		Usage:   "Embed the reference corpus and store it in the vector index",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			opts := []usecase.Option{usecase.WithIngestConcurrency(concurrency)}
			if corpusPath != "" {
				docs, err := corpus.Load(corpusPath)
				if err != nil {
					return goerr.Wrap(err, "failed to load corpus")
				}
				opts = append(opts, usecase.WithCorpus(docs))
			}

			uc, closer, err := app.build(ctx, opts...)
			if err != nil {
				return err
			}
			defer closer()

			count, err := uc.Ingest(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to ingest reference corpus")
			}

			logging.Default().Info("Reference corpus ingested", "count", count)
			return nil
		},
	}
}

func validateConcurrency(n int) error {
	if n < 1 {
		return goerr.Wrap(config.ErrInvalidConfig, "concurrency must be at least 1",
			goerr.V(config.FlagKey, "concurrency"), goerr.V("value", n))
	}
	return nil
}
