package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/cli/config"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/repository/firestore"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var indexCfg config.Index
	var dimension int
	var dryRun bool

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "embedding-dimension",
			Usage:       "Embedding vector dimension",
			Value:       model.EmbeddingDimension,
			Sources:     cli.EnvVars("PLUGSMITH_EMBEDDING_DIMENSION"),
			Destination: &dimension,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without applying",
			Destination: &dryRun,
		},
	}
	flags = append(flags, indexCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create vector indexes for the configured index backend",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Migrate configuration",
				"index", indexCfg,
				"dimension", dimension,
				"dryRun", dryRun)

			switch indexCfg.Backend() {
			case config.IndexFirestore:
				return migrateFirestore(ctx, &indexCfg, dimension, dryRun)
			case config.IndexPgvector:
				return migratePgvector(ctx, &indexCfg, dimension, dryRun)
			case config.IndexMemory:
				logger.Info("Memory index needs no migration")
				return nil
			default:
				return goerr.Wrap(config.ErrUnknownBackend, "invalid index backend", goerr.V(config.BackendKey, indexCfg.Backend()))
			}
		},
	}
}

func migrateFirestore(ctx context.Context, indexCfg *config.Index, dimension int, dryRun bool) error {
	logger := logging.Default()

	store, err := indexCfg.Firestore(ctx)
	if err != nil {
		return err
	}
	collection := store.CollectionName()
	if err := store.Close(); err != nil {
		logger.Error("failed to close firestore client", "error", err.Error())
	}

	indexConfig := getIndexConfig(collection, dimension)

	client, err := fireconf.NewClient(ctx, indexCfg.ProjectID(), indexCfg.DatabaseID())
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

func migratePgvector(ctx context.Context, indexCfg *config.Index, dimension int, dryRun bool) error {
	logger := logging.Default()

	if dryRun {
		logger.Info("Dry run mode - pgvector migration creates the vector extension, table and HNSW index if missing")
		return nil
	}

	store, err := indexCfg.Pgvector(ctx, dimension)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return goerr.Wrap(err, "failed to migrate pgvector schema")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

// getIndexConfig returns the Firestore vector index configuration of the
// reference collection
func getIndexConfig(collection string, dimension int) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: collection,
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{
								Path: firestore.EmbeddingField,
								Vector: &fireconf.VectorConfig{
									Dimension: dimension,
								},
							},
						},
					},
				},
			},
		},
	}
}
