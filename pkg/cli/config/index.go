package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/repository/firestore"
	"github.com/plugsmith/plugsmith/pkg/repository/memory"
	"github.com/plugsmith/plugsmith/pkg/repository/pgvector"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Vector index backends
const (
	IndexMemory    = "memory"
	IndexFirestore = "firestore"
	IndexPgvector  = "pgvector"
)

// Index holds CLI flags for the vector index backend
type Index struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
	dsn              string
	table            string
}

// Flags returns CLI flags for vector index configuration
func (x *Index) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "index-backend",
			Usage:       "Vector index backend (memory, firestore, pgvector)",
			Category:    "Vector index",
			Value:       IndexMemory,
			Sources:     cli.EnvVars("PLUGSMITH_INDEX_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Vector index",
			Sources:     cli.EnvVars("PLUGSMITH_FIRESTORE_PROJECT_ID"),
			Destination: &x.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Vector index",
			Sources:     cli.EnvVars("PLUGSMITH_FIRESTORE_DATABASE_ID"),
			Destination: &x.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of the Firestore reference collection",
			Category:    "Vector index",
			Sources:     cli.EnvVars("PLUGSMITH_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &x.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "pgvector-dsn",
			Usage:       "PostgreSQL connection string (required when using pgvector backend)",
			Category:    "Vector index",
			Sources:     cli.EnvVars("PLUGSMITH_PGVECTOR_DSN", "DATABASE_URL"),
			Destination: &x.dsn,
		},
		&cli.StringFlag{
			Name:        "pgvector-table",
			Usage:       "PostgreSQL table holding reference vectors",
			Category:    "Vector index",
			Value:       pgvector.DefaultTable,
			Sources:     cli.EnvVars("PLUGSMITH_PGVECTOR_TABLE"),
			Destination: &x.table,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Index) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("project_id", x.projectID),
		slog.String("database_id", x.databaseID),
		slog.String("collection_prefix", x.collectionPrefix),
		slog.String("table", x.table),
	)
}

// Backend returns the configured backend type
func (x *Index) Backend() string {
	return x.backend
}

// ProjectID returns the Firestore project ID
func (x *Index) ProjectID() string {
	return x.projectID
}

// DatabaseID returns the Firestore database ID
func (x *Index) DatabaseID() string {
	return x.databaseID
}

// Configure initializes the vector index. The caller must call the returned
// function to release the backend.
func (x *Index) Configure(ctx context.Context, dimension int) (interfaces.VectorIndex, func(), error) {
	logger := logging.From(ctx)

	switch x.backend {
	case IndexMemory:
		logger.Info("Using in-memory vector index (development mode)")
		return memory.NewVectorIndex(), func() {}, nil

	case IndexFirestore:
		store, err := x.Firestore(ctx)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Firestore vector index",
			"project_id", x.projectID,
			"database_id", x.databaseID,
			"collection", store.CollectionName(),
		)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close firestore client", "error", err.Error())
			}
		}, nil

	case IndexPgvector:
		store, err := x.Pgvector(ctx, dimension)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using pgvector index", "table", x.table)
		return store, store.Close, nil

	default:
		return nil, nil, goerr.Wrap(ErrUnknownBackend, "invalid index backend", goerr.V(BackendKey, x.backend))
	}
}

// Firestore creates the Firestore index regardless of the selected backend
func (x *Index) Firestore(ctx context.Context) (*firestore.Firestore, error) {
	if x.projectID == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "firestore-project-id is required when using firestore backend",
			goerr.V(FlagKey, "firestore-project-id"))
	}

	var opts []firestore.Option
	if x.collectionPrefix != "" {
		opts = append(opts, firestore.WithCollectionPrefix(x.collectionPrefix))
	}

	store, err := firestore.New(ctx, x.projectID, x.databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize firestore index")
	}
	return store, nil
}

// Pgvector creates the pgvector index regardless of the selected backend
func (x *Index) Pgvector(ctx context.Context, dimension int) (*pgvector.Store, error) {
	if x.dsn == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "pgvector-dsn is required when using pgvector backend",
			goerr.V(FlagKey, "pgvector-dsn"))
	}

	store, err := pgvector.New(ctx, x.dsn, pgvector.WithTable(x.table), pgvector.WithDimension(dimension))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize pgvector index")
	}
	return store, nil
}
