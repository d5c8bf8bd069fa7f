package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/repository/badger"
	"github.com/plugsmith/plugsmith/pkg/repository/gcs"
	"github.com/plugsmith/plugsmith/pkg/repository/memory"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Blob storage backends
const (
	StorageMemory = "memory"
	StorageGCS    = "gcs"
	StorageBadger = "badger"
)

// Storage holds CLI flags for the archive and blueprint store
type Storage struct {
	backend    string
	bucket     string
	prefix     string
	badgerPath string
}

// Flags returns CLI flags for blob storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Blob storage backend (memory, gcs, badger)",
			Category:    "Storage",
			Value:       StorageMemory,
			Sources:     cli.EnvVars("PLUGSMITH_STORAGE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket (required when using gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("PLUGSMITH_GCS_BUCKET"),
			Destination: &s.bucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix inside the bucket",
			Category:    "Storage",
			Sources:     cli.EnvVars("PLUGSMITH_GCS_PREFIX"),
			Destination: &s.prefix,
		},
		&cli.StringFlag{
			Name:        "badger-path",
			Usage:       "Badger data directory. Empty keeps data in memory",
			Category:    "Storage",
			Sources:     cli.EnvVars("PLUGSMITH_BADGER_PATH"),
			Destination: &s.badgerPath,
		},
	}
}

// LogValue implements slog.LogValuer
func (s Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", s.backend),
		slog.String("bucket", s.bucket),
		slog.String("prefix", s.prefix),
		slog.String("badger_path", s.badgerPath),
	)
}

// Configure initializes the blob store. The caller must call the returned
// function to release the backend.
func (s *Storage) Configure(ctx context.Context) (interfaces.BlobStore, func(), error) {
	logger := logging.From(ctx)

	switch s.backend {
	case StorageMemory:
		logger.Info("Using in-memory blob storage (development mode)")
		return memory.NewBlobStore(), func() {}, nil

	case StorageGCS:
		if s.bucket == "" {
			return nil, nil, goerr.Wrap(ErrMissingFlag, "gcs-bucket is required when using gcs backend",
				goerr.V(FlagKey, "gcs-bucket"))
		}
		var opts []gcs.Option
		if s.prefix != "" {
			opts = append(opts, gcs.WithPrefix(s.prefix))
		}
		store, err := gcs.New(ctx, s.bucket, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize gcs storage")
		}
		logger.Info("Using Cloud Storage", "bucket", s.bucket, "prefix", s.prefix)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close gcs client", "error", err.Error())
			}
		}, nil

	case StorageBadger:
		store, err := badger.New(s.badgerPath)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize badger storage")
		}
		logger.Info("Using Badger storage", "path", s.badgerPath)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close badger", "error", err.Error())
			}
		}, nil

	default:
		return nil, nil, goerr.Wrap(ErrUnknownBackend, "invalid storage backend", goerr.V(BackendKey, s.backend))
	}
}
