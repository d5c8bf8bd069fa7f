package pgvector

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	pgv "github.com/pgvector/pgvector-go"
	"github.com/plugsmith/plugsmith/pkg/domain/interfaces"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
)

// DefaultTable stores one row per reference passage
const DefaultTable = "reference_vectors"

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store is a VectorIndex backed by PostgreSQL with the pgvector extension
type Store struct {
	pool      *pgxpool.Pool
	table     string
	dimension int
}

var _ interfaces.VectorIndex = &Store{}

type Option func(*Store)

// WithTable overrides DefaultTable
func WithTable(name string) Option {
	return func(s *Store) {
		s.table = name
	}
}

// WithDimension overrides model.EmbeddingDimension for the schema
func WithDimension(dim int) Option {
	return func(s *Store) {
		s.dimension = dim
	}
}

// New connects to dsn
func New(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	s := &Store{
		table:     DefaultTable,
		dimension: model.EmbeddingDimension,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !tableNamePattern.MatchString(s.table) {
		return nil, goerr.New("invalid pgvector table name", goerr.V("table", s.table))
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create postgres pool")
	}
	s.pool = pool
	return s, nil
}

// Migrate creates the vector extension, the table and its HNSW cosine index
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	document_id TEXT PRIMARY KEY,
	text        TEXT NOT NULL,
	embedding   vector(%d) NOT NULL
)`, s.table, s.dimension),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)", s.table, s.table),
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to migrate pgvector schema", goerr.V("statement", stmt))
		}
	}
	return nil
}

// Upsert inserts or replaces rows by document ID in one batch
func (s *Store) Upsert(ctx context.Context, vectors []*model.EmbeddingVector) error {
	if len(vectors) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (document_id, text, embedding) VALUES ($1, $2, $3)
ON CONFLICT (document_id) DO UPDATE SET text = EXCLUDED.text, embedding = EXCLUDED.embedding`, s.table)

	batch := &pgx.Batch{}
	for _, v := range vectors {
		if v == nil || v.DocumentID == "" {
			return goerr.Wrap(model.ErrIndexUnavailable, "vector document ID is required")
		}
		batch.Queue(query, v.DocumentID, v.Text, pgv.NewVector(v.Values))
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range vectors {
		if _, err := results.Exec(); err != nil {
			return goerr.Wrap(model.ErrIndexUnavailable, "failed to upsert vector",
				goerr.V("cause", err.Error()), goerr.V("id", vectors[i].DocumentID))
		}
	}
	return nil
}

// Query returns the k nearest rows by cosine distance
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]*model.EmbeddingVector, error) {
	query := fmt.Sprintf(`SELECT document_id, text, embedding FROM %s ORDER BY embedding <=> $1 LIMIT $2`, s.table)

	rows, err := s.pool.Query(ctx, query, pgv.NewVector(vector), k)
	if err != nil {
		return nil, goerr.Wrap(model.ErrIndexUnavailable, "failed to query vectors", goerr.V("cause", err.Error()))
	}
	defer rows.Close()

	results := make([]*model.EmbeddingVector, 0, k)
	for rows.Next() {
		var (
			id, text  string
			embedding pgv.Vector
		)
		if err := rows.Scan(&id, &text, &embedding); err != nil {
			return nil, goerr.Wrap(model.ErrIndexUnavailable, "failed to scan vector row", goerr.V("cause", err.Error()))
		}
		results = append(results, &model.EmbeddingVector{
			DocumentID: id,
			Text:       text,
			Values:     embedding.Slice(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(model.ErrIndexUnavailable, "failed to read vector rows", goerr.V("cause", err.Error()))
	}

	return results, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
