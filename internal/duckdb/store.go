// Package duckdb serves the dashboard's display catalog from an in-memory
// DuckDB database. The schema and every literal value set are loaded by the
// embedded migrations when the store opens; nothing is written afterwards
// and nothing outlives the process.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"

	"github.com/mobilityiq/mobilityiq/internal/duckdb/migrate"
	"github.com/mobilityiq/mobilityiq/internal/model"
)

// Store manages the DuckDB connection and provides catalog queries.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	log          *zap.Logger
	QueryTimeout time.Duration
}

// NewStore opens an in-memory DuckDB database and loads the catalog.
// An optional queryTimeout can be passed; it defaults to
// model.DefaultQueryTimeout.
func NewStore(log *zap.Logger, queryTimeout ...time.Duration) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}

	qt := model.DefaultQueryTimeout
	if len(queryTimeout) > 0 && queryTimeout[0] > 0 {
		qt = queryTimeout[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), qt)
	defer cancel()
	if err := migrate.NewRunner(db, log).Run(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:           db,
		log:          log,
		QueryTimeout: qt,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// queryCtx returns a context with the store's configured query timeout.
func (s *Store) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.QueryTimeout)
}
