// Package storage persists organizations, the topic catalog, and classified
// articles in Postgres.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"esgmonitor/internal/domain"
	"esgmonitor/internal/ports"
)

// psql builds queries with Postgres placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Thresholds are the always-on score floors applied to every filtered read.
type Thresholds struct {
	Relevancy           float64
	IndicatorMembership float64
}

// Store is the single process-wide persistence handle. It is constructed
// once at startup and passed by reference to every component that needs it.
type Store struct {
	pool       *pgxpool.Pool
	thresholds Thresholds
	logger     *slog.Logger
}

var _ ports.Store = (*Store)(nil)

// Open connects a pool, applies pending migrations, and seeds the topic
// catalog on first-ever initialization.
func Open(ctx context.Context, dsn string, thresholds Thresholds, logger *slog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &Store{pool: pool, thresholds: thresholds, logger: logger}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := store.seedTopics(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed topics: %w", err)
	}

	return store, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// withTx runs fn inside one short-lived transaction, rolled back on every
// non-commit path, with Postgres constraint failures mapped to domain errors.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return mapPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// mapPgError converts unique/foreign-key/check violations into readable
// domain.ConstraintError values. The duplicate-text index gets its own
// sentinel so the ingestion pipeline can take the attach path.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	detail := pgErr.Detail
	if detail == "" {
		detail = pgErr.Message
	}

	switch pgErr.Code {
	case "23505":
		if pgErr.ConstraintName == articleTextIndex {
			return domain.ErrDuplicateArticle
		}
		return &domain.ConstraintError{
			Kind:       domain.ConstraintUnique,
			Constraint: pgErr.ConstraintName,
			Detail:     detail,
		}
	case "23503":
		return &domain.ConstraintError{
			Kind:       domain.ConstraintForeignKey,
			Constraint: pgErr.ConstraintName,
			Detail:     detail,
		}
	case "23514":
		return &domain.ConstraintError{
			Kind:       domain.ConstraintCheck,
			Constraint: pgErr.ConstraintName,
			Detail:     detail,
		}
	}

	return err
}
