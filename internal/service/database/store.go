package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kapu/tj-jpop-chart-go/internal/constants"
	"github.com/kapu/tj-jpop-chart-go/internal/util"
	chartErrors "github.com/kapu/tj-jpop-chart-go/pkg/errors"
	"go.uber.org/zap"
)

// Store implements Adapter over a database/sql pool. One Store is built by the
// composition root and shared by every repository.
type Store struct {
	db      *sqlx.DB
	backend Backend
	logger  *zap.Logger
}

var _ Adapter = (*Store)(nil)

func newStore(db *sqlx.DB, backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, backend: backend, logger: logger}
}

func (s *Store) Backend() Backend {
	return s.backend
}

func (s *Store) Execute(ctx context.Context, query string, args ...any) (Result, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return Result{}, s.wrap("execute", query, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, s.wrap("rows affected", query, err)
	}

	// lib/pq does not support LastInsertId
	lastID, _ := res.LastInsertId()

	return Result{RowsAffected: affected, LastInsertID: lastID}, nil
}

func (s *Store) All(ctx context.Context, dest any, query string, args ...any) error {
	if err := s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...); err != nil {
		return s.wrap("all", query, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	err := s.db.GetContext(ctx, dest, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, s.wrap("get", query, err)
	}
	return true, nil
}

func (s *Store) Run(ctx context.Context, query string, args ...any) error {
	_, err := s.Execute(ctx, query, args...)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) wrap(operation, query string, err error) error {
	s.logger.Debug("Statement failed",
		zap.String("backend", s.backend.String()),
		zap.String("operation", operation),
		zap.String("query", compactQuery(query)),
		zap.Error(err),
	)
	return chartErrors.NewStorageError(fmt.Sprintf("%s failed", operation), s.backend.String(), operation, err)
}

func configurePool(db *sqlx.DB, maxOpen int) {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(constants.DatabaseConfig.MaxIdleConns)
	db.SetConnMaxLifetime(constants.DatabaseConfig.ConnMaxLifetime)
}

func pingWithTimeout(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseConfig.PingTimeout)
	defer cancel()
	return db.PingContext(ctx)
}

func compactQuery(query string) string {
	return util.TruncateString(strings.Join(strings.Fields(query), " "), 200)
}

func busyTimeoutMillis() int64 {
	return int64(constants.DatabaseConfig.BusyTimeout / time.Millisecond)
}
