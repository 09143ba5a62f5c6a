package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
	dbsqlite "github.com/qaiserfcc/cloud-pos-api/internal/infrastructure/persistence/sqlite"
)

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// getExecutor returns the ambient transaction when the caller runs under
// WithTransaction, the raw connection otherwise.
func getExecutor(ctx context.Context, db *sql.DB) executor {
	if tx := dbsqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return db
}

// translateError maps driver-level constraint violations onto the domain
// sentinels the services branch on.
func translateError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", entity.ErrDuplicate, err)
		}
	}
	return err
}

// parseDecimal converts a scanned NUMERIC column back to a decimal.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse decimal %q: %w", s, err)
	}
	return d, nil
}
