package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey struct{}

var txKey contextKey

// DB wraps sql.DB and implements TransactionManager
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database wrapper
func NewDB(sqlDB *sql.DB, logger *zap.Logger) *DB {
	return &DB{
		DB:     sqlDB,
		logger: logger,
	}
}

// WithTransaction implements port.TransactionManager. The transaction rides
// in the context so nested calls join the ambient one instead of opening a
// second transaction, which under SQLite's single-writer model would
// deadlock against itself.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if tx := ExtractTx(ctx); tx != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.logger.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			db.logger.Error("Transaction panicked, rolled back", zap.Any("panic", p))
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
			return
		}
		if cmErr := tx.Commit(); cmErr != nil {
			db.logger.Error("Failed to commit transaction", zap.Error(cmErr))
			err = fmt.Errorf("failed to commit transaction: %w", cmErr)
		}
	}()

	err = fn(context.WithValue(ctx, txKey, tx))
	return err
}

// ExtractTx retrieves the transaction from the context if present. The
// repository layer uses it to route statements through the ambient
// transaction.
func ExtractTx(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(txKey).(*sql.Tx); ok {
		return tx
	}
	return nil
}

// Verify interface compliance
var _ port.TransactionManager = (*DB)(nil)
