package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// StoreRepository implements port.StoreRepository
type StoreRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *sql.DB, logger *zap.Logger) port.StoreRepository {
	return &StoreRepository{
		db:     db,
		logger: logger,
	}
}

const storeColumns = `id, tenant_id, code, name, address, is_active, created_at, updated_at`

func (r *StoreRepository) Create(ctx context.Context, store *entity.Store) error {
	query := `
		INSERT INTO stores (` + storeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		store.ID, store.TenantID, store.Code, store.Name,
		store.Address, store.IsActive, store.CreatedAt, store.UpdatedAt,
	)
	if err != nil {
		err = translateError(err)
		r.logger.Error("Failed to create store", zap.String("code", store.Code), zap.Error(err))
		return err
	}
	return nil
}

func (r *StoreRepository) Update(ctx context.Context, store *entity.Store) error {
	query := `
		UPDATE stores
		SET name = ?, address = ?, is_active = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		store.Name, store.Address, store.IsActive, store.UpdatedAt,
		store.TenantID, store.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update store", zap.String("id", store.ID), zap.Error(err))
		return fmt.Errorf("failed to update store: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *StoreRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE tenant_id = ? AND id = ?`
	return r.getOne(ctx, query, tenantID, id)
}

func (r *StoreRepository) GetByCode(ctx context.Context, tenantID, code string) (*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE tenant_id = ? AND code = ?`
	return r.getOne(ctx, query, tenantID, code)
}

func (r *StoreRepository) List(ctx context.Context, tenantID string) ([]*entity.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE tenant_id = ? ORDER BY code`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, tenantID)
	if err != nil {
		r.logger.Error("Failed to list stores", zap.Error(err))
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	var stores []*entity.Store
	for rows.Next() {
		store, err := r.scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}

func (r *StoreRepository) getOne(ctx context.Context, query string, args ...interface{}) (*entity.Store, error) {
	store, err := r.scanStore(getExecutor(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get store", zap.Error(err))
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return store, nil
}

func (r *StoreRepository) scanStore(row rowScanner) (*entity.Store, error) {
	var store entity.Store
	var address sql.NullString

	err := row.Scan(
		&store.ID, &store.TenantID, &store.Code, &store.Name,
		&address, &store.IsActive, &store.CreatedAt, &store.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	store.Address = address.String
	return &store, nil
}

// Verify interface compliance
var _ port.StoreRepository = (*StoreRepository)(nil)
