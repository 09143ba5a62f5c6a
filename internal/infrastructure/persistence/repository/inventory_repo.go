package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// InventoryRepository implements port.InventoryRepository
type InventoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *sql.DB, logger *zap.Logger) port.InventoryRepository {
	return &InventoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *InventoryRepository) Get(ctx context.Context, tenantID, storeID, productID string) (*entity.InventoryRecord, error) {
	query := `
		SELECT id, tenant_id, store_id, product_id,
			quantity_on_hand, quantity_reserved, unit_cost,
			created_at, updated_at
		FROM inventory_records
		WHERE tenant_id = ? AND store_id = ? AND product_id = ?
	`

	rec, err := r.scanRecord(getExecutor(ctx, r.db).QueryRowContext(ctx, query, tenantID, storeID, productID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get inventory record",
			zap.String("store_id", storeID),
			zap.String("product_id", productID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}
	return rec, nil
}

func (r *InventoryRepository) List(ctx context.Context, tenantID string, storeID string) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT id, tenant_id, store_id, product_id,
			quantity_on_hand, quantity_reserved, unit_cost,
			created_at, updated_at
		FROM inventory_records
		WHERE tenant_id = ?
	`
	args := []interface{}{tenantID}
	if storeID != "" {
		query += " AND store_id = ?"
		args = append(args, storeID)
	}
	query += " ORDER BY store_id, product_id"

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list inventory records", zap.Error(err))
		return nil, fmt.Errorf("failed to list inventory records: %w", err)
	}
	defer rows.Close()

	var records []*entity.InventoryRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *InventoryRepository) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (
			id, tenant_id, store_id, product_id,
			quantity_on_hand, quantity_reserved, unit_cost,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		rec.ID, rec.TenantID, rec.StoreID, rec.ProductID,
		rec.QuantityOnHand.String(), rec.QuantityReserved.String(), rec.UnitCost.String(),
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create inventory record",
			zap.String("store_id", rec.StoreID),
			zap.String("product_id", rec.ProductID),
			zap.Error(err))
		return translateError(err)
	}
	return nil
}

func (r *InventoryRepository) Update(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		UPDATE inventory_records
		SET quantity_on_hand = ?, quantity_reserved = ?, unit_cost = ?, updated_at = ?
		WHERE tenant_id = ? AND store_id = ? AND product_id = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		rec.QuantityOnHand.String(), rec.QuantityReserved.String(), rec.UnitCost.String(), rec.UpdatedAt,
		rec.TenantID, rec.StoreID, rec.ProductID,
	)
	if err != nil {
		r.logger.Error("Failed to update inventory record", zap.Error(err))
		return fmt.Errorf("failed to update inventory record: %w", err)
	}
	return r.requireRow(ctx, result, rec.TenantID, rec.StoreID, rec.ProductID, nil)
}

// Reserve increments the reservation only when enough stock is available.
// The precondition lives inside the UPDATE so concurrent reservations
// serialize on the row instead of racing a prior read.
func (r *InventoryRepository) Reserve(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error {
	query := `
		UPDATE inventory_records
		SET quantity_reserved = quantity_reserved + ?, updated_at = CURRENT_TIMESTAMP
		WHERE tenant_id = ? AND store_id = ? AND product_id = ?
			AND quantity_on_hand - quantity_reserved >= CAST(? AS NUMERIC)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		qty.String(), tenantID, storeID, productID, qty.String(),
	)
	if err != nil {
		r.logger.Error("Failed to reserve inventory",
			zap.String("store_id", storeID),
			zap.String("product_id", productID),
			zap.Error(err))
		return fmt.Errorf("failed to reserve inventory: %w", err)
	}
	return r.requireRow(ctx, result, tenantID, storeID, productID, entity.ErrInsufficientAvailable)
}

func (r *InventoryRepository) Release(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error {
	query := `
		UPDATE inventory_records
		SET quantity_reserved = quantity_reserved - ?, updated_at = CURRENT_TIMESTAMP
		WHERE tenant_id = ? AND store_id = ? AND product_id = ?
			AND quantity_reserved >= CAST(? AS NUMERIC)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		qty.String(), tenantID, storeID, productID, qty.String(),
	)
	if err != nil {
		r.logger.Error("Failed to release inventory",
			zap.String("store_id", storeID),
			zap.String("product_id", productID),
			zap.Error(err))
		return fmt.Errorf("failed to release inventory: %w", err)
	}
	return r.requireRow(ctx, result, tenantID, storeID, productID, entity.ErrOverRelease)
}

// AdjustOnHand refuses any delta that would leave on-hand below reserved,
// which keeps the available quantity non-negative.
func (r *InventoryRepository) AdjustOnHand(ctx context.Context, tenantID, storeID, productID string, delta decimal.Decimal) error {
	query := `
		UPDATE inventory_records
		SET quantity_on_hand = quantity_on_hand + ?, updated_at = CURRENT_TIMESTAMP
		WHERE tenant_id = ? AND store_id = ? AND product_id = ?
			AND quantity_on_hand + CAST(? AS NUMERIC) >= quantity_reserved
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		delta.String(), tenantID, storeID, productID, delta.String(),
	)
	if err != nil {
		r.logger.Error("Failed to adjust on-hand quantity",
			zap.String("store_id", storeID),
			zap.String("product_id", productID),
			zap.Error(err))
		return fmt.Errorf("failed to adjust on-hand quantity: %w", err)
	}
	return r.requireRow(ctx, result, tenantID, storeID, productID, entity.ErrInsufficientQuantity)
}

func (r *InventoryRepository) AddStock(ctx context.Context, tenantID, storeID, productID string, qty, unitCost decimal.Decimal) error {
	// Upsert keyed on the ledger's unique triple. Existing rows keep their
	// cost; incoming cost applies only to rows created by this insert.
	query := `
		INSERT INTO inventory_records (
			id, tenant_id, store_id, product_id,
			quantity_on_hand, quantity_reserved, unit_cost,
			created_at, updated_at
		) VALUES (
			lower(hex(randomblob(16))), ?, ?, ?, ?, 0, ?,
			CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
		)
		ON CONFLICT (tenant_id, store_id, product_id) DO UPDATE SET
			quantity_on_hand = quantity_on_hand + excluded.quantity_on_hand,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		tenantID, storeID, productID, qty.String(), unitCost.String(),
	)
	if err != nil {
		r.logger.Error("Failed to add stock",
			zap.String("store_id", storeID),
			zap.String("product_id", productID),
			zap.Error(err))
		return fmt.Errorf("failed to add stock: %w", err)
	}
	return nil
}

// requireRow distinguishes "row missing" from "guard failed" after a guarded
// UPDATE touched zero rows.
func (r *InventoryRepository) requireRow(ctx context.Context, result sql.Result, tenantID, storeID, productID string, guardErr error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	if guardErr == nil {
		return entity.ErrNotFound
	}

	var exists int
	err = getExecutor(ctx, r.db).QueryRowContext(ctx,
		"SELECT 1 FROM inventory_records WHERE tenant_id = ? AND store_id = ? AND product_id = ?",
		tenantID, storeID, productID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return entity.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check inventory record existence: %w", err)
	}
	return guardErr
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *InventoryRepository) scanRecord(row rowScanner) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	var onHand, reserved, unitCost string

	err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.StoreID, &rec.ProductID,
		&onHand, &reserved, &unitCost,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rec.QuantityOnHand, err = parseDecimal(onHand); err != nil {
		return nil, err
	}
	if rec.QuantityReserved, err = parseDecimal(reserved); err != nil {
		return nil, err
	}
	if rec.UnitCost, err = parseDecimal(unitCost); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Verify interface compliance
var _ port.InventoryRepository = (*InventoryRepository)(nil)
