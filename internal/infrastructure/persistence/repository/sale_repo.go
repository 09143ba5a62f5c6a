package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// SaleRepository implements port.SaleRepository
type SaleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *sql.DB, logger *zap.Logger) port.SaleRepository {
	return &SaleRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SaleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (
			id, tenant_id, store_id, sale_number, status, total, created_by,
			completed_at, cancelled_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := getExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, query,
		sale.ID, sale.TenantID, sale.StoreID, sale.SaleNumber,
		string(sale.Status), sale.Total.String(), sale.CreatedBy,
		nullTime(sale.CompletedAt), nullTime(sale.CancelledAt),
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		err = translateError(err)
		r.logger.Error("Failed to create sale", zap.String("sale_number", sale.SaleNumber), zap.Error(err))
		return err
	}

	itemQuery := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, line_total)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, item := range sale.Items {
		_, err := exec.ExecContext(ctx, itemQuery,
			item.ID, sale.ID, item.ProductID,
			item.Quantity.String(), item.UnitPrice.String(), item.LineTotal.String(),
		)
		if err != nil {
			err = translateError(err)
			r.logger.Error("Failed to create sale item", zap.String("sale_id", sale.ID), zap.Error(err))
			return err
		}
	}
	return nil
}

func (r *SaleRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	query := `
		SELECT id, tenant_id, store_id, sale_number, status, total, created_by,
			completed_at, cancelled_at, created_at, updated_at
		FROM sales
		WHERE tenant_id = ? AND id = ?
	`

	var sale entity.Sale
	var total string
	var completedAt, cancelledAt sql.NullTime

	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, tenantID, id).Scan(
		&sale.ID, &sale.TenantID, &sale.StoreID, &sale.SaleNumber,
		&sale.Status, &total, &sale.CreatedBy,
		&completedAt, &cancelledAt, &sale.CreatedAt, &sale.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get sale", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	if sale.Total, err = parseDecimal(total); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		sale.CompletedAt = &completedAt.Time
	}
	if cancelledAt.Valid {
		sale.CancelledAt = &cancelledAt.Time
	}

	items, err := r.listItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (r *SaleRepository) CountCreatedSince(ctx context.Context, tenantID string, since time.Time) (int64, error) {
	var count int64
	err := getExecutor(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sales WHERE tenant_id = ? AND created_at >= ?",
		tenantID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}
	return count, nil
}

func (r *SaleRepository) UpdateStatus(ctx context.Context, tenantID, id string, from, to entity.SaleStatus, at time.Time) error {
	var tsColumn string
	switch to {
	case entity.SaleStatusCompleted:
		tsColumn = "completed_at"
	case entity.SaleStatusCancelled:
		tsColumn = "cancelled_at"
	default:
		return fmt.Errorf("%w: %s is not a terminal sale status", entity.ErrValidation, to)
	}

	query := fmt.Sprintf(`
		UPDATE sales
		SET status = ?, %s = ?, updated_at = CURRENT_TIMESTAMP
		WHERE tenant_id = ? AND id = ? AND status = ?
	`, tsColumn)

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		string(to), at, tenantID, id, string(from),
	)
	if err != nil {
		r.logger.Error("Failed to update sale status", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update sale status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: sale %s is no longer %s", entity.ErrInvalidState, id, from)
	}
	return nil
}

func (r *SaleRepository) listItems(ctx context.Context, saleID string) ([]entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, quantity, unit_price, line_total
		FROM sale_items
		WHERE sale_id = ?
		ORDER BY rowid
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer rows.Close()

	var items []entity.SaleItem
	for rows.Next() {
		var item entity.SaleItem
		var quantity, unitPrice, lineTotal string
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &quantity, &unitPrice, &lineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		if item.Quantity, err = parseDecimal(quantity); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = parseDecimal(unitPrice); err != nil {
			return nil, err
		}
		if item.LineTotal, err = parseDecimal(lineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Verify interface compliance
var _ port.SaleRepository = (*SaleRepository)(nil)
