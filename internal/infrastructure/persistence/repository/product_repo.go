package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// ProductRepository implements port.ProductRepository
type ProductRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) port.ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

const productColumns = `id, tenant_id, sku, name, unit, price, is_active, created_at, updated_at`

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		product.ID, product.TenantID, product.SKU, product.Name,
		product.Unit, product.Price.String(), product.IsActive,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		err = translateError(err)
		r.logger.Error("Failed to create product", zap.String("sku", product.SKU), zap.Error(err))
		return err
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = ?, unit = ?, price = ?, is_active = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		product.Name, product.Unit, product.Price.String(), product.IsActive,
		product.UpdatedAt, product.TenantID, product.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update product", zap.String("id", product.ID), zap.Error(err))
		return fmt.Errorf("failed to update product: %w", err)
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

func (r *ProductRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = ? AND id = ?`
	return r.getOne(ctx, query, tenantID, id)
}

func (r *ProductRepository) GetBySKU(ctx context.Context, tenantID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = ? AND sku = ?`
	return r.getOne(ctx, query, tenantID, sku)
}

func (r *ProductRepository) List(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = ? ORDER BY sku`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, tenantID)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *ProductRepository) getOne(ctx context.Context, query string, args ...interface{}) (*entity.Product, error) {
	product, err := r.scanProduct(getExecutor(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get product", zap.Error(err))
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (r *ProductRepository) scanProduct(row rowScanner) (*entity.Product, error) {
	var product entity.Product
	var price string
	var unit sql.NullString

	err := row.Scan(
		&product.ID, &product.TenantID, &product.SKU, &product.Name,
		&unit, &price, &product.IsActive, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Unit = unit.String
	if product.Price, err = parseDecimal(price); err != nil {
		return nil, err
	}
	return &product, nil
}

// Verify interface compliance
var _ port.ProductRepository = (*ProductRepository)(nil)
