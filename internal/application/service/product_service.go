package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// ProductService manages a tenant's product catalog.
type ProductService interface {
	Create(ctx context.Context, actorID string, product *entity.Product) (*entity.Product, error)
	Update(ctx context.Context, actorID string, product *entity.Product) (*entity.Product, error)
	Get(ctx context.Context, tenantID, id string) (*entity.Product, error)
	List(ctx context.Context, tenantID string) ([]*entity.Product, error)
}

type productServiceImpl struct {
	products  port.ProductRepository
	txManager port.TransactionManager
	audit     AuditService
	logger    Logger
}

// NewProductService creates a new ProductService.
func NewProductService(products port.ProductRepository, txManager port.TransactionManager, audit AuditService, logger Logger) ProductService {
	return &productServiceImpl{products: products, txManager: txManager, audit: audit, logger: logger}
}

func (s *productServiceImpl) Create(ctx context.Context, actorID string, product *entity.Product) (*entity.Product, error) {
	if product.SKU == "" || product.Name == "" {
		return nil, fmt.Errorf("%w: product sku and name are required", entity.ErrValidation)
	}
	if product.Price.IsNegative() {
		return nil, fmt.Errorf("%w: product price cannot be negative", entity.ErrValidation)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.products.GetBySKU(txCtx, product.TenantID, product.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: product sku %s", entity.ErrDuplicate, product.SKU)
		}

		now := time.Now()
		product.ID = uuid.NewString()
		product.IsActive = true
		product.CreatedAt = now
		product.UpdatedAt = now
		if err := s.products.Create(txCtx, product); err != nil {
			return err
		}

		s.audit.Record(txCtx, product.TenantID, nil, actorID, entity.AuditActionInsert, "products", product.ID, product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productServiceImpl) Update(ctx context.Context, actorID string, product *entity.Product) (*entity.Product, error) {
	if product.Price.IsNegative() {
		return nil, fmt.Errorf("%w: product price cannot be negative", entity.ErrValidation)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.products.GetByID(txCtx, product.TenantID, product.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return entity.ErrNotFound
		}

		product.SKU = existing.SKU
		product.CreatedAt = existing.CreatedAt
		product.UpdatedAt = time.Now()
		if err := s.products.Update(txCtx, product); err != nil {
			return err
		}

		s.audit.Record(txCtx, product.TenantID, nil, actorID, entity.AuditActionUpdate, "products", product.ID, product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productServiceImpl) Get(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, entity.ErrNotFound
	}
	return product, nil
}

func (s *productServiceImpl) List(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	return s.products.List(ctx, tenantID)
}
