package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// InventoryService owns the stock ledger. All quantity mutations go through
// the repository's guarded updates, so the ledger invariants
// (available >= 0, reserved <= on-hand) hold under concurrent callers.
type InventoryService interface {
	Get(ctx context.Context, tenantID, storeID, productID string) (*entity.InventoryRecord, error)
	List(ctx context.Context, tenantID, storeID string) ([]*entity.InventoryRecord, error)

	// CreateOrUpdate upserts the ledger row for (tenant, store, product).
	// With createOnly set it fails with entity.ErrDuplicate when the row
	// already exists.
	CreateOrUpdate(ctx context.Context, actorID string, rec *entity.InventoryRecord, createOnly bool) (*entity.InventoryRecord, error)

	Reserve(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error
	Release(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error

	// Adjust applies a signed on-hand delta; positive is stock-in,
	// negative stock-out.
	Adjust(ctx context.Context, actorID string, adj *entity.InventoryAdjustment) error
}

type inventoryServiceImpl struct {
	repo      port.InventoryRepository
	txManager port.TransactionManager
	audit     AuditService
	logger    Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(repo port.InventoryRepository, txManager port.TransactionManager, audit AuditService, logger Logger) InventoryService {
	return &inventoryServiceImpl{
		repo:      repo,
		txManager: txManager,
		audit:     audit,
		logger:    logger,
	}
}

func (s *inventoryServiceImpl) Get(ctx context.Context, tenantID, storeID, productID string) (*entity.InventoryRecord, error) {
	rec, err := s.repo.Get(ctx, tenantID, storeID, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, entity.ErrNotFound
	}
	return rec, nil
}

func (s *inventoryServiceImpl) List(ctx context.Context, tenantID, storeID string) ([]*entity.InventoryRecord, error) {
	return s.repo.List(ctx, tenantID, storeID)
}

func (s *inventoryServiceImpl) CreateOrUpdate(ctx context.Context, actorID string, rec *entity.InventoryRecord, createOnly bool) (*entity.InventoryRecord, error) {
	if rec.TenantID == "" || rec.StoreID == "" || rec.ProductID == "" {
		return nil, fmt.Errorf("%w: tenant, store and product are required", entity.ErrValidation)
	}
	if rec.QuantityOnHand.IsNegative() || rec.QuantityReserved.IsNegative() {
		return nil, fmt.Errorf("%w: quantities must not be negative", entity.ErrValidation)
	}
	if rec.QuantityReserved.GreaterThan(rec.QuantityOnHand) {
		return nil, fmt.Errorf("%w: reserved must not exceed on-hand", entity.ErrValidation)
	}

	var out *entity.InventoryRecord
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.Get(txCtx, rec.TenantID, rec.StoreID, rec.ProductID)
		if err != nil {
			return err
		}

		if existing == nil {
			rec.ID = uuid.NewString()
			rec.CreatedAt = time.Now()
			rec.UpdatedAt = rec.CreatedAt
			if err := s.repo.Create(txCtx, rec); err != nil {
				return err
			}
			out = rec
			s.audit.Record(txCtx, rec.TenantID, &rec.StoreID, actorID, entity.AuditActionInsert, "inventory_records", rec.ID, rec)
			return nil
		}

		if createOnly {
			return fmt.Errorf("%w: inventory record already exists for product %s", entity.ErrDuplicate, rec.ProductID)
		}

		existing.QuantityOnHand = rec.QuantityOnHand
		existing.QuantityReserved = rec.QuantityReserved
		existing.UnitCost = rec.UnitCost
		existing.UpdatedAt = time.Now()
		if err := s.repo.Update(txCtx, existing); err != nil {
			return err
		}
		out = existing
		s.audit.Record(txCtx, rec.TenantID, &rec.StoreID, actorID, entity.AuditActionUpdate, "inventory_records", existing.ID, existing)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *inventoryServiceImpl) Reserve(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return fmt.Errorf("%w: reserve quantity must be positive", entity.ErrValidation)
	}
	return s.repo.Reserve(ctx, tenantID, storeID, productID, qty)
}

func (s *inventoryServiceImpl) Release(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return fmt.Errorf("%w: release quantity must be positive", entity.ErrValidation)
	}
	return s.repo.Release(ctx, tenantID, storeID, productID, qty)
}

func (s *inventoryServiceImpl) Adjust(ctx context.Context, actorID string, adj *entity.InventoryAdjustment) error {
	if adj.Quantity.IsZero() {
		return fmt.Errorf("%w: adjustment quantity must not be zero", entity.ErrValidation)
	}
	if adj.Reason == "" {
		return fmt.Errorf("%w: adjustment reason is required", entity.ErrValidation)
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.AdjustOnHand(txCtx, adj.TenantID, adj.StoreID, adj.ProductID, adj.Quantity); err != nil {
			return err
		}
		s.audit.Record(txCtx, adj.TenantID, &adj.StoreID, actorID, entity.AuditActionUpdate, "inventory_records", adj.ProductID, adj)
		return nil
	})
}
