package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/lifecycle"
)

// SaleLineInput is one requested product line.
type SaleLineInput struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CreateSaleInput carries a new sale request.
type CreateSaleInput struct {
	TenantID string
	StoreID  string
	Lines    []SaleLineInput
}

// SaleService is the minimal sales surface. It exists to exercise the
// inventory ledger from a second consumer: creation reserves each line,
// completion converts the reservations into on-hand decrements, and
// cancellation releases them.
type SaleService interface {
	Create(ctx context.Context, createdBy string, in CreateSaleInput) (*entity.Sale, error)
	Complete(ctx context.Context, tenantID, id, actorID string) (*entity.Sale, error)
	Cancel(ctx context.Context, tenantID, id, actorID string) (*entity.Sale, error)
	Get(ctx context.Context, tenantID, id string) (*entity.Sale, error)
}

type saleServiceImpl struct {
	sales     port.SaleRepository
	inventory port.InventoryRepository
	stores    port.StoreRepository
	products  port.ProductRepository
	txManager port.TransactionManager
	audit     AuditService
	logger    Logger
}

// NewSaleService creates a new SaleService.
func NewSaleService(
	sales port.SaleRepository,
	inventory port.InventoryRepository,
	stores port.StoreRepository,
	products port.ProductRepository,
	txManager port.TransactionManager,
	audit AuditService,
	logger Logger,
) SaleService {
	return &saleServiceImpl{
		sales:     sales,
		inventory: inventory,
		stores:    stores,
		products:  products,
		txManager: txManager,
		audit:     audit,
		logger:    logger,
	}
}

func (s *saleServiceImpl) Create(ctx context.Context, createdBy string, in CreateSaleInput) (*entity.Sale, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: a sale needs at least one line", entity.ErrValidation)
	}
	for _, line := range in.Lines {
		if !line.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: line quantity must be positive", entity.ErrValidation)
		}
	}

	var sale *entity.Sale
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		store, err := s.stores.GetByID(txCtx, in.TenantID, in.StoreID)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("%w: store %s", entity.ErrNotFound, in.StoreID)
		}

		now := time.Now()
		sale = &entity.Sale{
			ID:        uuid.NewString(),
			TenantID:  in.TenantID,
			StoreID:   in.StoreID,
			Status:    entity.SaleStatusPending,
			CreatedBy: createdBy,
			Total:     decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}

		for _, line := range in.Lines {
			product, err := s.products.GetByID(txCtx, in.TenantID, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: product %s", entity.ErrNotFound, line.ProductID)
			}

			// Reservation is the availability check; the guarded update
			// fails the whole sale if any line cannot be covered.
			if err := s.inventory.Reserve(txCtx, in.TenantID, in.StoreID, line.ProductID, line.Quantity); err != nil {
				return err
			}

			lineTotal := product.Price.Mul(line.Quantity)
			sale.Items = append(sale.Items, entity.SaleItem{
				ID:        uuid.NewString(),
				SaleID:    sale.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				LineTotal: lineTotal,
			})
			sale.Total = sale.Total.Add(lineTotal)
		}

		if err := s.createWithNumber(txCtx, sale, now); err != nil {
			return err
		}

		s.audit.Record(txCtx, in.TenantID, &in.StoreID, createdBy, entity.AuditActionInsert, "sales", sale.ID, sale)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale created", "sale_id", sale.ID, "sale_number", sale.SaleNumber)
	return sale, nil
}

func (s *saleServiceImpl) createWithNumber(ctx context.Context, sale *entity.Sale, now time.Time) error {
	seq, err := s.sales.CountCreatedSince(ctx, sale.TenantID, localMidnight(now))
	if err != nil {
		return err
	}

	for attempt := 0; attempt < numberRetryBudget; attempt++ {
		sale.SaleNumber = documentNumber("SAL", now, seq+1+int64(attempt))
		err = s.sales.Create(ctx, sale)
		if err == nil {
			return nil
		}
		if !errors.Is(err, entity.ErrDuplicate) {
			return err
		}
	}
	return fmt.Errorf("%w: sale number collision after %d attempts", entity.ErrDuplicate, numberRetryBudget)
}

func (s *saleServiceImpl) Complete(ctx context.Context, tenantID, id, actorID string) (*entity.Sale, error) {
	var sale *entity.Sale
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sale, err = s.mustGet(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		machine := lifecycle.ForSale(sale.Status)
		if err := machine.Fire(lifecycle.TriggerComplete); err != nil {
			return fmt.Errorf("%w: sale is %s", entity.ErrInvalidState, sale.Status)
		}

		for _, item := range sale.Items {
			if err := s.inventory.Release(txCtx, tenantID, sale.StoreID, item.ProductID, item.Quantity); err != nil {
				return err
			}
			if err := s.inventory.AdjustOnHand(txCtx, tenantID, sale.StoreID, item.ProductID, item.Quantity.Neg()); err != nil {
				return err
			}
		}

		now := time.Now()
		if err := s.sales.UpdateStatus(txCtx, tenantID, id, entity.SaleStatusPending, entity.SaleStatusCompleted, now); err != nil {
			return err
		}
		sale.Status = entity.SaleStatusCompleted
		sale.CompletedAt = &now

		s.audit.Record(txCtx, tenantID, &sale.StoreID, actorID, entity.AuditActionUpdate, "sales", id, sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *saleServiceImpl) Cancel(ctx context.Context, tenantID, id, actorID string) (*entity.Sale, error) {
	var sale *entity.Sale
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sale, err = s.mustGet(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		machine := lifecycle.ForSale(sale.Status)
		if err := machine.Fire(lifecycle.TriggerCancel); err != nil {
			return fmt.Errorf("%w: sale is %s", entity.ErrInvalidState, sale.Status)
		}

		for _, item := range sale.Items {
			if err := s.inventory.Release(txCtx, tenantID, sale.StoreID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		now := time.Now()
		if err := s.sales.UpdateStatus(txCtx, tenantID, id, entity.SaleStatusPending, entity.SaleStatusCancelled, now); err != nil {
			return err
		}
		sale.Status = entity.SaleStatusCancelled
		sale.CancelledAt = &now

		s.audit.Record(txCtx, tenantID, &sale.StoreID, actorID, entity.AuditActionUpdate, "sales", id, sale)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *saleServiceImpl) Get(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return s.mustGet(ctx, tenantID, id)
}

func (s *saleServiceImpl) mustGet(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	sale, err := s.sales.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, entity.ErrNotFound
	}
	return sale, nil
}
