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

// CreateTransferInput carries a new transfer request.
type CreateTransferInput struct {
	TenantID           string
	SourceStoreID      string
	DestinationStoreID string
	ProductID          string
	Quantity           decimal.Decimal
	Notes              string
}

// TransferService owns the inventory transfer lifecycle and coordinates it
// with the stock ledger and the approval workflow. Reservation moves only
// the reserved quantity; completion is the single step that moves on-hand
// stock between the two store ledgers.
type TransferService interface {
	Create(ctx context.Context, requestedBy string, in CreateTransferInput) (*entity.InventoryTransfer, error)
	Approve(ctx context.Context, tenantID, id, approvedBy string) (*entity.InventoryTransfer, error)
	Reject(ctx context.Context, tenantID, id, rejectedBy, notes string) (*entity.InventoryTransfer, error)
	Ship(ctx context.Context, tenantID, id, actorID string) (*entity.InventoryTransfer, error)
	Complete(ctx context.Context, tenantID, id, actorID string) (*entity.InventoryTransfer, error)
	Cancel(ctx context.Context, tenantID, id, cancelledBy string) (*entity.InventoryTransfer, error)
	Get(ctx context.Context, tenantID, id string) (*entity.InventoryTransfer, error)
	List(ctx context.Context, tenantID string, status entity.TransferStatus, limit, offset int) ([]*entity.InventoryTransfer, error)

	// HandleApprovalOutcome implements bridge.OutcomeHandler for
	// inventory_transfer approval requests.
	HandleApprovalOutcome(ctx context.Context, req *entity.ApprovalRequest, decision entity.ApprovalStatus, approverID, comments string) error
}

type transferServiceImpl struct {
	transfers port.TransferRepository
	inventory port.InventoryRepository
	stores    port.StoreRepository
	products  port.ProductRepository
	rules     ApprovalRuleService
	approvals ApprovalService
	txManager port.TransactionManager
	audit     AuditService
	logger    Logger
}

// NewTransferService creates a new TransferService.
func NewTransferService(
	transfers port.TransferRepository,
	inventory port.InventoryRepository,
	stores port.StoreRepository,
	products port.ProductRepository,
	rules ApprovalRuleService,
	approvals ApprovalService,
	txManager port.TransactionManager,
	audit AuditService,
	logger Logger,
) TransferService {
	return &transferServiceImpl{
		transfers: transfers,
		inventory: inventory,
		stores:    stores,
		products:  products,
		rules:     rules,
		approvals: approvals,
		txManager: txManager,
		audit:     audit,
		logger:    logger,
	}
}

func (s *transferServiceImpl) Create(ctx context.Context, requestedBy string, in CreateTransferInput) (*entity.InventoryTransfer, error) {
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", entity.ErrValidation)
	}
	if in.SourceStoreID == in.DestinationStoreID {
		return nil, fmt.Errorf("%w: source and destination store must differ", entity.ErrValidation)
	}

	var transfer *entity.InventoryTransfer
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, storeID := range []string{in.SourceStoreID, in.DestinationStoreID} {
			store, err := s.stores.GetByID(txCtx, in.TenantID, storeID)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("%w: store %s", entity.ErrNotFound, storeID)
			}
		}
		product, err := s.products.GetByID(txCtx, in.TenantID, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: product %s", entity.ErrNotFound, in.ProductID)
		}

		source, err := s.inventory.Get(txCtx, in.TenantID, in.SourceStoreID, in.ProductID)
		if err != nil {
			return err
		}
		if source == nil {
			return fmt.Errorf("%w: no inventory for product %s at source store", entity.ErrNotFound, in.ProductID)
		}
		if source.QuantityAvailable().LessThan(in.Quantity) {
			return fmt.Errorf("%w: available %s, requested %s",
				entity.ErrInsufficientAvailable, source.QuantityAvailable(), in.Quantity)
		}

		// Snapshot the cost now; later cost changes must not reprice an
		// in-flight transfer.
		unitCost := source.UnitCost
		amount := unitCost.Mul(in.Quantity)

		rule, err := s.rules.FindApplicableRule(txCtx, in.TenantID, entity.ObjectTypeInventoryTransfer,
			entity.ApprovalData{Amount: &amount}, &in.SourceStoreID)
		if err != nil {
			return err
		}
		requiresApproval := rule != nil && rule.Conditions.RequiresApproval && len(rule.Conditions.ApprovalLevels) > 0

		now := time.Now()
		transfer = &entity.InventoryTransfer{
			ID:                 uuid.NewString(),
			TenantID:           in.TenantID,
			SourceStoreID:      in.SourceStoreID,
			DestinationStoreID: in.DestinationStoreID,
			ProductID:          in.ProductID,
			Quantity:           in.Quantity,
			UnitCost:           unitCost,
			Status:             entity.TransferStatusPending,
			RequestedBy:        requestedBy,
			Notes:              in.Notes,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		if !requiresApproval {
			// Auto-approved transfers reserve at creation, inside this
			// same transaction, so the stock they will move cannot be
			// consumed between creation and shipping.
			transfer.Status = entity.TransferStatusApproved
			transfer.ApprovedAt = &now
			if err := s.inventory.Reserve(txCtx, in.TenantID, in.SourceStoreID, in.ProductID, in.Quantity); err != nil {
				return err
			}
		}

		if err := s.createWithNumber(txCtx, transfer, now); err != nil {
			return err
		}

		if requiresApproval {
			_, err = s.approvals.CreateRequest(txCtx, CreateApprovalRequestInput{
				TenantID:    in.TenantID,
				StoreID:     &in.SourceStoreID,
				RequesterID: requestedBy,
				ObjectType:  entity.ObjectTypeInventoryTransfer,
				ObjectID:    transfer.ID,
				Data:        entity.ApprovalData{Amount: &amount},
			})
			if err != nil {
				return fmt.Errorf("create linked approval request: %w", err)
			}
		}

		s.audit.Record(txCtx, in.TenantID, &in.SourceStoreID, requestedBy, entity.AuditActionInsert, "inventory_transfers", transfer.ID, transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory transfer created",
		"transfer_id", transfer.ID,
		"transfer_number", transfer.TransferNumber,
		"status", string(transfer.Status),
	)
	return transfer, nil
}

// createWithNumber inserts the transfer, assigning the next daily sequence
// number and retrying on a collision with a concurrent creator.
func (s *transferServiceImpl) createWithNumber(ctx context.Context, transfer *entity.InventoryTransfer, now time.Time) error {
	seq, err := s.transfers.CountCreatedSince(ctx, transfer.TenantID, localMidnight(now))
	if err != nil {
		return err
	}

	for attempt := 0; attempt < numberRetryBudget; attempt++ {
		transfer.TransferNumber = documentNumber("TRF", now, seq+1+int64(attempt))
		err = s.transfers.Create(ctx, transfer)
		if err == nil {
			return nil
		}
		if !errors.Is(err, entity.ErrDuplicate) {
			return err
		}
	}
	return fmt.Errorf("%w: transfer number collision after %d attempts", entity.ErrDuplicate, numberRetryBudget)
}

func (s *transferServiceImpl) Approve(ctx context.Context, tenantID, id, approvedBy string) (*entity.InventoryTransfer, error) {
	var transfer *entity.InventoryTransfer
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		transfer, err = s.mustGet(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		machine := lifecycle.ForTransfer(transfer.Status)
		if err := machine.Fire(lifecycle.TriggerApprove); err != nil {
			return fmt.Errorf("%w: transfer is %s", entity.ErrInvalidState, transfer.Status)
		}

		// The creation-time availability check may be stale by now; a
		// failed reservation aborts the whole approval and leaves the
		// transfer pending.
		if err := s.inventory.Reserve(txCtx, tenantID, transfer.SourceStoreID, transfer.ProductID, transfer.Quantity); err != nil {
			return err
		}

		now := time.Now()
		patch := port.TransferPatch{ApprovedBy: &approvedBy, ApprovedAt: &now}
		if err := s.transfers.UpdateStatus(txCtx, tenantID, id, entity.TransferStatusPending, entity.TransferStatusApproved, patch); err != nil {
			return err
		}
		transfer.Status = entity.TransferStatusApproved
		transfer.ApprovedBy = &approvedBy
		transfer.ApprovedAt = &now

		s.audit.Record(txCtx, tenantID, &transfer.SourceStoreID, approvedBy, entity.AuditActionUpdate, "inventory_transfers", id, transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *transferServiceImpl) Reject(ctx context.Context, tenantID, id, rejectedBy, notes string) (*entity.InventoryTransfer, error) {
	var transfer *entity.InventoryTransfer
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		transfer, err = s.mustGet(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		machine := lifecycle.ForTransfer(transfer.Status)
		if err := machine.Fire(lifecycle.TriggerReject); err != nil {
			return fmt.Errorf("%w: transfer is %s", entity.ErrInvalidState, transfer.Status)
		}

		// Nothing was reserved for a pending transfer, so rejection has
		// no ledger effect.
		patch := port.TransferPatch{ApprovedBy: &rejectedBy}
		if notes != "" {
			patch.Notes = &notes
		}
		if err := s.transfers.UpdateStatus(txCtx, tenantID, id, entity.TransferStatusPending, entity.TransferStatusRejected, patch); err != nil {
			return err
		}
		transfer.Status = entity.TransferStatusRejected
		if notes != "" {
			transfer.Notes = notes
		}

		s.audit.Record(txCtx, tenantID, &transfer.SourceStoreID, rejectedBy, entity.AuditActionUpdate, "inventory_transfers", id, transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *transferServiceImpl) Ship(ctx context.Context, tenantID, id, actorID string) (*entity.InventoryTransfer, error) {
	var transfer *entity.InventoryTransfer
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		transfer, err = s.mustGet(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		machine := lifecycle.ForTransfer(transfer.Status)
		if err := machine.Fire(lifecycle.TriggerShip); err != nil {
			return fmt.Errorf("%w: transfer is %s", entity.ErrInvalidState, transfer.Status)
		}

		now := time.Now()
		if err := s.transfers.UpdateStatus(txCtx, tenantID, id, entity.TransferStatusApproved, entity.TransferStatusInTransit, port.TransferPatch{ShippedAt: &now}); err != nil {
			return err
		}
		transfer.Status = entity.TransferStatusInTransit
		transfer.ShippedAt = &now

		s.audit.Record(txCtx, tenantID, &transfer.SourceStoreID, actorID, entity.AuditActionUpdate, "inventory_transfers", id, transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *transferServiceImpl) Complete(ctx context.Context, tenantID, id, actorID string) (*entity.InventoryTransfer, error) {
	var transfer *entity.InventoryTransfer
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		transfer, err = s.mustGet(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		machine := lifecycle.ForTransfer(transfer.Status)
		if err := machine.Fire(lifecycle.TriggerComplete); err != nil {
			return fmt.Errorf("%w: transfer is %s", entity.ErrInvalidState, transfer.Status)
		}

		// The only step that moves on-hand stock. Release the
		// reservation first so on-hand never drops below reserved.
		if err := s.inventory.Release(txCtx, tenantID, transfer.SourceStoreID, transfer.ProductID, transfer.Quantity); err != nil {
			return err
		}
		if err := s.inventory.AdjustOnHand(txCtx, tenantID, transfer.SourceStoreID, transfer.ProductID, transfer.Quantity.Neg()); err != nil {
			return err
		}
		if err := s.inventory.AddStock(txCtx, tenantID, transfer.DestinationStoreID, transfer.ProductID, transfer.Quantity, transfer.UnitCost); err != nil {
			return err
		}

		now := time.Now()
		if err := s.transfers.UpdateStatus(txCtx, tenantID, id, entity.TransferStatusInTransit, entity.TransferStatusCompleted, port.TransferPatch{ReceivedAt: &now}); err != nil {
			return err
		}
		transfer.Status = entity.TransferStatusCompleted
		transfer.ReceivedAt = &now

		s.audit.Record(txCtx, tenantID, &transfer.SourceStoreID, actorID, entity.AuditActionUpdate, "inventory_transfers", id, transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory transfer completed",
		"transfer_id", transfer.ID, "transfer_number", transfer.TransferNumber)
	return transfer, nil
}

func (s *transferServiceImpl) Cancel(ctx context.Context, tenantID, id, cancelledBy string) (*entity.InventoryTransfer, error) {
	var transfer *entity.InventoryTransfer
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		transfer, err = s.mustGet(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		from := transfer.Status
		machine := lifecycle.ForTransfer(from)
		if err := machine.Fire(lifecycle.TriggerCancel); err != nil {
			return fmt.Errorf("%w: transfer is %s", entity.ErrInvalidState, from)
		}

		// Cancellation compensates an approved transfer by releasing
		// exactly the reserved quantity; a pending transfer reserved
		// nothing.
		if from == entity.TransferStatusApproved {
			if err := s.inventory.Release(txCtx, tenantID, transfer.SourceStoreID, transfer.ProductID, transfer.Quantity); err != nil {
				return err
			}
		}

		now := time.Now()
		if err := s.transfers.UpdateStatus(txCtx, tenantID, id, from, entity.TransferStatusCancelled, port.TransferPatch{CancelledAt: &now}); err != nil {
			return err
		}
		transfer.Status = entity.TransferStatusCancelled
		transfer.CancelledAt = &now

		s.audit.Record(txCtx, tenantID, &transfer.SourceStoreID, cancelledBy, entity.AuditActionUpdate, "inventory_transfers", id, transfer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *transferServiceImpl) Get(ctx context.Context, tenantID, id string) (*entity.InventoryTransfer, error) {
	return s.mustGet(ctx, tenantID, id)
}

func (s *transferServiceImpl) List(ctx context.Context, tenantID string, status entity.TransferStatus, limit, offset int) ([]*entity.InventoryTransfer, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.transfers.List(ctx, tenantID, status, limit, offset)
}

// HandleApprovalOutcome maps a resolved approval request onto the transfer
// lifecycle. Registered with the bridge for
// entity.ObjectTypeInventoryTransfer at startup.
func (s *transferServiceImpl) HandleApprovalOutcome(ctx context.Context, req *entity.ApprovalRequest, decision entity.ApprovalStatus, approverID, comments string) error {
	switch decision {
	case entity.ApprovalStatusApproved:
		_, err := s.Approve(ctx, req.TenantID, req.ObjectID, approverID)
		return err
	case entity.ApprovalStatusRejected:
		_, err := s.Reject(ctx, req.TenantID, req.ObjectID, approverID, comments)
		return err
	default:
		return fmt.Errorf("%w: unexpected approval decision %s", entity.ErrValidation, decision)
	}
}

func (s *transferServiceImpl) mustGet(ctx context.Context, tenantID, id string) (*entity.InventoryTransfer, error) {
	transfer, err := s.transfers.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, entity.ErrNotFound
	}
	return transfer, nil
}
