package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// InventoryRepository persists the per (tenant, store, product) stock
// ledger. The guarded mutations (Reserve, Release, AdjustOnHand) are atomic
// read-modify-writes: the quantity precondition is part of the UPDATE
// statement, so two racing callers can never both succeed past the same
// availability.
type InventoryRepository interface {
	Get(ctx context.Context, tenantID, storeID, productID string) (*entity.InventoryRecord, error)
	List(ctx context.Context, tenantID string, storeID string) ([]*entity.InventoryRecord, error)
	Create(ctx context.Context, rec *entity.InventoryRecord) error
	Update(ctx context.Context, rec *entity.InventoryRecord) error

	// Reserve adds qty to the reserved quantity if available >= qty.
	// Returns entity.ErrInsufficientAvailable or entity.ErrNotFound.
	Reserve(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error

	// Release subtracts qty from the reserved quantity if reserved >= qty.
	// Returns entity.ErrOverRelease or entity.ErrNotFound.
	Release(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error

	// AdjustOnHand applies a signed delta to the on-hand quantity, refusing
	// any delta that would leave on-hand below reserved. Returns
	// entity.ErrInsufficientQuantity or entity.ErrNotFound.
	AdjustOnHand(ctx context.Context, tenantID, storeID, productID string, delta decimal.Decimal) error

	// AddStock upserts the ledger row, incrementing on-hand by qty and
	// carrying unitCost onto newly created rows.
	AddStock(ctx context.Context, tenantID, storeID, productID string, qty, unitCost decimal.Decimal) error
}

// TransferRepository persists inventory transfers. Status-changing updates
// are guarded by the expected current status so a lost race surfaces as
// zero rows affected rather than a double transition.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.InventoryTransfer) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryTransfer, error)
	List(ctx context.Context, tenantID string, status entity.TransferStatus, limit, offset int) ([]*entity.InventoryTransfer, error)
	CountCreatedSince(ctx context.Context, tenantID string, since time.Time) (int64, error)

	// UpdateStatus moves the transfer from the expected status to the new
	// one, applying the patch fields. Returns entity.ErrInvalidState when
	// the row is no longer in the expected status.
	UpdateStatus(ctx context.Context, tenantID, id string, from, to entity.TransferStatus, patch TransferPatch) error
}

// TransferPatch carries the optional fields written alongside a transfer
// status change.
type TransferPatch struct {
	ApprovedBy  *string
	Notes       *string
	ApprovedAt  *time.Time
	ShippedAt   *time.Time
	ReceivedAt  *time.Time
	CancelledAt *time.Time
}

// ApprovalRuleRepository persists approval rules. Conditions round-trip as
// a single JSON document mapped to entity.RuleConditions at this boundary.
type ApprovalRuleRepository interface {
	Create(ctx context.Context, rule *entity.ApprovalRule) error
	Update(ctx context.Context, rule *entity.ApprovalRule) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.ApprovalRule, error)
	List(ctx context.Context, tenantID string) ([]*entity.ApprovalRule, error)

	// ListActive returns the tenant's active rules for the object type,
	// most recently created first. The matcher depends on this ordering.
	ListActive(ctx context.Context, tenantID string, objectType entity.ObjectType) ([]*entity.ApprovalRule, error)

	// SetActive toggles the soft-deactivation flag.
	SetActive(ctx context.Context, tenantID, id string, active bool) error
}

// ApprovalRequestRepository persists approval requests and their decision
// records.
type ApprovalRequestRepository interface {
	Create(ctx context.Context, req *entity.ApprovalRequest) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error)
	GetByObject(ctx context.Context, tenantID string, objectType entity.ObjectType, objectID string) (*entity.ApprovalRequest, error)
	ListPending(ctx context.Context, tenantID string) ([]*entity.ApprovalRequest, error)

	// AppendDecision records one approver's decision.
	AppendDecision(ctx context.Context, decision *entity.ApprovalDecision) error
	ListDecisions(ctx context.Context, requestID string) ([]*entity.ApprovalDecision, error)

	// UpdateProgress rewrites the level counters while the request stays
	// pending.
	UpdateProgress(ctx context.Context, id string, currentLevel, requiredApprovals, approvedCount, rejectedCount int) error

	// MarkDecided moves a pending request to a terminal status. Returns
	// entity.ErrInvalidState when the request already left pending.
	MarkDecided(ctx context.Context, id string, status entity.ApprovalStatus, decidedAt time.Time, cancelReason string) error

	// ExpirePending transitions every pending request whose expiry passed,
	// returning how many rows changed.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

// StoreRepository persists stores.
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	Update(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Store, error)
	GetByCode(ctx context.Context, tenantID, code string) (*entity.Store, error)
	List(ctx context.Context, tenantID string) ([]*entity.Store, error)
}

// ProductRepository persists products.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, tenantID, sku string) (*entity.Product, error)
	List(ctx context.Context, tenantID string) ([]*entity.Product, error)
}

// UserRepository looks up tenant users; the core only needs the role set to
// authorize approvers.
type UserRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*entity.User, error)
}

// SaleRepository persists sales and their lines.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error)
	CountCreatedSince(ctx context.Context, tenantID string, since time.Time) (int64, error)

	// UpdateStatus is guarded by the expected current status, mirroring
	// TransferRepository.UpdateStatus.
	UpdateStatus(ctx context.Context, tenantID, id string, from, to entity.SaleStatus, at time.Time) error
}

// AuditLogRepository persists audit records.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.AuditLog, error)
}

// TransactionManager runs a function inside a database transaction. Nested
// calls join the ambient transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
