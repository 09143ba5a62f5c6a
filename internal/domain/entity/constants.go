package entity

// ObjectType identifies the kind of domain object an approval request gates.
type ObjectType string

const (
	ObjectTypeInventoryTransfer   ObjectType = "inventory_transfer"
	ObjectTypeInventoryAdjustment ObjectType = "inventory_adjustment"
	ObjectTypeSale                ObjectType = "sale"
	ObjectTypeRefund              ObjectType = "refund"
)

// IsValid reports whether the object type is one of the declared constants.
func (t ObjectType) IsValid() bool {
	switch t {
	case ObjectTypeInventoryTransfer, ObjectTypeInventoryAdjustment, ObjectTypeSale, ObjectTypeRefund:
		return true
	default:
		return false
	}
}

// String returns the string representation of the object type.
func (t ObjectType) String() string {
	return string(t)
}

// ApprovalStatus is the lifecycle status of an approval request.
type ApprovalStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "pending"
	ApprovalStatusApproved  ApprovalStatus = "approved"
	ApprovalStatusRejected  ApprovalStatus = "rejected"
	ApprovalStatusCancelled ApprovalStatus = "cancelled"
	ApprovalStatusExpired   ApprovalStatus = "expired"
)

// TransferStatus is the lifecycle status of an inventory transfer.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusApproved  TransferStatus = "approved"
	TransferStatusRejected  TransferStatus = "rejected"
	TransferStatusInTransit TransferStatus = "in_transit"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusCancelled TransferStatus = "cancelled"
)

// SaleStatus is the lifecycle status of a sale.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Decision values for individual approval records.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// RoleSystem is the synthetic approver role recorded when no rule requires
// human sign-off and the request is auto-approved.
const RoleSystem = "system"

// Elevated roles allowed to cancel approval requests they did not create.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// Audit actions recorded by the audit service.
const (
	AuditActionInsert = "INSERT"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)
