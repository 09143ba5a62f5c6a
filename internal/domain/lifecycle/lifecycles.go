package lifecycle

import "github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"

// Triggers shared across the domain lifecycles.
const (
	TriggerApprove  Trigger = "APPROVE"
	TriggerReject   Trigger = "REJECT"
	TriggerCancel   Trigger = "CANCEL"
	TriggerExpire   Trigger = "EXPIRE"
	TriggerShip     Trigger = "SHIP"
	TriggerComplete Trigger = "COMPLETE"
)

// ForApprovalRequest builds the approval request machine positioned at the
// given status. Pending is the only non-terminal state: a single terminal
// decision ends the request.
func ForApprovalRequest(status entity.ApprovalStatus) Machine {
	b := NewBuilder()
	b.Permit(State(entity.ApprovalStatusPending), TriggerApprove, State(entity.ApprovalStatusApproved)).
		Permit(State(entity.ApprovalStatusPending), TriggerReject, State(entity.ApprovalStatusRejected)).
		Permit(State(entity.ApprovalStatusPending), TriggerCancel, State(entity.ApprovalStatusCancelled)).
		Permit(State(entity.ApprovalStatusPending), TriggerExpire, State(entity.ApprovalStatusExpired)).
		Terminal(
			State(entity.ApprovalStatusApproved),
			State(entity.ApprovalStatusRejected),
			State(entity.ApprovalStatusCancelled),
			State(entity.ApprovalStatusExpired),
		)
	return b.Build(State(status))
}

// ForTransfer builds the inventory transfer machine positioned at the given
// status. Cancellation is permitted until the transfer ships.
func ForTransfer(status entity.TransferStatus) Machine {
	b := NewBuilder()
	b.Permit(State(entity.TransferStatusPending), TriggerApprove, State(entity.TransferStatusApproved)).
		Permit(State(entity.TransferStatusPending), TriggerReject, State(entity.TransferStatusRejected)).
		Permit(State(entity.TransferStatusPending), TriggerCancel, State(entity.TransferStatusCancelled)).
		Permit(State(entity.TransferStatusApproved), TriggerShip, State(entity.TransferStatusInTransit)).
		Permit(State(entity.TransferStatusApproved), TriggerCancel, State(entity.TransferStatusCancelled)).
		Permit(State(entity.TransferStatusInTransit), TriggerComplete, State(entity.TransferStatusCompleted)).
		Terminal(
			State(entity.TransferStatusRejected),
			State(entity.TransferStatusCompleted),
			State(entity.TransferStatusCancelled),
		)
	return b.Build(State(status))
}

// ForSale builds the sale machine positioned at the given status.
func ForSale(status entity.SaleStatus) Machine {
	b := NewBuilder()
	b.Permit(State(entity.SaleStatusPending), TriggerComplete, State(entity.SaleStatusCompleted)).
		Permit(State(entity.SaleStatusPending), TriggerCancel, State(entity.SaleStatusCancelled)).
		Terminal(
			State(entity.SaleStatusCompleted),
			State(entity.SaleStatusCancelled),
		)
	return b.Build(State(status))
}
