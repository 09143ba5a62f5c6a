package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

func TestForApprovalRequest(t *testing.T) {
	tests := []struct {
		name    string
		status  entity.ApprovalStatus
		trigger Trigger
		want    State
		wantErr bool
	}{
		{name: "pending approve", status: entity.ApprovalStatusPending, trigger: TriggerApprove, want: State(entity.ApprovalStatusApproved)},
		{name: "pending reject", status: entity.ApprovalStatusPending, trigger: TriggerReject, want: State(entity.ApprovalStatusRejected)},
		{name: "pending cancel", status: entity.ApprovalStatusPending, trigger: TriggerCancel, want: State(entity.ApprovalStatusCancelled)},
		{name: "pending expire", status: entity.ApprovalStatusPending, trigger: TriggerExpire, want: State(entity.ApprovalStatusExpired)},
		{name: "approved is terminal", status: entity.ApprovalStatusApproved, trigger: TriggerReject, wantErr: true},
		{name: "rejected is terminal", status: entity.ApprovalStatusRejected, trigger: TriggerApprove, wantErr: true},
		{name: "cancelled is terminal", status: entity.ApprovalStatusCancelled, trigger: TriggerApprove, wantErr: true},
		{name: "expired is terminal", status: entity.ApprovalStatusExpired, trigger: TriggerApprove, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ForApprovalRequest(tt.status)
			err := m.Fire(tt.trigger)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, m.State())
		})
	}
}

func TestForTransfer(t *testing.T) {
	tests := []struct {
		name    string
		status  entity.TransferStatus
		trigger Trigger
		want    State
		wantErr bool
	}{
		{name: "pending approve", status: entity.TransferStatusPending, trigger: TriggerApprove, want: State(entity.TransferStatusApproved)},
		{name: "pending reject", status: entity.TransferStatusPending, trigger: TriggerReject, want: State(entity.TransferStatusRejected)},
		{name: "pending cancel", status: entity.TransferStatusPending, trigger: TriggerCancel, want: State(entity.TransferStatusCancelled)},
		{name: "pending cannot ship", status: entity.TransferStatusPending, trigger: TriggerShip, wantErr: true},
		{name: "pending cannot complete", status: entity.TransferStatusPending, trigger: TriggerComplete, wantErr: true},
		{name: "approved ship", status: entity.TransferStatusApproved, trigger: TriggerShip, want: State(entity.TransferStatusInTransit)},
		{name: "approved cancel", status: entity.TransferStatusApproved, trigger: TriggerCancel, want: State(entity.TransferStatusCancelled)},
		{name: "approved cannot approve again", status: entity.TransferStatusApproved, trigger: TriggerApprove, wantErr: true},
		{name: "in transit complete", status: entity.TransferStatusInTransit, trigger: TriggerComplete, want: State(entity.TransferStatusCompleted)},
		{name: "in transit cannot cancel", status: entity.TransferStatusInTransit, trigger: TriggerCancel, wantErr: true},
		{name: "rejected is terminal", status: entity.TransferStatusRejected, trigger: TriggerApprove, wantErr: true},
		{name: "completed is terminal", status: entity.TransferStatusCompleted, trigger: TriggerCancel, wantErr: true},
		{name: "cancelled is terminal", status: entity.TransferStatusCancelled, trigger: TriggerApprove, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ForTransfer(tt.status)
			err := m.Fire(tt.trigger)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, m.State())
		})
	}
}

func TestForSale(t *testing.T) {
	tests := []struct {
		name    string
		status  entity.SaleStatus
		trigger Trigger
		want    State
		wantErr bool
	}{
		{name: "pending complete", status: entity.SaleStatusPending, trigger: TriggerComplete, want: State(entity.SaleStatusCompleted)},
		{name: "pending cancel", status: entity.SaleStatusPending, trigger: TriggerCancel, want: State(entity.SaleStatusCancelled)},
		{name: "completed is terminal", status: entity.SaleStatusCompleted, trigger: TriggerCancel, wantErr: true},
		{name: "cancelled is terminal", status: entity.SaleStatusCancelled, trigger: TriggerComplete, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ForSale(tt.status)
			err := m.Fire(tt.trigger)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, m.State())
		})
	}
}
