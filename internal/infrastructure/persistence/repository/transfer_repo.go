package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// TransferRepository implements port.TransferRepository
type TransferRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *sql.DB, logger *zap.Logger) port.TransferRepository {
	return &TransferRepository{
		db:     db,
		logger: logger,
	}
}

const transferColumns = `
	id, tenant_id, transfer_number, source_store_id, destination_store_id,
	product_id, quantity, unit_cost, status, requested_by, approved_by, notes,
	approved_at, shipped_at, received_at, cancelled_at, created_at, updated_at
`

func (r *TransferRepository) Create(ctx context.Context, transfer *entity.InventoryTransfer) error {
	query := `
		INSERT INTO inventory_transfers (` + transferColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var approvedBy sql.NullString
	if transfer.ApprovedBy != nil {
		approvedBy = sql.NullString{String: *transfer.ApprovedBy, Valid: true}
	}

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		transfer.ID, transfer.TenantID, transfer.TransferNumber,
		transfer.SourceStoreID, transfer.DestinationStoreID,
		transfer.ProductID, transfer.Quantity.String(), transfer.UnitCost.String(),
		string(transfer.Status), transfer.RequestedBy, approvedBy, transfer.Notes,
		nullTime(transfer.ApprovedAt), nullTime(transfer.ShippedAt),
		nullTime(transfer.ReceivedAt), nullTime(transfer.CancelledAt),
		transfer.CreatedAt, transfer.UpdatedAt,
	)
	if err != nil {
		err = translateError(err)
		r.logger.Error("Failed to create inventory transfer",
			zap.String("transfer_number", transfer.TransferNumber),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *TransferRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM inventory_transfers WHERE tenant_id = ? AND id = ?`

	transfer, err := r.scanTransfer(getExecutor(ctx, r.db).QueryRowContext(ctx, query, tenantID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get inventory transfer", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get inventory transfer: %w", err)
	}
	return transfer, nil
}

func (r *TransferRepository) List(ctx context.Context, tenantID string, status entity.TransferStatus, limit, offset int) ([]*entity.InventoryTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM inventory_transfers WHERE tenant_id = ?`
	args := []interface{}{tenantID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list inventory transfers", zap.Error(err))
		return nil, fmt.Errorf("failed to list inventory transfers: %w", err)
	}
	defer rows.Close()

	var transfers []*entity.InventoryTransfer
	for rows.Next() {
		transfer, err := r.scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}
	return transfers, rows.Err()
}

func (r *TransferRepository) CountCreatedSince(ctx context.Context, tenantID string, since time.Time) (int64, error) {
	var count int64
	err := getExecutor(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM inventory_transfers WHERE tenant_id = ? AND created_at >= ?",
		tenantID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count inventory transfers: %w", err)
	}
	return count, nil
}

// UpdateStatus moves the row only when it still holds the expected status;
// a lost race surfaces as entity.ErrInvalidState.
func (r *TransferRepository) UpdateStatus(ctx context.Context, tenantID, id string, from, to entity.TransferStatus, patch port.TransferPatch) error {
	sets := []string{"status = ?", "updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{string(to)}

	if patch.ApprovedBy != nil {
		sets = append(sets, "approved_by = ?")
		args = append(args, *patch.ApprovedBy)
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}
	if patch.ApprovedAt != nil {
		sets = append(sets, "approved_at = ?")
		args = append(args, *patch.ApprovedAt)
	}
	if patch.ShippedAt != nil {
		sets = append(sets, "shipped_at = ?")
		args = append(args, *patch.ShippedAt)
	}
	if patch.ReceivedAt != nil {
		sets = append(sets, "received_at = ?")
		args = append(args, *patch.ReceivedAt)
	}
	if patch.CancelledAt != nil {
		sets = append(sets, "cancelled_at = ?")
		args = append(args, *patch.CancelledAt)
	}

	query := "UPDATE inventory_transfers SET " + strings.Join(sets, ", ") +
		" WHERE tenant_id = ? AND id = ? AND status = ?"
	args = append(args, tenantID, id, string(from))

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update transfer status",
			zap.String("id", id),
			zap.String("to", string(to)),
			zap.Error(err))
		return fmt.Errorf("failed to update transfer status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transfer %s is no longer %s", entity.ErrInvalidState, id, from)
	}
	return nil
}

func (r *TransferRepository) scanTransfer(row rowScanner) (*entity.InventoryTransfer, error) {
	var transfer entity.InventoryTransfer
	var quantity, unitCost string
	var approvedBy sql.NullString
	var notes sql.NullString
	var approvedAt, shippedAt, receivedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&transfer.ID, &transfer.TenantID, &transfer.TransferNumber,
		&transfer.SourceStoreID, &transfer.DestinationStoreID,
		&transfer.ProductID, &quantity, &unitCost,
		&transfer.Status, &transfer.RequestedBy, &approvedBy, &notes,
		&approvedAt, &shippedAt, &receivedAt, &cancelledAt,
		&transfer.CreatedAt, &transfer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if transfer.Quantity, err = parseDecimal(quantity); err != nil {
		return nil, err
	}
	if transfer.UnitCost, err = parseDecimal(unitCost); err != nil {
		return nil, err
	}
	if approvedBy.Valid {
		transfer.ApprovedBy = &approvedBy.String
	}
	transfer.Notes = notes.String
	if approvedAt.Valid {
		transfer.ApprovedAt = &approvedAt.Time
	}
	if shippedAt.Valid {
		transfer.ShippedAt = &shippedAt.Time
	}
	if receivedAt.Valid {
		transfer.ReceivedAt = &receivedAt.Time
	}
	if cancelledAt.Valid {
		transfer.CancelledAt = &cancelledAt.Time
	}
	return &transfer, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Verify interface compliance
var _ port.TransferRepository = (*TransferRepository)(nil)
