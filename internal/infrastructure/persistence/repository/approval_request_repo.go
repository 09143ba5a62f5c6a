package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// ApprovalRequestRepository implements port.ApprovalRequestRepository
type ApprovalRequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalRequestRepository creates a new approval request repository
func NewApprovalRequestRepository(db *sql.DB, logger *zap.Logger) port.ApprovalRequestRepository {
	return &ApprovalRequestRepository{
		db:     db,
		logger: logger,
	}
}

const approvalRequestColumns = `
	id, tenant_id, store_id, requester_id, object_type, object_id,
	status, current_level, total_levels, required_approvals,
	approved_count, rejected_count, levels,
	expires_at, approved_at, rejected_at, cancelled_at, expired_at, cancel_reason,
	created_at, updated_at
`

func (r *ApprovalRequestRepository) Create(ctx context.Context, req *entity.ApprovalRequest) error {
	levels, err := json.Marshal(req.Levels)
	if err != nil {
		return fmt.Errorf("failed to marshal approval levels: %w", err)
	}

	query := `
		INSERT INTO approval_requests (` + approvalRequestColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var storeID sql.NullString
	if req.StoreID != nil {
		storeID = sql.NullString{String: *req.StoreID, Valid: true}
	}

	_, err = getExecutor(ctx, r.db).ExecContext(ctx, query,
		req.ID, req.TenantID, storeID, req.RequesterID,
		string(req.ObjectType), req.ObjectID,
		string(req.Status), req.CurrentLevel, req.TotalLevels, req.RequiredApprovals,
		req.ApprovedCount, req.RejectedCount, string(levels),
		nullTime(req.ExpiresAt), nullTime(req.ApprovedAt),
		nullTime(req.RejectedAt), nullTime(req.CancelledAt), nullTime(req.ExpiredAt), req.CancelReason,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		err = translateError(err)
		r.logger.Error("Failed to create approval request",
			zap.String("object_type", string(req.ObjectType)),
			zap.String("object_id", req.ObjectID),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *ApprovalRequestRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
	query := `SELECT ` + approvalRequestColumns + ` FROM approval_requests WHERE tenant_id = ? AND id = ?`

	req, err := r.scanRequest(getExecutor(ctx, r.db).QueryRowContext(ctx, query, tenantID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get approval request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval request: %w", err)
	}
	return req, nil
}

func (r *ApprovalRequestRepository) GetByObject(ctx context.Context, tenantID string, objectType entity.ObjectType, objectID string) (*entity.ApprovalRequest, error) {
	query := `
		SELECT ` + approvalRequestColumns + `
		FROM approval_requests
		WHERE tenant_id = ? AND object_type = ? AND object_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	req, err := r.scanRequest(getExecutor(ctx, r.db).QueryRowContext(ctx, query, tenantID, string(objectType), objectID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get approval request by object",
			zap.String("object_id", objectID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get approval request by object: %w", err)
	}
	return req, nil
}

func (r *ApprovalRequestRepository) ListPending(ctx context.Context, tenantID string) ([]*entity.ApprovalRequest, error) {
	query := `
		SELECT ` + approvalRequestColumns + `
		FROM approval_requests
		WHERE tenant_id = ? AND status = ?
		ORDER BY created_at ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, tenantID, string(entity.ApprovalStatusPending))
	if err != nil {
		r.logger.Error("Failed to list pending approval requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list pending approval requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.ApprovalRequest
	for rows.Next() {
		req, err := r.scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *ApprovalRequestRepository) AppendDecision(ctx context.Context, decision *entity.ApprovalDecision) error {
	query := `
		INSERT INTO approval_decisions (
			id, request_id, level, approver_id, approver_role,
			decision, comments, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		decision.ID, decision.RequestID, decision.Level,
		decision.ApproverID, decision.ApproverRole,
		decision.Decision, decision.Comments, decision.CreatedAt,
	)
	if err != nil {
		err = translateError(err)
		r.logger.Error("Failed to append approval decision",
			zap.String("request_id", decision.RequestID),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *ApprovalRequestRepository) ListDecisions(ctx context.Context, requestID string) ([]*entity.ApprovalDecision, error) {
	query := `
		SELECT id, request_id, level, approver_id, approver_role,
			decision, comments, created_at
		FROM approval_decisions
		WHERE request_id = ?
		ORDER BY created_at ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to list approval decisions", zap.Error(err))
		return nil, fmt.Errorf("failed to list approval decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*entity.ApprovalDecision
	for rows.Next() {
		var d entity.ApprovalDecision
		var comments sql.NullString
		if err := rows.Scan(
			&d.ID, &d.RequestID, &d.Level, &d.ApproverID, &d.ApproverRole,
			&d.Decision, &comments, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval decision: %w", err)
		}
		d.Comments = comments.String
		decisions = append(decisions, &d)
	}
	return decisions, rows.Err()
}

func (r *ApprovalRequestRepository) UpdateProgress(ctx context.Context, id string, currentLevel, requiredApprovals, approvedCount, rejectedCount int) error {
	query := `
		UPDATE approval_requests
		SET current_level = ?, required_approvals = ?,
			approved_count = ?, rejected_count = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		currentLevel, requiredApprovals, approvedCount, rejectedCount,
		id, string(entity.ApprovalStatusPending),
	)
	if err != nil {
		r.logger.Error("Failed to update approval progress", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update approval progress: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: approval request %s is no longer pending", entity.ErrInvalidState, id)
	}
	return nil
}

// MarkDecided stamps the matching terminal timestamp column for the status
// it moves the request to.
func (r *ApprovalRequestRepository) MarkDecided(ctx context.Context, id string, status entity.ApprovalStatus, decidedAt time.Time, cancelReason string) error {
	var tsColumn string
	switch status {
	case entity.ApprovalStatusApproved:
		tsColumn = "approved_at"
	case entity.ApprovalStatusRejected:
		tsColumn = "rejected_at"
	case entity.ApprovalStatusCancelled:
		tsColumn = "cancelled_at"
	case entity.ApprovalStatusExpired:
		tsColumn = "expired_at"
	default:
		return fmt.Errorf("%w: %s is not a terminal approval status", entity.ErrValidation, status)
	}

	query := fmt.Sprintf(`
		UPDATE approval_requests
		SET status = ?, %s = ?, cancel_reason = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, tsColumn)

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		string(status), decidedAt, cancelReason,
		id, string(entity.ApprovalStatusPending),
	)
	if err != nil {
		r.logger.Error("Failed to mark approval request decided",
			zap.String("id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return fmt.Errorf("failed to mark approval request decided: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: approval request %s is no longer pending", entity.ErrInvalidState, id)
	}
	return nil
}

func (r *ApprovalRequestRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE approval_requests
		SET status = ?, expired_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE status = ? AND expires_at IS NOT NULL AND expires_at <= ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		string(entity.ApprovalStatusExpired), now,
		string(entity.ApprovalStatusPending), now,
	)
	if err != nil {
		r.logger.Error("Failed to expire pending approval requests", zap.Error(err))
		return 0, fmt.Errorf("failed to expire pending approval requests: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

func (r *ApprovalRequestRepository) scanRequest(row rowScanner) (*entity.ApprovalRequest, error) {
	var req entity.ApprovalRequest
	var storeID, cancelReason sql.NullString
	var levels string
	var expiresAt, approvedAt, rejectedAt, cancelledAt, expiredAt sql.NullTime

	err := row.Scan(
		&req.ID, &req.TenantID, &storeID, &req.RequesterID,
		&req.ObjectType, &req.ObjectID,
		&req.Status, &req.CurrentLevel, &req.TotalLevels, &req.RequiredApprovals,
		&req.ApprovedCount, &req.RejectedCount, &levels,
		&expiresAt, &approvedAt, &rejectedAt, &cancelledAt, &expiredAt, &cancelReason,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if levels != "" {
		if err := json.Unmarshal([]byte(levels), &req.Levels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal approval levels: %w", err)
		}
	}
	if storeID.Valid {
		req.StoreID = &storeID.String
	}
	req.CancelReason = cancelReason.String
	if expiresAt.Valid {
		req.ExpiresAt = &expiresAt.Time
	}
	if approvedAt.Valid {
		req.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		req.RejectedAt = &rejectedAt.Time
	}
	if cancelledAt.Valid {
		req.CancelledAt = &cancelledAt.Time
	}
	if expiredAt.Valid {
		req.ExpiredAt = &expiredAt.Time
	}
	return &req, nil
}

// Verify interface compliance
var _ port.ApprovalRequestRepository = (*ApprovalRequestRepository)(nil)
