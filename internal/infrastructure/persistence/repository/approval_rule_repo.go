package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// ApprovalRuleRepository implements port.ApprovalRuleRepository
type ApprovalRuleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalRuleRepository creates a new approval rule repository
func NewApprovalRuleRepository(db *sql.DB, logger *zap.Logger) port.ApprovalRuleRepository {
	return &ApprovalRuleRepository{
		db:     db,
		logger: logger,
	}
}

const approvalRuleColumns = `
	id, tenant_id, object_type, name, conditions, is_active, created_at, updated_at
`

func (r *ApprovalRuleRepository) Create(ctx context.Context, rule *entity.ApprovalRule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal rule conditions: %w", err)
	}

	query := `
		INSERT INTO approval_rules (` + approvalRuleColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = getExecutor(ctx, r.db).ExecContext(ctx, query,
		rule.ID, rule.TenantID, string(rule.ObjectType), rule.Name,
		string(conditions), rule.IsActive, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		err = translateError(err)
		r.logger.Error("Failed to create approval rule",
			zap.String("name", rule.Name),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *ApprovalRuleRepository) Update(ctx context.Context, rule *entity.ApprovalRule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal rule conditions: %w", err)
	}

	query := `
		UPDATE approval_rules
		SET name = ?, conditions = ?, is_active = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		rule.Name, string(conditions), rule.IsActive, rule.UpdatedAt,
		rule.TenantID, rule.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update approval rule", zap.String("id", rule.ID), zap.Error(err))
		return fmt.Errorf("failed to update approval rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *ApprovalRuleRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.ApprovalRule, error) {
	query := `SELECT ` + approvalRuleColumns + ` FROM approval_rules WHERE tenant_id = ? AND id = ?`

	rule, err := r.scanRule(getExecutor(ctx, r.db).QueryRowContext(ctx, query, tenantID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get approval rule", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval rule: %w", err)
	}
	return rule, nil
}

func (r *ApprovalRuleRepository) List(ctx context.Context, tenantID string) ([]*entity.ApprovalRule, error) {
	query := `SELECT ` + approvalRuleColumns + ` FROM approval_rules WHERE tenant_id = ? ORDER BY created_at DESC`
	return r.queryRules(ctx, query, tenantID)
}

// ListActive returns active rules newest first; the matcher takes the first
// hit, so creation order is the precedence order.
func (r *ApprovalRuleRepository) ListActive(ctx context.Context, tenantID string, objectType entity.ObjectType) ([]*entity.ApprovalRule, error) {
	query := `
		SELECT ` + approvalRuleColumns + `
		FROM approval_rules
		WHERE tenant_id = ? AND object_type = ? AND is_active = 1
		ORDER BY created_at DESC
	`
	return r.queryRules(ctx, query, tenantID, string(objectType))
}

func (r *ApprovalRuleRepository) SetActive(ctx context.Context, tenantID, id string, active bool) error {
	query := `
		UPDATE approval_rules
		SET is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE tenant_id = ? AND id = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, active, tenantID, id)
	if err != nil {
		r.logger.Error("Failed to toggle approval rule", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to toggle approval rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *ApprovalRuleRepository) queryRules(ctx context.Context, query string, args ...interface{}) ([]*entity.ApprovalRule, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list approval rules", zap.Error(err))
		return nil, fmt.Errorf("failed to list approval rules: %w", err)
	}
	defer rows.Close()

	var rules []*entity.ApprovalRule
	for rows.Next() {
		rule, err := r.scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *ApprovalRuleRepository) scanRule(row rowScanner) (*entity.ApprovalRule, error) {
	var rule entity.ApprovalRule
	var conditions string

	err := row.Scan(
		&rule.ID, &rule.TenantID, &rule.ObjectType, &rule.Name,
		&conditions, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if conditions != "" {
		if err := json.Unmarshal([]byte(conditions), &rule.Conditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rule conditions: %w", err)
		}
	}
	return &rule, nil
}

// Verify interface compliance
var _ port.ApprovalRuleRepository = (*ApprovalRuleRepository)(nil)
