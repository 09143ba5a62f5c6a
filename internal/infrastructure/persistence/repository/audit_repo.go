package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// AuditLogRepository implements port.AuditLogRepository
type AuditLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sql.DB, logger *zap.Logger) port.AuditLogRepository {
	return &AuditLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, tenant_id, store_id, actor_id, action,
			object_table, object_id, data, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var storeID sql.NullString
	if log.StoreID != nil {
		storeID = sql.NullString{String: *log.StoreID, Valid: true}
	}

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		log.ID, log.TenantID, storeID, log.ActorID, log.Action,
		log.ObjectTable, log.ObjectID, log.Data, log.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create audit log",
			zap.String("object_table", log.ObjectTable),
			zap.String("object_id", log.ObjectID),
			zap.Error(err))
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *AuditLogRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.AuditLog, error) {
	query := `
		SELECT id, tenant_id, store_id, actor_id, action,
			object_table, object_id, data, created_at
		FROM audit_logs
		WHERE tenant_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list audit logs", zap.Error(err))
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*entity.AuditLog
	for rows.Next() {
		var log entity.AuditLog
		var storeID, data sql.NullString
		if err := rows.Scan(
			&log.ID, &log.TenantID, &storeID, &log.ActorID, &log.Action,
			&log.ObjectTable, &log.ObjectID, &data, &log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if storeID.Valid {
			log.StoreID = &storeID.String
		}
		log.Data = data.String
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}

// Verify interface compliance
var _ port.AuditLogRepository = (*AuditLogRepository)(nil)
