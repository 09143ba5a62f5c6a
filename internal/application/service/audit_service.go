package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// Logger is the minimal logging dependency shared by the services in this
// package.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// AuditService records state-mutating operations. Recording is
// fire-and-forget: a failed audit write is logged and never propagated, so
// it cannot undo the business change it describes.
type AuditService interface {
	Record(ctx context.Context, tenantID string, storeID *string, actorID, action, objectTable, objectID string, data interface{})
	List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.AuditLog, error)
}

type auditServiceImpl struct {
	repo   port.AuditLogRepository
	logger Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo port.AuditLogRepository, logger Logger) AuditService {
	return &auditServiceImpl{repo: repo, logger: logger}
}

func (s *auditServiceImpl) Record(ctx context.Context, tenantID string, storeID *string, actorID, action, objectTable, objectID string, data interface{}) {
	payload := ""
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}

	log := &entity.AuditLog{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		StoreID:     storeID,
		ActorID:     actorID,
		Action:      action,
		ObjectTable: objectTable,
		ObjectID:    objectID,
		Data:        payload,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Error("failed to write audit log",
			"error", err,
			"tenant_id", tenantID,
			"object_table", objectTable,
			"object_id", objectID,
		)
	}
}

func (s *auditServiceImpl) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, tenantID, limit, offset)
}
