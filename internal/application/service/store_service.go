package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// StoreService manages a tenant's stores.
type StoreService interface {
	Create(ctx context.Context, actorID string, store *entity.Store) (*entity.Store, error)
	Update(ctx context.Context, actorID string, store *entity.Store) (*entity.Store, error)
	Get(ctx context.Context, tenantID, id string) (*entity.Store, error)
	List(ctx context.Context, tenantID string) ([]*entity.Store, error)
}

type storeServiceImpl struct {
	stores    port.StoreRepository
	txManager port.TransactionManager
	audit     AuditService
	logger    Logger
}

// NewStoreService creates a new StoreService.
func NewStoreService(stores port.StoreRepository, txManager port.TransactionManager, audit AuditService, logger Logger) StoreService {
	return &storeServiceImpl{stores: stores, txManager: txManager, audit: audit, logger: logger}
}

func (s *storeServiceImpl) Create(ctx context.Context, actorID string, store *entity.Store) (*entity.Store, error) {
	if store.Code == "" || store.Name == "" {
		return nil, fmt.Errorf("%w: store code and name are required", entity.ErrValidation)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.stores.GetByCode(txCtx, store.TenantID, store.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: store code %s", entity.ErrDuplicate, store.Code)
		}

		now := time.Now()
		store.ID = uuid.NewString()
		store.IsActive = true
		store.CreatedAt = now
		store.UpdatedAt = now
		if err := s.stores.Create(txCtx, store); err != nil {
			return err
		}

		s.audit.Record(txCtx, store.TenantID, &store.ID, actorID, entity.AuditActionInsert, "stores", store.ID, store)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (s *storeServiceImpl) Update(ctx context.Context, actorID string, store *entity.Store) (*entity.Store, error) {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.stores.GetByID(txCtx, store.TenantID, store.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return entity.ErrNotFound
		}

		// Code is immutable once assigned; it anchors external references.
		store.Code = existing.Code
		store.CreatedAt = existing.CreatedAt
		store.UpdatedAt = time.Now()
		if err := s.stores.Update(txCtx, store); err != nil {
			return err
		}

		s.audit.Record(txCtx, store.TenantID, &store.ID, actorID, entity.AuditActionUpdate, "stores", store.ID, store)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (s *storeServiceImpl) Get(ctx context.Context, tenantID, id string) (*entity.Store, error) {
	store, err := s.stores.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, entity.ErrNotFound
	}
	return store, nil
}

func (s *storeServiceImpl) List(ctx context.Context, tenantID string) ([]*entity.Store, error) {
	return s.stores.List(ctx, tenantID)
}
