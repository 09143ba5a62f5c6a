package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// Hand-rolled mocks shared by the tests in this package. Every method
// delegates to an optional func field and falls back to a benign default so
// each test only wires the calls it cares about.

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockAuditService struct {
	recordFunc func(ctx context.Context, tenantID string, storeID *string, actorID, action, objectTable, objectID string, data interface{})
}

func (m *mockAuditService) Record(ctx context.Context, tenantID string, storeID *string, actorID, action, objectTable, objectID string, data interface{}) {
	if m.recordFunc != nil {
		m.recordFunc(ctx, tenantID, storeID, actorID, action, objectTable, objectID, data)
	}
}

func (m *mockAuditService) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.AuditLog, error) {
	return nil, nil
}

type mockInventoryRepo struct {
	getFunc          func(ctx context.Context, tenantID, storeID, productID string) (*entity.InventoryRecord, error)
	listFunc         func(ctx context.Context, tenantID, storeID string) ([]*entity.InventoryRecord, error)
	createFunc       func(ctx context.Context, rec *entity.InventoryRecord) error
	updateFunc       func(ctx context.Context, rec *entity.InventoryRecord) error
	reserveFunc      func(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error
	releaseFunc      func(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error
	adjustOnHandFunc func(ctx context.Context, tenantID, storeID, productID string, delta decimal.Decimal) error
	addStockFunc     func(ctx context.Context, tenantID, storeID, productID string, qty, unitCost decimal.Decimal) error
}

func (m *mockInventoryRepo) Get(ctx context.Context, tenantID, storeID, productID string) (*entity.InventoryRecord, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, tenantID, storeID, productID)
	}
	return nil, nil
}

func (m *mockInventoryRepo) List(ctx context.Context, tenantID, storeID string) ([]*entity.InventoryRecord, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, tenantID, storeID)
	}
	return nil, nil
}

func (m *mockInventoryRepo) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rec)
	}
	return nil
}

func (m *mockInventoryRepo) Update(ctx context.Context, rec *entity.InventoryRecord) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, rec)
	}
	return nil
}

func (m *mockInventoryRepo) Reserve(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, tenantID, storeID, productID, qty)
	}
	return nil
}

func (m *mockInventoryRepo) Release(ctx context.Context, tenantID, storeID, productID string, qty decimal.Decimal) error {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, tenantID, storeID, productID, qty)
	}
	return nil
}

func (m *mockInventoryRepo) AdjustOnHand(ctx context.Context, tenantID, storeID, productID string, delta decimal.Decimal) error {
	if m.adjustOnHandFunc != nil {
		return m.adjustOnHandFunc(ctx, tenantID, storeID, productID, delta)
	}
	return nil
}

func (m *mockInventoryRepo) AddStock(ctx context.Context, tenantID, storeID, productID string, qty, unitCost decimal.Decimal) error {
	if m.addStockFunc != nil {
		return m.addStockFunc(ctx, tenantID, storeID, productID, qty, unitCost)
	}
	return nil
}

type mockTransferRepo struct {
	createFunc            func(ctx context.Context, transfer *entity.InventoryTransfer) error
	getByIDFunc           func(ctx context.Context, tenantID, id string) (*entity.InventoryTransfer, error)
	listFunc              func(ctx context.Context, tenantID string, status entity.TransferStatus, limit, offset int) ([]*entity.InventoryTransfer, error)
	countCreatedSinceFunc func(ctx context.Context, tenantID string, since time.Time) (int64, error)
	updateStatusFunc      func(ctx context.Context, tenantID, id string, from, to entity.TransferStatus, patch port.TransferPatch) error
}

func (m *mockTransferRepo) Create(ctx context.Context, transfer *entity.InventoryTransfer) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, transfer)
	}
	return nil
}

func (m *mockTransferRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.InventoryTransfer, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, tenantID, id)
	}
	return nil, nil
}

func (m *mockTransferRepo) List(ctx context.Context, tenantID string, status entity.TransferStatus, limit, offset int) ([]*entity.InventoryTransfer, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, tenantID, status, limit, offset)
	}
	return nil, nil
}

func (m *mockTransferRepo) CountCreatedSince(ctx context.Context, tenantID string, since time.Time) (int64, error) {
	if m.countCreatedSinceFunc != nil {
		return m.countCreatedSinceFunc(ctx, tenantID, since)
	}
	return 0, nil
}

func (m *mockTransferRepo) UpdateStatus(ctx context.Context, tenantID, id string, from, to entity.TransferStatus, patch port.TransferPatch) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, tenantID, id, from, to, patch)
	}
	return nil
}

type mockRuleRepo struct {
	createFunc     func(ctx context.Context, rule *entity.ApprovalRule) error
	updateFunc     func(ctx context.Context, rule *entity.ApprovalRule) error
	getByIDFunc    func(ctx context.Context, tenantID, id string) (*entity.ApprovalRule, error)
	listFunc       func(ctx context.Context, tenantID string) ([]*entity.ApprovalRule, error)
	listActiveFunc func(ctx context.Context, tenantID string, objectType entity.ObjectType) ([]*entity.ApprovalRule, error)
	setActiveFunc  func(ctx context.Context, tenantID, id string, active bool) error
}

func (m *mockRuleRepo) Create(ctx context.Context, rule *entity.ApprovalRule) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepo) Update(ctx context.Context, rule *entity.ApprovalRule) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.ApprovalRule, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, tenantID, id)
	}
	return nil, nil
}

func (m *mockRuleRepo) List(ctx context.Context, tenantID string) ([]*entity.ApprovalRule, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, tenantID)
	}
	return nil, nil
}

func (m *mockRuleRepo) ListActive(ctx context.Context, tenantID string, objectType entity.ObjectType) ([]*entity.ApprovalRule, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx, tenantID, objectType)
	}
	return nil, nil
}

func (m *mockRuleRepo) SetActive(ctx context.Context, tenantID, id string, active bool) error {
	if m.setActiveFunc != nil {
		return m.setActiveFunc(ctx, tenantID, id, active)
	}
	return nil
}

type mockRequestRepo struct {
	createFunc         func(ctx context.Context, req *entity.ApprovalRequest) error
	getByIDFunc        func(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error)
	getByObjectFunc    func(ctx context.Context, tenantID string, objectType entity.ObjectType, objectID string) (*entity.ApprovalRequest, error)
	listPendingFunc    func(ctx context.Context, tenantID string) ([]*entity.ApprovalRequest, error)
	appendDecisionFunc func(ctx context.Context, decision *entity.ApprovalDecision) error
	listDecisionsFunc  func(ctx context.Context, requestID string) ([]*entity.ApprovalDecision, error)
	updateProgressFunc func(ctx context.Context, id string, currentLevel, requiredApprovals, approvedCount, rejectedCount int) error
	markDecidedFunc    func(ctx context.Context, id string, status entity.ApprovalStatus, decidedAt time.Time, cancelReason string) error
	expirePendingFunc  func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockRequestRepo) Create(ctx context.Context, req *entity.ApprovalRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.ApprovalRequest, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, tenantID, id)
	}
	return nil, nil
}

func (m *mockRequestRepo) GetByObject(ctx context.Context, tenantID string, objectType entity.ObjectType, objectID string) (*entity.ApprovalRequest, error) {
	if m.getByObjectFunc != nil {
		return m.getByObjectFunc(ctx, tenantID, objectType, objectID)
	}
	return nil, nil
}

func (m *mockRequestRepo) ListPending(ctx context.Context, tenantID string) ([]*entity.ApprovalRequest, error) {
	if m.listPendingFunc != nil {
		return m.listPendingFunc(ctx, tenantID)
	}
	return nil, nil
}

func (m *mockRequestRepo) AppendDecision(ctx context.Context, decision *entity.ApprovalDecision) error {
	if m.appendDecisionFunc != nil {
		return m.appendDecisionFunc(ctx, decision)
	}
	return nil
}

func (m *mockRequestRepo) ListDecisions(ctx context.Context, requestID string) ([]*entity.ApprovalDecision, error) {
	if m.listDecisionsFunc != nil {
		return m.listDecisionsFunc(ctx, requestID)
	}
	return nil, nil
}

func (m *mockRequestRepo) UpdateProgress(ctx context.Context, id string, currentLevel, requiredApprovals, approvedCount, rejectedCount int) error {
	if m.updateProgressFunc != nil {
		return m.updateProgressFunc(ctx, id, currentLevel, requiredApprovals, approvedCount, rejectedCount)
	}
	return nil
}

func (m *mockRequestRepo) MarkDecided(ctx context.Context, id string, status entity.ApprovalStatus, decidedAt time.Time, cancelReason string) error {
	if m.markDecidedFunc != nil {
		return m.markDecidedFunc(ctx, id, status, decidedAt, cancelReason)
	}
	return nil
}

func (m *mockRequestRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	if m.expirePendingFunc != nil {
		return m.expirePendingFunc(ctx, now)
	}
	return 0, nil
}

type mockStoreRepo struct {
	createFunc    func(ctx context.Context, store *entity.Store) error
	updateFunc    func(ctx context.Context, store *entity.Store) error
	getByIDFunc   func(ctx context.Context, tenantID, id string) (*entity.Store, error)
	getByCodeFunc func(ctx context.Context, tenantID, code string) (*entity.Store, error)
	listFunc      func(ctx context.Context, tenantID string) ([]*entity.Store, error)
}

func (m *mockStoreRepo) Create(ctx context.Context, store *entity.Store) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, store)
	}
	return nil
}

func (m *mockStoreRepo) Update(ctx context.Context, store *entity.Store) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, store)
	}
	return nil
}

func (m *mockStoreRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Store, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, tenantID, id)
	}
	return &entity.Store{ID: id, TenantID: tenantID}, nil
}

func (m *mockStoreRepo) GetByCode(ctx context.Context, tenantID, code string) (*entity.Store, error) {
	if m.getByCodeFunc != nil {
		return m.getByCodeFunc(ctx, tenantID, code)
	}
	return nil, nil
}

func (m *mockStoreRepo) List(ctx context.Context, tenantID string) ([]*entity.Store, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, tenantID)
	}
	return nil, nil
}

type mockProductRepo struct {
	createFunc   func(ctx context.Context, product *entity.Product) error
	updateFunc   func(ctx context.Context, product *entity.Product) error
	getByIDFunc  func(ctx context.Context, tenantID, id string) (*entity.Product, error)
	getBySKUFunc func(ctx context.Context, tenantID, sku string) (*entity.Product, error)
	listFunc     func(ctx context.Context, tenantID string) ([]*entity.Product, error)
}

func (m *mockProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, product)
	}
	return nil
}

func (m *mockProductRepo) Update(ctx context.Context, product *entity.Product) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, product)
	}
	return nil
}

func (m *mockProductRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, tenantID, id)
	}
	return &entity.Product{ID: id, TenantID: tenantID}, nil
}

func (m *mockProductRepo) GetBySKU(ctx context.Context, tenantID, sku string) (*entity.Product, error) {
	if m.getBySKUFunc != nil {
		return m.getBySKUFunc(ctx, tenantID, sku)
	}
	return nil, nil
}

func (m *mockProductRepo) List(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, tenantID)
	}
	return nil, nil
}

type mockUserRepo struct {
	getByIDFunc func(ctx context.Context, tenantID, id string) (*entity.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, tenantID, id)
	}
	return nil, nil
}

type mockSaleRepo struct {
	createFunc            func(ctx context.Context, sale *entity.Sale) error
	getByIDFunc           func(ctx context.Context, tenantID, id string) (*entity.Sale, error)
	countCreatedSinceFunc func(ctx context.Context, tenantID string, since time.Time) (int64, error)
	updateStatusFunc      func(ctx context.Context, tenantID, id string, from, to entity.SaleStatus, at time.Time) error
}

func (m *mockSaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, sale)
	}
	return nil
}

func (m *mockSaleRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, tenantID, id)
	}
	return nil, nil
}

func (m *mockSaleRepo) CountCreatedSince(ctx context.Context, tenantID string, since time.Time) (int64, error) {
	if m.countCreatedSinceFunc != nil {
		return m.countCreatedSinceFunc(ctx, tenantID, since)
	}
	return 0, nil
}

func (m *mockSaleRepo) UpdateStatus(ctx context.Context, tenantID, id string, from, to entity.SaleStatus, at time.Time) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, tenantID, id, from, to, at)
	}
	return nil
}

type mockNotifier struct {
	notifyPendingFunc func(ctx context.Context, req *entity.ApprovalRequest) error
	notifyDecidedFunc func(ctx context.Context, req *entity.ApprovalRequest) error
}

func (m *mockNotifier) NotifyPending(ctx context.Context, req *entity.ApprovalRequest) error {
	if m.notifyPendingFunc != nil {
		return m.notifyPendingFunc(ctx, req)
	}
	return nil
}

func (m *mockNotifier) NotifyDecided(ctx context.Context, req *entity.ApprovalRequest) error {
	if m.notifyDecidedFunc != nil {
		return m.notifyDecidedFunc(ctx, req)
	}
	return nil
}

type mockDispatcher struct {
	dispatchFunc func(ctx context.Context, req *entity.ApprovalRequest, decision entity.ApprovalStatus, approverID, comments string) error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, req *entity.ApprovalRequest, decision entity.ApprovalStatus, approverID, comments string) error {
	if m.dispatchFunc != nil {
		return m.dispatchFunc(ctx, req, decision, approverID, comments)
	}
	return nil
}

// mockRuleService stands in for ApprovalRuleService where only the matcher
// outcome matters.
type mockRuleService struct {
	findApplicableRuleFunc func(ctx context.Context, tenantID string, objectType entity.ObjectType, data entity.ApprovalData, storeID *string) (*entity.ApprovalRule, error)
}

func (m *mockRuleService) Create(ctx context.Context, actorID string, rule *entity.ApprovalRule) (*entity.ApprovalRule, error) {
	return rule, nil
}

func (m *mockRuleService) Update(ctx context.Context, actorID string, rule *entity.ApprovalRule) (*entity.ApprovalRule, error) {
	return rule, nil
}

func (m *mockRuleService) SetActive(ctx context.Context, actorID, tenantID, id string, active bool) error {
	return nil
}

func (m *mockRuleService) Get(ctx context.Context, tenantID, id string) (*entity.ApprovalRule, error) {
	return nil, nil
}

func (m *mockRuleService) List(ctx context.Context, tenantID string) ([]*entity.ApprovalRule, error) {
	return nil, nil
}

func (m *mockRuleService) FindApplicableRule(ctx context.Context, tenantID string, objectType entity.ObjectType, data entity.ApprovalData, storeID *string) (*entity.ApprovalRule, error) {
	if m.findApplicableRuleFunc != nil {
		return m.findApplicableRuleFunc(ctx, tenantID, objectType, data, storeID)
	}
	return nil, nil
}

// mockApprovalService stands in for ApprovalService in transfer tests.
type mockApprovalService struct {
	createRequestFunc func(ctx context.Context, in CreateApprovalRequestInput) (*entity.ApprovalRequest, error)
}

func (m *mockApprovalService) CreateRequest(ctx context.Context, in CreateApprovalRequestInput) (*entity.ApprovalRequest, error) {
	if m.createRequestFunc != nil {
		return m.createRequestFunc(ctx, in)
	}
	return &entity.ApprovalRequest{ID: "req-1", TenantID: in.TenantID, ObjectType: in.ObjectType, ObjectID: in.ObjectID, Status: entity.ApprovalStatusPending}, nil
}

func (m *mockApprovalService) ProcessDecision(ctx context.Context, tenantID, requestID string, in DecisionInput) (*entity.ApprovalRequest, error) {
	return nil, nil
}

func (m *mockApprovalService) Cancel(ctx context.Context, tenantID, requestID, cancelledBy, reason string) (*entity.ApprovalRequest, error) {
	return nil, nil
}

func (m *mockApprovalService) Get(ctx context.Context, tenantID, requestID string) (*entity.ApprovalRequest, error) {
	return nil, nil
}

func (m *mockApprovalService) PendingForUser(ctx context.Context, tenantID, userID string) ([]*entity.ApprovalRequest, error) {
	return nil, nil
}

func (m *mockApprovalService) ExpireOverdue(ctx context.Context) (int64, error) {
	return 0, nil
}
