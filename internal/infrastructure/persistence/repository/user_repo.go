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

// UserRepository implements port.UserRepository
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *UserRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.User, error) {
	query := `
		SELECT id, tenant_id, store_id, name, email, roles, is_active,
			created_at, updated_at
		FROM users
		WHERE tenant_id = ? AND id = ?
	`

	var user entity.User
	var storeID sql.NullString
	var roles string

	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, tenantID, id).Scan(
		&user.ID, &user.TenantID, &storeID, &user.Name, &user.Email,
		&roles, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if storeID.Valid {
		user.StoreID = &storeID.String
	}
	if roles != "" {
		if err := json.Unmarshal([]byte(roles), &user.Roles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user roles: %w", err)
		}
	}
	return &user, nil
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
