package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentpress/control-plane/models"
	"github.com/agentpress/control-plane/repositories"
	"github.com/agentpress/control-plane/services"
)

// RoleTemplateRepository implements the repositories.RoleTemplateRepository interface
type RoleTemplateRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRoleTemplateRepository creates a new role template repository
func NewRoleTemplateRepository(db *DB, logger *zap.Logger) repositories.RoleTemplateRepository {
	return &RoleTemplateRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new role template
func (r *RoleTemplateRepository) Create(ctx context.Context, template *models.RoleTemplate) error {
	permissions, err := json.Marshal(template.Permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}
	quotas, err := json.Marshal(template.QuotaLimits)
	if err != nil {
		return fmt.Errorf("failed to marshal quota limits: %w", err)
	}

	query := `
		INSERT INTO role_templates (id, name, description, permissions, quota_limits, is_system_role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Description,
		permissions,
		quotas,
		template.IsSystemRole,
		template.IsActive,
		template.CreatedAt,
		template.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create role template: %w", err)
	}

	r.logger.Debug("role template created", zap.String("id", template.ID.String()))
	return nil
}

// GetByID retrieves a role template by ID
func (r *RoleTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RoleTemplate, error) {
	query := `
		SELECT id, name, description, permissions, quota_limits, is_system_role, is_active, created_at, updated_at
		FROM role_templates
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	return scanRoleTemplate(executor.QueryRowContext(ctx, query, id))
}

// List retrieves all role templates with pagination
func (r *RoleTemplateRepository) List(ctx context.Context, limit, offset int) ([]*models.RoleTemplate, error) {
	query := `
		SELECT id, name, description, permissions, quota_limits, is_system_role, is_active, created_at, updated_at
		FROM role_templates
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list role templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.RoleTemplate
	for rows.Next() {
		tpl, err := scanRoleTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// Update updates a role template in place
func (r *RoleTemplateRepository) Update(ctx context.Context, template *models.RoleTemplate) error {
	permissions, err := json.Marshal(template.Permissions)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}
	quotas, err := json.Marshal(template.QuotaLimits)
	if err != nil {
		return fmt.Errorf("failed to marshal quota limits: %w", err)
	}

	query := `
		UPDATE role_templates
		SET name = $2, description = $3, permissions = $4, quota_limits = $5, is_system_role = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Description,
		permissions,
		quotas,
		template.IsSystemRole,
		template.IsActive,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update role template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return services.ErrRoleTemplateNotFound
	}

	r.logger.Debug("role template updated", zap.String("id", template.ID.String()))
	return nil
}

// SetActive flips the soft activation state
func (r *RoleTemplateRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE role_templates
		SET is_active = $2, updated_at = $3
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, active, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set role template active state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return services.ErrRoleTemplateNotFound
	}

	r.logger.Debug("role template active state set",
		zap.String("id", id.String()),
		zap.Bool("active", active))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *RoleTemplateRepository) WithTx(tx repositories.Transaction) repositories.RoleTemplateRepository {
	return r
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoleTemplate(row rowScanner) (*models.RoleTemplate, error) {
	var (
		tpl         models.RoleTemplate
		permissions []byte
		quotas      []byte
	)

	err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.Description,
		&permissions,
		&quotas,
		&tpl.IsSystemRole,
		&tpl.IsActive,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.ErrRoleTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan role template: %w", err)
	}

	if err := json.Unmarshal(permissions, &tpl.Permissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}
	if err := json.Unmarshal(quotas, &tpl.QuotaLimits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quota limits: %w", err)
	}

	return &tpl, nil
}
