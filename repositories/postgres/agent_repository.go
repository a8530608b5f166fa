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

// AgentRepository implements the repositories.AgentRepository interface
type AgentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db *DB, logger *zap.Logger) repositories.AgentRepository {
	return &AgentRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new agent
func (r *AgentRepository) Create(ctx context.Context, agent *models.Agent) error {
	override, rateLimit, quotas, err := marshalAgentBlocks(agent)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO agents (id, name, role_template_id, permissions_override, rate_limit, quota_limits, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		agent.ID,
		agent.Name,
		agent.RoleTemplateID,
		override,
		rateLimit,
		quotas,
		agent.Status,
		agent.CreatedAt,
		agent.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	r.logger.Debug("agent created", zap.String("id", agent.ID.String()))
	return nil
}

// GetByID retrieves an agent by ID
func (r *AgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	query := `
		SELECT id, name, role_template_id, permissions_override, rate_limit, quota_limits, status, created_at, updated_at
		FROM agents
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	return scanAgent(executor.QueryRowContext(ctx, query, id))
}

// GetByRoleTemplateID retrieves all agents assigned to a role template
func (r *AgentRepository) GetByRoleTemplateID(ctx context.Context, roleTemplateID uuid.UUID) ([]*models.Agent, error) {
	query := `
		SELECT id, name, role_template_id, permissions_override, rate_limit, quota_limits, status, created_at, updated_at
		FROM agents
		WHERE role_template_id = $1
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, roleTemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents by role template: %w", err)
	}
	defer rows.Close()

	return collectAgents(rows)
}

// List retrieves all agents with pagination
func (r *AgentRepository) List(ctx context.Context, limit, offset int) ([]*models.Agent, error) {
	query := `
		SELECT id, name, role_template_id, permissions_override, rate_limit, quota_limits, status, created_at, updated_at
		FROM agents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	return collectAgents(rows)
}

// Update updates an agent
func (r *AgentRepository) Update(ctx context.Context, agent *models.Agent) error {
	override, rateLimit, quotas, err := marshalAgentBlocks(agent)
	if err != nil {
		return err
	}

	query := `
		UPDATE agents
		SET name = $2, role_template_id = $3, permissions_override = $4, rate_limit = $5, quota_limits = $6, status = $7, updated_at = $8
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		agent.ID,
		agent.Name,
		agent.RoleTemplateID,
		override,
		rateLimit,
		quotas,
		agent.Status,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return services.ErrAgentNotFound
	}

	r.logger.Debug("agent updated", zap.String("id", agent.ID.String()))
	return nil
}

// Delete deletes an agent
func (r *AgentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM agents WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return services.ErrAgentNotFound
	}

	r.logger.Debug("agent deleted", zap.String("id", id.String()))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *AgentRepository) WithTx(tx repositories.Transaction) repositories.AgentRepository {
	return r
}

func marshalAgentBlocks(agent *models.Agent) (override, rateLimit, quotas []byte, err error) {
	if agent.PermissionsOverride != nil {
		if override, err = json.Marshal(agent.PermissionsOverride); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal permissions override: %w", err)
		}
	}
	if agent.RateLimit != nil {
		if rateLimit, err = json.Marshal(agent.RateLimit); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal rate limit: %w", err)
		}
	}
	if agent.QuotaLimits != nil {
		if quotas, err = json.Marshal(agent.QuotaLimits); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal quota limits: %w", err)
		}
	}
	return override, rateLimit, quotas, nil
}

func collectAgents(rows *sql.Rows) ([]*models.Agent, error) {
	var agents []*models.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	return agents, rows.Err()
}

func scanAgent(row rowScanner) (*models.Agent, error) {
	var (
		agent     models.Agent
		override  []byte
		rateLimit []byte
		quotas    []byte
	)

	err := row.Scan(
		&agent.ID,
		&agent.Name,
		&agent.RoleTemplateID,
		&override,
		&rateLimit,
		&quotas,
		&agent.Status,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan agent: %w", err)
	}

	if len(override) > 0 {
		agent.PermissionsOverride = &models.PermissionOverride{}
		if err := json.Unmarshal(override, agent.PermissionsOverride); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions override: %w", err)
		}
	}
	if len(rateLimit) > 0 {
		agent.RateLimit = &models.RateLimitConfig{}
		if err := json.Unmarshal(rateLimit, agent.RateLimit); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rate limit: %w", err)
		}
	}
	if len(quotas) > 0 {
		agent.QuotaLimits = &models.QuotaLimits{}
		if err := json.Unmarshal(quotas, agent.QuotaLimits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quota limits: %w", err)
		}
	}

	return &agent, nil
}
