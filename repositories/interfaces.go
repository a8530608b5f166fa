package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentpress/control-plane/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// RoleTemplateRepository handles role template data operations
type RoleTemplateRepository interface {
	// Create creates a new role template
	Create(ctx context.Context, template *models.RoleTemplate) error

	// GetByID retrieves a role template by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.RoleTemplate, error)

	// List retrieves all role templates with pagination
	List(ctx context.Context, limit, offset int) ([]*models.RoleTemplate, error)

	// Update updates a role template in place
	Update(ctx context.Context, template *models.RoleTemplate) error

	// SetActive flips the soft activation state. Role templates are never
	// hard-deleted.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) RoleTemplateRepository
}

// AgentRepository handles agent data operations
type AgentRepository interface {
	// Create creates a new agent
	Create(ctx context.Context, agent *models.Agent) error

	// GetByID retrieves an agent by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)

	// GetByRoleTemplateID retrieves all agents assigned to a role template
	GetByRoleTemplateID(ctx context.Context, roleTemplateID uuid.UUID) ([]*models.Agent, error)

	// List retrieves all agents with pagination
	List(ctx context.Context, limit, offset int) ([]*models.Agent, error)

	// Update updates an agent
	Update(ctx context.Context, agent *models.Agent) error

	// Delete deletes an agent
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) AgentRepository
}

// SiteRepository handles target site data operations
type SiteRepository interface {
	// Create creates a new site
	Create(ctx context.Context, site *models.Site) error

	// GetByID retrieves a site by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error)

	// List retrieves all sites with pagination
	List(ctx context.Context, limit, offset int) ([]*models.Site, error)

	// Update updates a site
	Update(ctx context.Context, site *models.Site) error

	// Delete deletes a site
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) SiteRepository
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// GetByID retrieves an audit log by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error)

	// GetByAgentID retrieves audit logs for an agent with pagination
	GetByAgentID(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)

	// GetByDateRange retrieves audit logs within a date range
	GetByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.AuditLog, error)

	// GetByAction retrieves audit logs by action type
	GetByAction(ctx context.Context, action models.AuditAction, limit, offset int) ([]*models.AuditLog, error)

	// List retrieves recent audit logs with pagination
	List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) AuditRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	RoleTemplates RoleTemplateRepository
	Agents        AgentRepository
	Sites         SiteRepository
	AuditLogs     AuditRepository
}
