package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentpress/control-plane/models"
	"github.com/agentpress/control-plane/repositories"
	"github.com/agentpress/control-plane/services"
)

const auditColumns = `id, action, agent_id, site_id, resource_type, resource_id, details, request_id, timestamp, requested_action, allowed, reason`

// AuditRepository implements the repositories.AuditRepository interface
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new audit log entry
func (r *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		log.ID,
		log.Action,
		log.AgentID,
		log.SiteID,
		log.ResourceType,
		log.ResourceID,
		nullableJSON(log.Details),
		nullableString(log.RequestID),
		log.Timestamp,
		log.RequestedAction,
		log.Allowed,
		log.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// GetByID retrieves an audit log by ID
func (r *AuditRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	return scanAuditLog(executor.QueryRowContext(ctx, query, id))
}

// GetByAgentID retrieves audit logs for an agent with pagination
func (r *AuditRepository) GetByAgentID(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE agent_id = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`
	return r.query(ctx, query, agentID, limit, offset)
}

// GetByDateRange retrieves audit logs within a date range
func (r *AuditRepository) GetByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY timestamp DESC
		LIMIT $3 OFFSET $4
	`
	return r.query(ctx, query, start, end, limit, offset)
}

// GetByAction retrieves audit logs by action type
func (r *AuditRepository) GetByAction(ctx context.Context, action models.AuditAction, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE action = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`
	return r.query(ctx, query, action, limit, offset)
}

// List retrieves recent audit logs with pagination
func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2
	`
	return r.query(ctx, query, limit, offset)
}

// WithTx returns a new repository instance bound to the transaction
func (r *AuditRepository) WithTx(tx repositories.Transaction) repositories.AuditRepository {
	return r
}

func (r *AuditRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.AuditLog, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		log, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func scanAuditLog(row rowScanner) (*models.AuditLog, error) {
	var (
		log       models.AuditLog
		details   []byte
		requestID sql.NullString
	)

	err := row.Scan(
		&log.ID,
		&log.Action,
		&log.AgentID,
		&log.SiteID,
		&log.ResourceType,
		&log.ResourceID,
		&details,
		&requestID,
		&log.Timestamp,
		&log.RequestedAction,
		&log.Allowed,
		&log.Reason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.ErrAuditLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit log: %w", err)
	}

	if len(details) > 0 {
		log.Details = details
	}
	log.RequestID = requestID.String

	return &log, nil
}

func nullableJSON(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return data
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
