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

// SiteRepository implements the repositories.SiteRepository interface
type SiteRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSiteRepository creates a new site repository
func NewSiteRepository(db *DB, logger *zap.Logger) repositories.SiteRepository {
	return &SiteRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new site
func (r *SiteRepository) Create(ctx context.Context, site *models.Site) error {
	rules, err := json.Marshal(site.PublishingRules)
	if err != nil {
		return fmt.Errorf("failed to marshal publishing rules: %w", err)
	}
	rateLimit, err := json.Marshal(site.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to marshal rate limit: %w", err)
	}

	query := `
		INSERT INTO sites (id, name, url, publishing_rules, rate_limit, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		site.ID,
		site.Name,
		site.URL,
		rules,
		rateLimit,
		site.Status,
		site.CreatedAt,
		site.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}

	r.logger.Debug("site created", zap.String("id", site.ID.String()))
	return nil
}

// GetByID retrieves a site by ID
func (r *SiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	query := `
		SELECT id, name, url, publishing_rules, rate_limit, status, created_at, updated_at
		FROM sites
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	return scanSite(executor.QueryRowContext(ctx, query, id))
}

// List retrieves all sites with pagination
func (r *SiteRepository) List(ctx context.Context, limit, offset int) ([]*models.Site, error) {
	query := `
		SELECT id, name, url, publishing_rules, rate_limit, status, created_at, updated_at
		FROM sites
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []*models.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// Update updates a site
func (r *SiteRepository) Update(ctx context.Context, site *models.Site) error {
	rules, err := json.Marshal(site.PublishingRules)
	if err != nil {
		return fmt.Errorf("failed to marshal publishing rules: %w", err)
	}
	rateLimit, err := json.Marshal(site.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to marshal rate limit: %w", err)
	}

	query := `
		UPDATE sites
		SET name = $2, url = $3, publishing_rules = $4, rate_limit = $5, status = $6, updated_at = $7
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		site.ID,
		site.Name,
		site.URL,
		rules,
		rateLimit,
		site.Status,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return services.ErrSiteNotFound
	}

	r.logger.Debug("site updated", zap.String("id", site.ID.String()))
	return nil
}

// Delete deletes a site
func (r *SiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sites WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return services.ErrSiteNotFound
	}

	r.logger.Debug("site deleted", zap.String("id", id.String()))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *SiteRepository) WithTx(tx repositories.Transaction) repositories.SiteRepository {
	return r
}

func scanSite(row rowScanner) (*models.Site, error) {
	var (
		site      models.Site
		rules     []byte
		rateLimit []byte
	)

	err := row.Scan(
		&site.ID,
		&site.Name,
		&site.URL,
		&rules,
		&rateLimit,
		&site.Status,
		&site.CreatedAt,
		&site.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.ErrSiteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan site: %w", err)
	}

	if err := json.Unmarshal(rules, &site.PublishingRules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal publishing rules: %w", err)
	}
	if err := json.Unmarshal(rateLimit, &site.RateLimit); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate limit: %w", err)
	}

	return &site, nil
}
