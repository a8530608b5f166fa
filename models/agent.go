package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentStatus represents the lifecycle state of an agent identity
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
	AgentStatusLocked   AgentStatus = "locked"
)

// PermissionOverride is a partial map of the PermissionSet fields. A non-nil
// boolean wins over the template value even when it is explicitly false; a
// non-nil list replaces the template list wholesale (an empty non-nil list
// still means "no restriction" per the PermissionSet convention).
type PermissionOverride struct {
	CanSubmit         *bool    `json:"can_submit,omitempty"`
	CanEditOwn        *bool    `json:"can_edit_own,omitempty"`
	CanEditOthers     *bool    `json:"can_edit_others,omitempty"`
	CanApprove        *bool    `json:"can_approve,omitempty"`
	CanPublish        *bool    `json:"can_publish,omitempty"`
	CanViewStatistics *bool    `json:"can_view_statistics,omitempty"`
	CanReviewAgents   []string `json:"can_review_agents,omitempty"`
	AllowedCategories []string `json:"allowed_categories,omitempty"`
	AllowedTags       []string `json:"allowed_tags,omitempty"`
}

// RateLimitConfig bounds request volume for an agent. A value of 0 means no
// ceiling for that window.
type RateLimitConfig struct {
	RequestsPerMinute int `json:"requests_per_minute" validate:"min=0"`
	RequestsPerHour   int `json:"requests_per_hour" validate:"min=0"`
	RequestsPerDay    int `json:"requests_per_day" validate:"min=0"`
}

// Agent represents an AI-agent identity permitted to act on target sites.
// When RoleTemplateID is nil the agent carries its own embedded quota block
// instead of inheriting one from a template. The effective permission set is
// never stored; it is resolved per decision from the template and the
// override.
type Agent struct {
	ID                  uuid.UUID           `json:"id" db:"id"`
	Name                string              `json:"name" db:"name"`
	RoleTemplateID      *uuid.UUID          `json:"role_template_id,omitempty" db:"role_template_id"`
	PermissionsOverride *PermissionOverride `json:"permissions_override,omitempty" db:"permissions_override"`
	RateLimit           *RateLimitConfig    `json:"rate_limit,omitempty" db:"rate_limit"`
	QuotaLimits         *QuotaLimits        `json:"quota_limits,omitempty" db:"quota_limits"`
	Status              AgentStatus         `json:"status" db:"status"`
	CreatedAt           time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Agent model
func (Agent) TableName() string {
	return "agents"
}

// NewAgent creates a new active Agent instance
func NewAgent(name string, roleTemplateID *uuid.UUID) *Agent {
	now := time.Now()
	return &Agent{
		ID:             uuid.New(),
		Name:           name,
		RoleTemplateID: roleTemplateID,
		Status:         AgentStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsActive returns true if the agent may act at all
func (a *Agent) IsActive() bool {
	return a.Status == AgentStatusActive
}
