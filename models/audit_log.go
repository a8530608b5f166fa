package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionDecisionAllowed AuditAction = "decision_allowed"
	AuditActionDecisionDenied  AuditAction = "decision_denied"
	AuditActionRoleCreated     AuditAction = "role_created"
	AuditActionRoleUpdated     AuditAction = "role_updated"
	AuditActionRoleDeactivated AuditAction = "role_deactivated"
	AuditActionAgentCreated    AuditAction = "agent_created"
	AuditActionAgentUpdated    AuditAction = "agent_updated"
	AuditActionSiteCreated     AuditAction = "site_created"
	AuditActionSiteUpdated     AuditAction = "site_updated"
)

// AuditLog represents an audit trail entry
type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Action       AuditAction     `json:"action" db:"action"`
	AgentID      *uuid.UUID      `json:"agent_id,omitempty" db:"agent_id"`
	SiteID       *uuid.UUID      `json:"site_id,omitempty" db:"site_id"`
	ResourceType string          `json:"resource_type" db:"resource_type"` // role_template, agent, site, decision
	ResourceID   *uuid.UUID      `json:"resource_id,omitempty" db:"resource_id"`
	Details      json.RawMessage `json:"details,omitempty" db:"details"` // JSONB for flexible metadata
	RequestID    string          `json:"request_id,omitempty" db:"request_id"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`

	// Decision-specific fields
	RequestedAction *string `json:"requested_action,omitempty" db:"requested_action"`
	Allowed         *bool   `json:"allowed,omitempty" db:"allowed"`
	Reason          *string `json:"reason,omitempty" db:"reason"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(action AuditAction, resourceType string) *AuditLog {
	return &AuditLog{
		ID:           uuid.New(),
		Action:       action,
		ResourceType: resourceType,
		Timestamp:    time.Now(),
	}
}

// WithAgent sets the agent ID
func (a *AuditLog) WithAgent(agentID uuid.UUID) *AuditLog {
	a.AgentID = &agentID
	return a
}

// WithSite sets the site ID
func (a *AuditLog) WithSite(siteID uuid.UUID) *AuditLog {
	a.SiteID = &siteID
	return a
}

// WithResource sets the resource ID
func (a *AuditLog) WithResource(resourceID uuid.UUID) *AuditLog {
	a.ResourceID = &resourceID
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequestID sets the originating request ID
func (a *AuditLog) WithRequestID(requestID string) *AuditLog {
	a.RequestID = requestID
	return a
}

// WithDecision sets the decision outcome fields
func (a *AuditLog) WithDecision(requestedAction string, allowed bool, reason string) *AuditLog {
	a.RequestedAction = &requestedAction
	a.Allowed = &allowed
	if reason != "" {
		a.Reason = &reason
	}
	return a
}
