package models

import (
	"time"

	"github.com/google/uuid"
)

// PermissionSet is the fixed set of capability flags and allow-lists a role
// template grants. List fields use the project convention that an empty list
// means "no restriction", not "deny all".
type PermissionSet struct {
	CanSubmit         bool     `json:"can_submit"`
	CanEditOwn        bool     `json:"can_edit_own"`
	CanEditOthers     bool     `json:"can_edit_others"`
	CanApprove        bool     `json:"can_approve"`
	CanPublish        bool     `json:"can_publish"`
	CanViewStatistics bool     `json:"can_view_statistics"`
	CanReviewAgents   []string `json:"can_review_agents,omitempty"`
	AllowedCategories []string `json:"allowed_categories,omitempty"`
	AllowedTags       []string `json:"allowed_tags,omitempty"`
}

// WorkingHours restricts agent activity to a recurring local-time window.
// Start and End are local wall-clock times ("HH:MM"); the window is inclusive
// of Start and exclusive of End, and may cross midnight (End < Start).
// WorkingDays uses ISO weekday numbers, 1=Monday through 7=Sunday.
type WorkingHours struct {
	Enabled     bool   `json:"enabled"`
	Start       string `json:"start,omitempty" validate:"omitempty,hhmm"`
	End         string `json:"end,omitempty" validate:"omitempty,hhmm"`
	Timezone    string `json:"timezone,omitempty" validate:"omitempty,timezone_name"`
	WorkingDays []int  `json:"working_days,omitempty" validate:"dive,min=1,max=7"`
}

// QuotaLimits bounds article volume per day and per month. A value of 0 on
// the wire means unlimited (see Limit).
type QuotaLimits struct {
	DailyArticles   int           `json:"daily_articles" validate:"min=0"`
	MonthlyArticles int           `json:"monthly_articles" validate:"min=0"`
	WorkingHours    *WorkingHours `json:"working_hours,omitempty"`
}

// Daily returns the daily article ceiling as an explicit Limit.
func (q QuotaLimits) Daily() Limit {
	return NewLimit(q.DailyArticles)
}

// Monthly returns the monthly article ceiling as an explicit Limit.
func (q QuotaLimits) Monthly() Limit {
	return NewLimit(q.MonthlyArticles)
}

// RoleTemplate is a reusable named bundle of permissions and quota/time
// defaults assignable to agents. Templates are never hard-deleted;
// deactivation is a soft state transition recorded in the audit trail.
type RoleTemplate struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	Name         string        `json:"name" db:"name"`
	Description  string        `json:"description,omitempty" db:"description"`
	Permissions  PermissionSet `json:"permissions" db:"permissions"`
	QuotaLimits  QuotaLimits   `json:"quota_limits" db:"quota_limits"`
	IsSystemRole bool          `json:"is_system_role" db:"is_system_role"`
	IsActive     bool          `json:"is_active" db:"is_active"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the RoleTemplate model
func (RoleTemplate) TableName() string {
	return "role_templates"
}

// NewRoleTemplate creates a new active RoleTemplate instance
func NewRoleTemplate(name string, permissions PermissionSet, quotas QuotaLimits) *RoleTemplate {
	now := time.Now()
	return &RoleTemplate{
		ID:          uuid.New(),
		Name:        name,
		Permissions: permissions,
		QuotaLimits: quotas,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
