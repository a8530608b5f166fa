package models

import (
	"time"

	"github.com/google/uuid"
)

// SiteStatus represents the lifecycle state of a target site
type SiteStatus string

const (
	SiteStatusActive   SiteStatus = "active"
	SiteStatusInactive SiteStatus = "inactive"
)

// PublishingRules are the per-site content constraints an article must satisfy
// before admission. Empty allow-lists mean every agent/category is accepted;
// a MaxWordCount of 0 means no upper bound.
type PublishingRules struct {
	AllowedAgents        []string `json:"allowed_agents,omitempty"`
	AllowedCategories    []string `json:"allowed_categories,omitempty"`
	MinWordCount         int      `json:"min_word_count" validate:"min=0"`
	MaxWordCount         int      `json:"max_word_count" validate:"min=0,gtefield=MinWordCount|eq=0"`
	RequireFeaturedImage bool     `json:"require_featured_image"`
	AutoApprove          bool     `json:"auto_approve"`
	AutoPublishApproved  bool     `json:"auto_publish_approved"`
}

// SiteRateLimit bounds publish traffic toward one site
type SiteRateLimit struct {
	MaxPostsPerHour       int `json:"max_posts_per_hour" validate:"min=0"`
	MaxPostsPerDay        int `json:"max_posts_per_day" validate:"min=0"`
	MaxConcurrentPublishes int `json:"max_concurrent_publishes" validate:"min=0"`
}

// Site represents a publishing target
type Site struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	URL             string          `json:"url" db:"url"`
	PublishingRules PublishingRules `json:"publishing_rules" db:"publishing_rules"`
	RateLimit       SiteRateLimit   `json:"rate_limit" db:"rate_limit"`
	Status          SiteStatus      `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Site model
func (Site) TableName() string {
	return "sites"
}

// NewSite creates a new active Site instance
func NewSite(name, url string, rules PublishingRules) *Site {
	now := time.Now()
	return &Site{
		ID:              uuid.New(),
		Name:            name,
		URL:             url,
		PublishingRules: rules,
		Status:          SiteStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsActive returns true if the site accepts submissions
func (s *Site) IsActive() bool {
	return s.Status == SiteStatusActive
}
