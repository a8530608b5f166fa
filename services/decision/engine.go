// Package decision orchestrates permission resolution, the working-hours
// gate, rate limiting, quota reservation and site publishing rules into a
// single admission verdict.
package decision

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentpress/control-plane/models"
	"github.com/agentpress/control-plane/repositories"
	"github.com/agentpress/control-plane/services"
	"github.com/agentpress/control-plane/services/audit"
	"github.com/agentpress/control-plane/services/permissions"
	"github.com/agentpress/control-plane/services/publishing"
	"github.com/agentpress/control-plane/services/quota"
	"github.com/agentpress/control-plane/services/ratelimit"
	"github.com/agentpress/control-plane/services/workinghours"
)

// Reason is the single top-level code attached to every denial.
type Reason string

const (
	ReasonAgentInactive           Reason = "agent_inactive"
	ReasonPermissionDenied        Reason = "permission_denied"
	ReasonOutsideWorkingHours     Reason = "outside_working_hours"
	ReasonInvalidTimezoneConfig   Reason = "invalid_timezone_config"
	ReasonRateLimited             Reason = "rate_limited"
	ReasonQuotaExhaustedDaily     Reason = "quota_exhausted_daily"
	ReasonQuotaExhaustedMonthly   Reason = "quota_exhausted_monthly"
	ReasonSiteInactive            Reason = "site_inactive"
	ReasonPublishingRulesViolated Reason = "publishing_rules_violated"
)

// Request is one admission question: may this agent perform this action right
// now, optionally against a specific site with a candidate article.
type Request struct {
	AgentID uuid.UUID
	Action  models.Action
	SiteID  *uuid.UUID
	Article *models.ArticleDraft
}

// Decision is the engine's verdict. Denials are ordinary values, never
// errors; an error from Decide means the evaluation itself could not
// complete. Remaining quotas are -1 when the corresponding ceiling is
// unlimited.
type Decision struct {
	Allowed               bool          `json:"allowed"`
	Reason                Reason        `json:"reason,omitempty"`
	Violations            []string      `json:"violations,omitempty"`
	RemainingDailyQuota   int           `json:"remaining_daily_quota"`
	RemainingMonthlyQuota int           `json:"remaining_monthly_quota"`
	RetryAfter            time.Duration `json:"retry_after,omitempty"`
}

// Engine is the policy decision engine. It holds no long-lived state beyond
// the counters owned by the quota tracker and rate limiter; role templates,
// agents and sites are fetched fresh per decision so a template edit takes
// effect on the next request.
type Engine struct {
	roles  repositories.RoleTemplateRepository
	agents repositories.AgentRepository
	sites  repositories.SiteRepository
	quota  *quota.Tracker
	rate   *ratelimit.Limiter
	audit  *audit.AuditService
	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithAuditService wires an audit sink for decision outcomes.
func WithAuditService(svc *audit.AuditService) Option {
	return func(e *Engine) {
		e.audit = svc
	}
}

// NewEngine creates a new Engine instance
func NewEngine(
	roles repositories.RoleTemplateRepository,
	agents repositories.AgentRepository,
	sites repositories.SiteRepository,
	quotaTracker *quota.Tracker,
	rateLimiter *ratelimit.Limiter,
	logger *zap.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		roles:  roles,
		agents: agents,
		sites:  sites,
		quota:  quotaTracker,
		rate:   rateLimiter,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide evaluates one admission request in a fixed order: permission,
// working hours, rate limit, quota reservation, site publishing rules.
// Cheap stateless checks run before checks that mutate shared counters, and
// the one stateful check that can still fail after quota is reserved (site
// rules) rolls the reservation back so quota is never consumed for a
// rejected article. Lookup failures are returned as errors, never encoded as
// denials.
func (e *Engine) Decide(ctx context.Context, req Request) (*Decision, error) {
	if !req.Action.Valid() {
		return nil, services.ErrInvalidAction.WithDetail("action", string(req.Action))
	}

	now := e.now().UTC()

	agent, err := e.agents.GetByID(ctx, req.AgentID)
	if err != nil {
		return nil, err
	}

	if !agent.IsActive() {
		return e.deny(req, ReasonAgentInactive, nil, 0), nil
	}

	// Step 1: resolve effective permissions.
	templatePerms, quotaLimits, err := e.resolveTemplate(ctx, agent)
	if err != nil {
		return nil, err
	}
	perms := permissions.Resolve(templatePerms, agent.PermissionsOverride)

	if !perms.Allows(req.Action) {
		return e.deny(req, ReasonPermissionDenied, nil, 0), nil
	}

	// Step 2: working-hours gate. An unresolvable timezone is a
	// configuration error; the gate fails closed.
	withinWindow, whErr := workinghours.IsWithinWindow(quotaLimits.WorkingHours, now)
	if whErr != nil {
		e.logger.Warn("working hours configuration invalid, failing closed",
			zap.String("agent_id", agent.ID.String()),
			zap.Error(whErr))
		return e.deny(req, ReasonInvalidTimezoneConfig, nil, 0), nil
	}
	if !withinWindow {
		return e.deny(req, ReasonOutsideWorkingHours, nil, 0), nil
	}

	// Step 3: rate limiter.
	admit := e.rate.Admit(agent.ID, agent.RateLimit, now)
	if !admit.Admitted {
		return e.deny(req, ReasonRateLimited, nil, admit.RetryAfter), nil
	}

	// Step 4: quota reservation. Quota bounds article volume, so only
	// submissions reserve; other actions report remaining quota read-only.
	var (
		reserved         bool
		remainingDaily   int
		remainingMonthly int
	)
	if req.Action == models.ActionSubmitArticle {
		rsv := e.quota.CheckAndReserve(agent.ID, quotaLimits, now)
		remainingDaily, remainingMonthly = rsv.RemainingDaily, rsv.RemainingMonthly
		if !rsv.Allowed {
			reason := ReasonQuotaExhaustedDaily
			if rsv.Reason == quota.ReasonMonthlyExhausted {
				reason = ReasonQuotaExhaustedMonthly
			}
			d := e.deny(req, reason, nil, 0)
			d.RemainingDailyQuota = remainingDaily
			d.RemainingMonthlyQuota = remainingMonthly
			return d, nil
		}
		reserved = true
	} else {
		remainingDaily, remainingMonthly = e.quota.Remaining(agent.ID, quotaLimits, now)
	}

	// Step 5: site publishing rules, when the action targets a site.
	if req.SiteID != nil {
		decision, err := e.checkSiteRules(ctx, req, agent, perms)
		if err != nil || decision != nil {
			if reserved {
				e.quota.Release(agent.ID)
			}
			if err != nil {
				return nil, err
			}
			decision.RemainingDailyQuota, decision.RemainingMonthlyQuota =
				e.quota.Remaining(agent.ID, quotaLimits, now)
			return decision, nil
		}
	}

	// Step 6: allowed; the reservation from step 4 stays committed.
	d := &Decision{
		Allowed:               true,
		RemainingDailyQuota:   remainingDaily,
		RemainingMonthlyQuota: remainingMonthly,
	}
	e.record(req, d)
	return d, nil
}

// resolveTemplate loads the agent's role template when one is assigned. An
// inactive template contributes nothing; agents without a template use their
// own embedded quota block.
func (e *Engine) resolveTemplate(ctx context.Context, agent *models.Agent) (*models.PermissionSet, models.QuotaLimits, error) {
	if agent.RoleTemplateID == nil {
		var limits models.QuotaLimits
		if agent.QuotaLimits != nil {
			limits = *agent.QuotaLimits
		}
		return nil, limits, nil
	}

	tpl, err := e.roles.GetByID(ctx, *agent.RoleTemplateID)
	if err != nil {
		return nil, models.QuotaLimits{}, err
	}
	if !tpl.IsActive {
		return nil, models.QuotaLimits{}, nil
	}
	return &tpl.Permissions, tpl.QuotaLimits, nil
}

// checkSiteRules validates the candidate article against the target site.
// Returns a non-nil Decision on denial, nil when the article passes.
func (e *Engine) checkSiteRules(ctx context.Context, req Request, agent *models.Agent, perms permissions.EffectivePermissions) (*Decision, error) {
	if req.Article == nil {
		return nil, services.ErrMissingArticle
	}

	site, err := e.sites.GetByID(ctx, *req.SiteID)
	if err != nil {
		return nil, err
	}
	if !site.IsActive() {
		return e.deny(req, ReasonSiteInactive, nil, 0), nil
	}

	result := publishing.Validate(req.Article, site.PublishingRules)
	violations := result.Violations

	// Agent-level allow-lists are part of the effective permission set and
	// reported alongside the site's own rules.
	if req.Article.Category != "" && !perms.CategoryAllowed(req.Article.Category) {
		violations = append(violations, "category \""+req.Article.Category+"\" is not permitted for this agent")
	}
	for _, tag := range req.Article.Tags {
		if !perms.TagAllowed(tag) {
			violations = append(violations, "tag \""+tag+"\" is not permitted for this agent")
		}
	}

	if len(violations) > 0 {
		return e.deny(req, ReasonPublishingRulesViolated, violations, 0), nil
	}
	return nil, nil
}

// deny builds a denial Decision and records it.
func (e *Engine) deny(req Request, reason Reason, violations []string, retryAfter time.Duration) *Decision {
	d := &Decision{
		Allowed:               false,
		Reason:                reason,
		Violations:            violations,
		RemainingDailyQuota:   -1,
		RemainingMonthlyQuota: -1,
		RetryAfter:            retryAfter,
	}
	e.record(req, d)
	return d
}

// record logs the verdict and forwards it to the audit trail when one is
// wired.
func (e *Engine) record(req Request, d *Decision) {
	fields := []zap.Field{
		zap.String("agent_id", req.AgentID.String()),
		zap.String("action", string(req.Action)),
		zap.Bool("allowed", d.Allowed),
	}
	if d.Reason != "" {
		fields = append(fields, zap.String("reason", string(d.Reason)))
	}
	if req.SiteID != nil {
		fields = append(fields, zap.String("site_id", req.SiteID.String()))
	}
	e.logger.Info("decision evaluated", fields...)

	if e.audit != nil {
		_ = e.audit.LogDecision(req.AgentID, req.SiteID, string(req.Action), d.Allowed, string(d.Reason), "")
	}
}
