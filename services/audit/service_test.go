package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/agentpress/control-plane/models"
	"github.com/agentpress/control-plane/repositories"
	"github.com/agentpress/control-plane/services"
)

// captureRepo records inserted audit logs in memory.
type captureRepo struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (r *captureRepo) Insert(_ context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *captureRepo) GetByID(_ context.Context, _ uuid.UUID) (*models.AuditLog, error) {
	return nil, services.ErrAuditLogNotFound
}

func (r *captureRepo) GetByAgentID(_ context.Context, _ uuid.UUID, _, _ int) ([]*models.AuditLog, error) {
	return nil, nil
}

func (r *captureRepo) GetByDateRange(_ context.Context, _, _ time.Time, _, _ int) ([]*models.AuditLog, error) {
	return nil, nil
}

func (r *captureRepo) GetByAction(_ context.Context, _ models.AuditAction, _, _ int) ([]*models.AuditLog, error) {
	return nil, nil
}

func (r *captureRepo) List(_ context.Context, _, _ int) ([]*models.AuditLog, error) {
	return nil, nil
}

func (r *captureRepo) WithTx(_ repositories.Transaction) repositories.AuditRepository { return r }

func (r *captureRepo) captured() []*models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.AuditLog, len(r.logs))
	copy(out, r.logs)
	return out
}

func newStartedService(t *testing.T) (*AuditService, *captureRepo) {
	t.Helper()
	repo := &captureRepo{}
	svc := NewAuditService(repo, zaptest.NewLogger(t), Config{BufferSize: 100, WorkerCount: 2})
	require.NoError(t, svc.Start())
	return svc, repo
}

func TestAuditService_Lifecycle(t *testing.T) {
	repo := &captureRepo{}
	svc := NewAuditService(repo, zaptest.NewLogger(t), DefaultConfig())

	err := svc.LogEvent(&AuditEvent{Log: models.NewAuditLog(models.AuditActionAgentCreated, "agent")})
	assert.Error(t, err, "events before Start are rejected")

	require.NoError(t, svc.Start())
	assert.Error(t, svc.Start(), "double start is rejected")

	require.NoError(t, svc.Stop(time.Second))
	assert.Error(t, svc.Stop(time.Second), "stop after stop is rejected")
}

func TestAuditService_ProcessesEvents(t *testing.T) {
	svc, repo := newStartedService(t)

	agentID := uuid.New()
	log := models.NewAuditLog(models.AuditActionAgentCreated, "agent").WithResource(agentID)
	require.NoError(t, svc.LogEvent(&AuditEvent{Log: log}))

	// Stop drains the channel, so every accepted event is persisted after it
	// returns.
	require.NoError(t, svc.Stop(time.Second))

	captured := repo.captured()
	require.Len(t, captured, 1)
	assert.Equal(t, models.AuditActionAgentCreated, captured[0].Action)
	assert.Equal(t, agentID, *captured[0].ResourceID)
}

func TestAuditService_LogDecision(t *testing.T) {
	tests := []struct {
		name       string
		allowed    bool
		reason     string
		wantAction models.AuditAction
	}{
		{"allowed decision", true, "", models.AuditActionDecisionAllowed},
		{"denied decision", false, "rate_limited", models.AuditActionDecisionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newStartedService(t)

			agentID := uuid.New()
			siteID := uuid.New()
			require.NoError(t, svc.LogDecision(agentID, &siteID, "submit_article", tt.allowed, tt.reason, "req-123"))
			require.NoError(t, svc.Stop(time.Second))

			captured := repo.captured()
			require.Len(t, captured, 1)
			entry := captured[0]

			assert.Equal(t, tt.wantAction, entry.Action)
			assert.Equal(t, "decision", entry.ResourceType)
			assert.Equal(t, agentID, *entry.AgentID)
			assert.Equal(t, siteID, *entry.SiteID)
			assert.Equal(t, "submit_article", *entry.RequestedAction)
			assert.Equal(t, tt.allowed, *entry.Allowed)
			assert.Equal(t, "req-123", entry.RequestID)
			if tt.reason == "" {
				assert.Nil(t, entry.Reason)
			} else {
				assert.Equal(t, tt.reason, *entry.Reason)
			}
		})
	}
}

func TestAuditService_LogDecision_NoSite(t *testing.T) {
	svc, repo := newStartedService(t)

	require.NoError(t, svc.LogDecision(uuid.New(), nil, "view_statistics", true, "", ""))
	require.NoError(t, svc.Stop(time.Second))

	captured := repo.captured()
	require.Len(t, captured, 1)
	assert.Nil(t, captured[0].SiteID)
}

func TestAuditService_LogRoleDeactivated(t *testing.T) {
	svc, repo := newStartedService(t)

	roleID := uuid.New()
	require.NoError(t, svc.LogRoleDeactivated(roleID, "req-9"))
	require.NoError(t, svc.Stop(time.Second))

	captured := repo.captured()
	require.Len(t, captured, 1)
	assert.Equal(t, models.AuditActionRoleDeactivated, captured[0].Action)
	assert.Equal(t, "role_template", captured[0].ResourceType)
	assert.Equal(t, roleID, *captured[0].ResourceID)
}

func TestAuditService_LogResourceMutation(t *testing.T) {
	svc, repo := newStartedService(t)

	siteID := uuid.New()
	require.NoError(t, svc.LogResourceMutation(models.AuditActionSiteUpdated, "site", siteID, ""))
	require.NoError(t, svc.Stop(time.Second))

	captured := repo.captured()
	require.Len(t, captured, 1)
	assert.Equal(t, models.AuditActionSiteUpdated, captured[0].Action)
	assert.Equal(t, "site", captured[0].ResourceType)
}

// With no workers draining, a full buffer drops events instead of blocking
// the caller.
func TestAuditService_FullBufferDropsEvent(t *testing.T) {
	repo := &captureRepo{}
	svc := NewAuditService(repo, zaptest.NewLogger(t), Config{BufferSize: 1, WorkerCount: 0})
	require.NoError(t, svc.Start())

	first := &AuditEvent{Log: models.NewAuditLog(models.AuditActionAgentCreated, "agent")}
	second := &AuditEvent{Log: models.NewAuditLog(models.AuditActionAgentUpdated, "agent")}

	require.NoError(t, svc.LogEvent(first))
	assert.Error(t, svc.LogEvent(second))

	require.NoError(t, svc.Stop(time.Second))
}

func TestAuditService_LogEventBlocking(t *testing.T) {
	svc, repo := newStartedService(t)

	event := &AuditEvent{Log: models.NewAuditLog(models.AuditActionRoleCreated, "role_template")}
	require.NoError(t, svc.LogEventBlocking(context.Background(), event))
	require.NoError(t, svc.Stop(time.Second))

	assert.Len(t, repo.captured(), 1)
}

func TestAuditService_GetStats(t *testing.T) {
	repo := &captureRepo{}
	svc := NewAuditService(repo, zaptest.NewLogger(t), Config{BufferSize: 42, WorkerCount: 3})

	stats := svc.GetStats()
	assert.Equal(t, 42, stats.BufferSize)
	assert.Equal(t, 3, stats.WorkerCount)
	assert.False(t, stats.Started)

	require.NoError(t, svc.Start())
	assert.True(t, svc.GetStats().Started)
	require.NoError(t, svc.Stop(time.Second))
}
