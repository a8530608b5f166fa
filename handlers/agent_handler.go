package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agentpress/control-plane/app"
	"github.com/agentpress/control-plane/models"
	"github.com/agentpress/control-plane/services"
	"github.com/agentpress/control-plane/utils"
)

// AgentRequest is the request body for agent create/update
type AgentRequest struct {
	Name                string                     `json:"name" validate:"required,min=1,max=255"`
	RoleTemplateID      *string                    `json:"role_template_id,omitempty" validate:"omitempty,uuid"`
	PermissionsOverride *models.PermissionOverride `json:"permissions_override,omitempty"`
	RateLimit           *models.RateLimitConfig    `json:"rate_limit,omitempty"`
	QuotaLimits         *models.QuotaLimits        `json:"quota_limits,omitempty"`
	Status              string                     `json:"status,omitempty" validate:"omitempty,oneof=active inactive locked"`
}

// CreateAgentHandler handles POST /api/v1/agents
func CreateAgentHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body AgentRequest
		if err := decodeJSON(r, &body); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if err := utils.ValidateStruct(&body); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}

		roleTemplateID, err := resolveRoleTemplateID(r, deps, body.RoleTemplateID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if body.QuotaLimits != nil {
			if err := validateQuotaLimits(body.QuotaLimits); err != nil {
				HandleServiceError(w, err, deps.Logger)
				return
			}
		}

		agent := models.NewAgent(body.Name, roleTemplateID)
		agent.PermissionsOverride = body.PermissionsOverride
		agent.RateLimit = body.RateLimit
		agent.QuotaLimits = body.QuotaLimits
		if body.Status != "" {
			agent.Status = models.AgentStatus(body.Status)
		}

		if err := deps.Agents.Create(r.Context(), agent); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		auditMutation(deps, models.AuditActionAgentCreated, "agent", agent.ID, r)

		respondJSON(w, http.StatusCreated, SuccessResponse{Data: agent})
	}
}

// GetAgentHandler handles GET /api/v1/agents/{id}
func GetAgentHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		agent, err := deps.Agents.GetByID(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: agent})
	}
}

// ListAgentsHandler handles GET /api/v1/agents
func ListAgentsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)

		agents, err := deps.Agents.List(r.Context(), limit, offset)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: agents})
	}
}

// UpdateAgentHandler handles PUT /api/v1/agents/{id}
func UpdateAgentHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		var body AgentRequest
		if err := decodeJSON(r, &body); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if err := utils.ValidateStruct(&body); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}

		agent, err := deps.Agents.GetByID(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		roleTemplateID, err := resolveRoleTemplateID(r, deps, body.RoleTemplateID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if body.QuotaLimits != nil {
			if err := validateQuotaLimits(body.QuotaLimits); err != nil {
				HandleServiceError(w, err, deps.Logger)
				return
			}
		}

		agent.Name = body.Name
		agent.RoleTemplateID = roleTemplateID
		agent.PermissionsOverride = body.PermissionsOverride
		agent.RateLimit = body.RateLimit
		agent.QuotaLimits = body.QuotaLimits
		if body.Status != "" {
			agent.Status = models.AgentStatus(body.Status)
		}
		agent.UpdatedAt = time.Now()

		if err := deps.Agents.Update(r.Context(), agent); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		auditMutation(deps, models.AuditActionAgentUpdated, "agent", agent.ID, r)

		respondJSON(w, http.StatusOK, SuccessResponse{Data: agent})
	}
}

// DeleteAgentHandler handles DELETE /api/v1/agents/{id}
func DeleteAgentHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if err := deps.Agents.Delete(r.Context(), id); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: map[string]string{"status": "deleted"}})
	}
}

// resolveRoleTemplateID parses and verifies an optional role template reference
func resolveRoleTemplateID(r *http.Request, deps *app.Dependencies, raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, services.ErrInvalidInput.WithDetail("role_template_id", "must be a valid UUID")
	}
	// Reject dangling references up front
	if _, err := deps.RoleTemplates.GetByID(r.Context(), id); err != nil {
		return nil, err
	}
	return &id, nil
}
