package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agentpress/control-plane/app"
	"github.com/agentpress/control-plane/middleware"
	"github.com/agentpress/control-plane/models"
	"github.com/agentpress/control-plane/services"
	"github.com/agentpress/control-plane/utils"
)

// RoleTemplateRequest is the request body for role template create/update
type RoleTemplateRequest struct {
	Name        string               `json:"name" validate:"required,min=1,max=255"`
	Description string               `json:"description"`
	Permissions models.PermissionSet `json:"permissions"`
	QuotaLimits models.QuotaLimits   `json:"quota_limits"`
}

// CreateRoleTemplateHandler handles POST /api/v1/roles
func CreateRoleTemplateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body RoleTemplateRequest
		if err := decodeJSON(r, &body); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if err := utils.ValidateStruct(&body); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}
		if err := validateQuotaLimits(&body.QuotaLimits); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		tpl := models.NewRoleTemplate(body.Name, body.Permissions, body.QuotaLimits)
		tpl.Description = body.Description

		if err := deps.RoleTemplates.Create(r.Context(), tpl); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		auditMutation(deps, models.AuditActionRoleCreated, "role_template", tpl.ID, r)

		respondJSON(w, http.StatusCreated, SuccessResponse{Data: tpl})
	}
}

// GetRoleTemplateHandler handles GET /api/v1/roles/{id}
func GetRoleTemplateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		tpl, err := deps.RoleTemplates.GetByID(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: tpl})
	}
}

// ListRoleTemplatesHandler handles GET /api/v1/roles
func ListRoleTemplatesHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)

		templates, err := deps.RoleTemplates.List(r.Context(), limit, offset)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: templates})
	}
}

// UpdateRoleTemplateHandler handles PUT /api/v1/roles/{id}.
// The updated template takes effect on the next decision for every agent
// assigned to it; nothing is cached per agent.
func UpdateRoleTemplateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		var body RoleTemplateRequest
		if err := decodeJSON(r, &body); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if err := utils.ValidateStruct(&body); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}
		if err := validateQuotaLimits(&body.QuotaLimits); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		tpl, err := deps.RoleTemplates.GetByID(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if tpl.IsSystemRole {
			HandleServiceError(w, services.ErrSystemRoleProtected, deps.Logger)
			return
		}

		tpl.Name = body.Name
		tpl.Description = body.Description
		tpl.Permissions = body.Permissions
		tpl.QuotaLimits = body.QuotaLimits
		tpl.UpdatedAt = time.Now()

		if err := deps.RoleTemplates.Update(r.Context(), tpl); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		auditMutation(deps, models.AuditActionRoleUpdated, "role_template", tpl.ID, r)

		respondJSON(w, http.StatusOK, SuccessResponse{Data: tpl})
	}
}

// DeactivateRoleTemplateHandler handles DELETE /api/v1/roles/{id}.
// Role templates are never hard-deleted; deactivation keeps historical audit
// entries resolvable. Agents assigned to a deactivated template fall back to
// default-deny permissions on their next decision.
func DeactivateRoleTemplateHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		tpl, err := deps.RoleTemplates.GetByID(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if tpl.IsSystemRole {
			HandleServiceError(w, services.ErrSystemRoleProtected, deps.Logger)
			return
		}

		if err := deps.RoleTemplates.SetActive(r.Context(), id, false); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if deps.AuditService != nil {
			if err := deps.AuditService.LogRoleDeactivated(id, middleware.GetRequestIDFromContext(r.Context())); err != nil {
				deps.Logger.Warn("failed to audit role deactivation", zap.Error(err))
			}
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: map[string]string{"status": "deactivated"}})
	}
}

// validateQuotaLimits checks the working-hours block inside a quota config
func validateQuotaLimits(q *models.QuotaLimits) error {
	if q.WorkingHours == nil || !q.WorkingHours.Enabled {
		return nil
	}
	if err := utils.ValidateStruct(q.WorkingHours); err != nil {
		return services.ErrInvalidWorkingHours.WithDetail("working_hours", err.Error())
	}
	if q.WorkingHours.Start == "" || q.WorkingHours.End == "" || q.WorkingHours.Timezone == "" {
		return services.ErrInvalidWorkingHours.WithDetail("working_hours", "start, end and timezone are required when enabled")
	}
	return nil
}
