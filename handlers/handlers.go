package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentpress/control-plane/app"
	"github.com/agentpress/control-plane/middleware"
	"github.com/agentpress/control-plane/models"
	"github.com/agentpress/control-plane/services"
)

// Common error response structure
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Common success response structure
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, statusCode int, err string, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

// decodeJSON decodes a request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return services.ErrInvalidInput.WithDetail("body", err.Error())
	}
	return nil
}

// parseUUIDParam parses a UUID query parameter value
func parseUUIDParam(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, services.ErrInvalidInput.WithDetail(name, "must be a valid UUID")
	}
	return id, nil
}

// pathUUID parses a UUID URL parameter
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, services.ErrInvalidInput.WithDetail(name, "must be a valid UUID")
	}
	return id, nil
}

// auditMutation records a management mutation in the audit trail.
// Audit write failures never fail the mutation itself.
func auditMutation(deps *app.Dependencies, action models.AuditAction, resourceType string, resourceID uuid.UUID, r *http.Request) {
	if deps.AuditService == nil {
		return
	}
	requestID := middleware.GetRequestIDFromContext(r.Context())
	if err := deps.AuditService.LogResourceMutation(action, resourceType, resourceID, requestID); err != nil {
		deps.Logger.Warn("failed to audit mutation",
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

// pagination extracts limit/offset query parameters with sane bounds
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
