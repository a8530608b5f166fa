package handlers

import (
	"net/http"
	"time"

	"github.com/agentpress/control-plane/app"
	"github.com/agentpress/control-plane/models"
	"github.com/agentpress/control-plane/services"
)

// ListAuditLogsHandler handles GET /api/v1/audit.
// Supports filtering by agent_id, action, or a from/to date range; filters are
// mutually exclusive and checked in that order.
func ListAuditLogsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)
		q := r.URL.Query()

		var (
			logs []*models.AuditLog
			err  error
		)

		switch {
		case q.Get("agent_id") != "":
			agentID, parseErr := parseUUIDParam(q.Get("agent_id"), "agent_id")
			if parseErr != nil {
				HandleServiceError(w, parseErr, deps.Logger)
				return
			}
			logs, err = deps.AuditLogs.GetByAgentID(r.Context(), agentID, limit, offset)

		case q.Get("action") != "":
			logs, err = deps.AuditLogs.GetByAction(r.Context(), models.AuditAction(q.Get("action")), limit, offset)

		case q.Get("from") != "" || q.Get("to") != "":
			from, to, rangeErr := parseDateRange(q.Get("from"), q.Get("to"))
			if rangeErr != nil {
				HandleServiceError(w, rangeErr, deps.Logger)
				return
			}
			logs, err = deps.AuditLogs.GetByDateRange(r.Context(), from, to, limit, offset)

		default:
			logs, err = deps.AuditLogs.List(r.Context(), limit, offset)
		}

		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: logs})
	}
}

// GetAuditLogHandler handles GET /api/v1/audit/{id}
func GetAuditLogHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		log, err := deps.AuditLogs.GetByID(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: log})
	}
}

// parseDateRange parses RFC3339 from/to query parameters. A missing bound is
// open-ended.
func parseDateRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	from := time.Time{}
	to := time.Now().Add(24 * time.Hour)

	if fromRaw != "" {
		parsed, err := time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, services.ErrInvalidInput.WithDetail("from", "must be RFC3339")
		}
		from = parsed
	}
	if toRaw != "" {
		parsed, err := time.Parse(time.RFC3339, toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, services.ErrInvalidInput.WithDetail("to", "must be RFC3339")
		}
		to = parsed
	}
	return from, to, nil
}
