package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/agentpress/control-plane/app"
	"github.com/agentpress/control-plane/models"
	"github.com/agentpress/control-plane/services"
	"github.com/agentpress/control-plane/services/decision"
)

// DecisionRequest is the request body for POST /api/v1/decisions
type DecisionRequest struct {
	AgentID string               `json:"agent_id" validate:"required,uuid"`
	Action  string               `json:"action" validate:"required"`
	SiteID  *string              `json:"site_id,omitempty" validate:"omitempty,uuid"`
	Article *models.ArticleDraft `json:"article,omitempty"`
}

// DecisionResponse is the response body for POST /api/v1/decisions
type DecisionResponse struct {
	Allowed               bool     `json:"allowed"`
	Reason                string   `json:"reason,omitempty"`
	Violations            []string `json:"violations,omitempty"`
	RemainingDailyQuota   int      `json:"remaining_daily_quota"`
	RemainingMonthlyQuota int      `json:"remaining_monthly_quota"`
	RetryAfterSeconds     int      `json:"retry_after_seconds,omitempty"`
}

// EvaluateDecisionHandler handles POST /api/v1/decisions.
// Denials come back with a 200: the request was evaluated successfully, the
// answer just happens to be no.
func EvaluateDecisionHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body DecisionRequest
		if err := decodeJSON(r, &body); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		agentID, err := uuid.Parse(body.AgentID)
		if err != nil {
			HandleServiceError(w, services.ErrInvalidInput.WithDetail("agent_id", "must be a valid UUID"), deps.Logger)
			return
		}

		req := decision.Request{
			AgentID: agentID,
			Action:  models.Action(body.Action),
			Article: body.Article,
		}
		if body.SiteID != nil {
			siteID, err := uuid.Parse(*body.SiteID)
			if err != nil {
				HandleServiceError(w, services.ErrInvalidInput.WithDetail("site_id", "must be a valid UUID"), deps.Logger)
				return
			}
			req.SiteID = &siteID
		}

		verdict, err := deps.Engine.Decide(r.Context(), req)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: DecisionResponse{
			Allowed:               verdict.Allowed,
			Reason:                string(verdict.Reason),
			Violations:            verdict.Violations,
			RemainingDailyQuota:   verdict.RemainingDailyQuota,
			RemainingMonthlyQuota: verdict.RemainingMonthlyQuota,
			RetryAfterSeconds:     int(verdict.RetryAfter.Seconds()),
		}})
	}
}

// ReleaseQuotaHandler handles POST /api/v1/decisions/release.
// Callers use it to hand back a reservation when a submission that was
// admitted ultimately failed downstream.
func ReleaseQuotaHandler(deps *app.Dependencies) http.HandlerFunc {
	type releaseRequest struct {
		AgentID string `json:"agent_id" validate:"required,uuid"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body releaseRequest
		if err := decodeJSON(r, &body); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		agentID, err := uuid.Parse(body.AgentID)
		if err != nil {
			HandleServiceError(w, services.ErrInvalidInput.WithDetail("agent_id", "must be a valid UUID"), deps.Logger)
			return
		}

		deps.QuotaTracker.Release(agentID)
		respondJSON(w, http.StatusOK, SuccessResponse{Data: map[string]string{"status": "released"}})
	}
}
