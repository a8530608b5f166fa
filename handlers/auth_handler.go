package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/agentpress/control-plane/app"
	"github.com/agentpress/control-plane/services"
)

// IssueTokenRequest is the request body for POST /api/v1/auth/tokens
type IssueTokenRequest struct {
	Subject string  `json:"subject" validate:"required"`
	Role    string  `json:"role" validate:"required,oneof=operator agent"`
	AgentID *string `json:"agent_id,omitempty" validate:"omitempty,uuid"`
}

// IssueTokenResponse is the response body for POST /api/v1/auth/tokens
type IssueTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// IssueTokenHandler handles POST /api/v1/auth/tokens. Operator-only: mints
// scoped tokens for agents and other operators.
func IssueTokenHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.TokenService == nil {
			HandleServiceError(w, services.ErrUnauthorized.WithDetail("auth", "token issuing not configured"), deps.Logger)
			return
		}

		var body IssueTokenRequest
		if err := decodeJSON(r, &body); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if body.Subject == "" || (body.Role != "operator" && body.Role != "agent") {
			HandleServiceError(w, services.ErrInvalidInput.WithDetail("role", "must be operator or agent"), deps.Logger)
			return
		}

		agentID := ""
		if body.AgentID != nil {
			parsed, err := uuid.Parse(*body.AgentID)
			if err != nil {
				HandleServiceError(w, services.ErrInvalidInput.WithDetail("agent_id", "must be a valid UUID"), deps.Logger)
				return
			}
			// The token must reference a real agent
			if _, err := deps.Agents.GetByID(r.Context(), parsed); err != nil {
				HandleServiceError(w, err, deps.Logger)
				return
			}
			agentID = parsed.String()
		}
		if body.Role == "agent" && agentID == "" {
			HandleServiceError(w, services.ErrInvalidInput.WithDetail("agent_id", "required for agent tokens"), deps.Logger)
			return
		}

		token, err := deps.TokenService.Issue(body.Subject, body.Role, agentID)
		if err != nil {
			HandleServiceError(w, services.WrapInternal("failed to issue token", err), deps.Logger)
			return
		}

		respondJSON(w, http.StatusCreated, SuccessResponse{Data: IssueTokenResponse{
			Token:     token,
			ExpiresIn: int(deps.Config.Auth.TokenTTL.Seconds()),
		}})
	}
}
