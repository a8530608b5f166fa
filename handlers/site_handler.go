package handlers

import (
	"net/http"
	"time"

	"github.com/agentpress/control-plane/app"
	"github.com/agentpress/control-plane/models"
	"github.com/agentpress/control-plane/services"
	"github.com/agentpress/control-plane/utils"
)

// SiteRequest is the request body for site create/update
type SiteRequest struct {
	Name            string                 `json:"name" validate:"required,min=1,max=255"`
	URL             string                 `json:"url" validate:"required,url"`
	PublishingRules models.PublishingRules `json:"publishing_rules"`
	RateLimit       models.SiteRateLimit   `json:"rate_limit"`
	Status          string                 `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// CreateSiteHandler handles POST /api/v1/sites
func CreateSiteHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body SiteRequest
		if err := decodeJSON(r, &body); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if err := utils.ValidateStruct(&body); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}
		if err := validatePublishingRules(&body.PublishingRules); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		site := models.NewSite(body.Name, body.URL, body.PublishingRules)
		site.RateLimit = body.RateLimit
		if body.Status != "" {
			site.Status = models.SiteStatus(body.Status)
		}

		if err := deps.Sites.Create(r.Context(), site); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		auditMutation(deps, models.AuditActionSiteCreated, "site", site.ID, r)

		respondJSON(w, http.StatusCreated, SuccessResponse{Data: site})
	}
}

// GetSiteHandler handles GET /api/v1/sites/{id}
func GetSiteHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		site, err := deps.Sites.GetByID(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: site})
	}
}

// ListSitesHandler handles GET /api/v1/sites
func ListSitesHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pagination(r)

		sites, err := deps.Sites.List(r.Context(), limit, offset)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: sites})
	}
}

// UpdateSiteHandler handles PUT /api/v1/sites/{id}
func UpdateSiteHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		var body SiteRequest
		if err := decodeJSON(r, &body); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		if err := utils.ValidateStruct(&body); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}
		if err := validatePublishingRules(&body.PublishingRules); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		site, err := deps.Sites.GetByID(r.Context(), id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		site.Name = body.Name
		site.URL = body.URL
		site.PublishingRules = body.PublishingRules
		site.RateLimit = body.RateLimit
		if body.Status != "" {
			site.Status = models.SiteStatus(body.Status)
		}
		site.UpdatedAt = time.Now()

		if err := deps.Sites.Update(r.Context(), site); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		auditMutation(deps, models.AuditActionSiteUpdated, "site", site.ID, r)

		respondJSON(w, http.StatusOK, SuccessResponse{Data: site})
	}
}

// DeleteSiteHandler handles DELETE /api/v1/sites/{id}
func DeleteSiteHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if err := deps.Sites.Delete(r.Context(), id); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Data: map[string]string{"status": "deleted"}})
	}
}

// validatePublishingRules enforces word-count bound consistency
func validatePublishingRules(rules *models.PublishingRules) error {
	if rules.MaxWordCount > 0 && rules.MaxWordCount < rules.MinWordCount {
		return services.ErrInvalidWordBounds.
			WithDetail("min_word_count", rules.MinWordCount).
			WithDetail("max_word_count", rules.MaxWordCount)
	}
	return nil
}
