package models

import (
	"strings"

	"github.com/google/uuid"
)

// Action is an operation an agent may request permission for
type Action string

const (
	ActionSubmitArticle     Action = "submit_article"
	ActionEditOwnArticle    Action = "edit_own_article"
	ActionEditOthersArticle Action = "edit_others_article"
	ActionApproveArticle    Action = "approve_article"
	ActionPublishArticle    Action = "publish_article"
	ActionViewStatistics    Action = "view_statistics"
)

// KnownActions lists every action the decision engine understands, in a fixed
// order suitable for validation messages.
var KnownActions = []Action{
	ActionSubmitArticle,
	ActionEditOwnArticle,
	ActionEditOthersArticle,
	ActionApproveArticle,
	ActionPublishArticle,
	ActionViewStatistics,
}

// Valid reports whether the action is one the engine understands
func (a Action) Valid() bool {
	for _, known := range KnownActions {
		if a == known {
			return true
		}
	}
	return false
}

// ArticleDraft is a candidate article under evaluation. It is input to the
// decision engine only; persistence of accepted articles is out of scope.
type ArticleDraft struct {
	Title             string    `json:"title" validate:"required"`
	Content           string    `json:"content"`
	Category          string    `json:"category,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
	HasFeaturedImage  bool      `json:"has_featured_image"`
	SubmittingAgentID uuid.UUID `json:"submitting_agent_id"`
	TargetSiteID      uuid.UUID `json:"target_site_id"`
}

// WordCount returns the number of whitespace-separated tokens in the content
func (a *ArticleDraft) WordCount() int {
	return len(strings.Fields(a.Content))
}
