// Package permissions resolves the effective permission set for one agent by
// merging a role template's capability flags and allow-lists with the agent's
// partial override. Resolution is a pure function: it reads nothing but its
// arguments and is recomputed on every decision, never cached.
package permissions

import (
	"github.com/agentpress/control-plane/models"
)

// EffectivePermissions is the final, resolved capability set for one agent.
type EffectivePermissions struct {
	CanSubmit         bool
	CanEditOwn        bool
	CanEditOthers     bool
	CanApprove        bool
	CanPublish        bool
	CanViewStatistics bool
	CanReviewAgents   []string
	AllowedCategories []string
	AllowedTags       []string
}

// Resolve merges a role template's permission set with an agent's override.
//
// Boolean flags: an override value wins when explicitly present, including an
// explicit false; otherwise the template's value applies; with no template the
// system default is false for every capability except CanViewStatistics.
//
// List fields: a non-nil override list replaces the template's list wholesale.
// An empty list (nil or zero-length) means "no restriction", never "deny all".
func Resolve(template *models.PermissionSet, override *models.PermissionOverride) EffectivePermissions {
	eff := EffectivePermissions{
		// System default: everything off except statistics visibility.
		CanViewStatistics: true,
	}

	if template != nil {
		eff.CanSubmit = template.CanSubmit
		eff.CanEditOwn = template.CanEditOwn
		eff.CanEditOthers = template.CanEditOthers
		eff.CanApprove = template.CanApprove
		eff.CanPublish = template.CanPublish
		eff.CanViewStatistics = template.CanViewStatistics
		eff.CanReviewAgents = template.CanReviewAgents
		eff.AllowedCategories = template.AllowedCategories
		eff.AllowedTags = template.AllowedTags
	}

	if override == nil {
		return eff
	}

	if override.CanSubmit != nil {
		eff.CanSubmit = *override.CanSubmit
	}
	if override.CanEditOwn != nil {
		eff.CanEditOwn = *override.CanEditOwn
	}
	if override.CanEditOthers != nil {
		eff.CanEditOthers = *override.CanEditOthers
	}
	if override.CanApprove != nil {
		eff.CanApprove = *override.CanApprove
	}
	if override.CanPublish != nil {
		eff.CanPublish = *override.CanPublish
	}
	if override.CanViewStatistics != nil {
		eff.CanViewStatistics = *override.CanViewStatistics
	}
	if override.CanReviewAgents != nil {
		eff.CanReviewAgents = override.CanReviewAgents
	}
	if override.AllowedCategories != nil {
		eff.AllowedCategories = override.AllowedCategories
	}
	if override.AllowedTags != nil {
		eff.AllowedTags = override.AllowedTags
	}

	return eff
}

// Allows reports whether the resolved set grants the capability matching the
// requested action.
func (e EffectivePermissions) Allows(action models.Action) bool {
	switch action {
	case models.ActionSubmitArticle:
		return e.CanSubmit
	case models.ActionEditOwnArticle:
		return e.CanEditOwn
	case models.ActionEditOthersArticle:
		return e.CanEditOthers
	case models.ActionApproveArticle:
		return e.CanApprove
	case models.ActionPublishArticle:
		return e.CanPublish
	case models.ActionViewStatistics:
		return e.CanViewStatistics
	default:
		return false
	}
}

// CategoryAllowed reports whether the agent may use the category. An empty
// allow-list means every category is permitted.
func (e EffectivePermissions) CategoryAllowed(category string) bool {
	return listAllows(e.AllowedCategories, category)
}

// TagAllowed reports whether the agent may use the tag. An empty allow-list
// means every tag is permitted.
func (e EffectivePermissions) TagAllowed(tag string) bool {
	return listAllows(e.AllowedTags, tag)
}

// CanReview reports whether the agent may review the given agent. An empty
// reviewer list means no restriction.
func (e EffectivePermissions) CanReview(agentID string) bool {
	return listAllows(e.CanReviewAgents, agentID)
}

func listAllows(list []string, value string) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
