// Package publishing validates candidate articles against a site's content
// constraints. Every rule is evaluated so callers can present all problems at
// once instead of fixing them one at a time.
package publishing

import (
	"fmt"

	"github.com/agentpress/control-plane/models"
)

// Result is the outcome of a validation pass. Valid is true only when the
// violation list is empty.
type Result struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// Validate evaluates the article against the site's publishing rules. All
// checks run unconditionally; the result carries the full violation list.
func Validate(article *models.ArticleDraft, rules models.PublishingRules) Result {
	var violations []string

	if len(rules.AllowedAgents) > 0 && !contains(rules.AllowedAgents, article.SubmittingAgentID.String()) {
		violations = append(violations, fmt.Sprintf("agent %s is not in the site's agent allow-list", article.SubmittingAgentID))
	}

	if len(rules.AllowedCategories) > 0 && !contains(rules.AllowedCategories, article.Category) {
		violations = append(violations, fmt.Sprintf("category %q is not allowed on this site", article.Category))
	}

	words := article.WordCount()
	if rules.MinWordCount > 0 && words < rules.MinWordCount {
		violations = append(violations, fmt.Sprintf("word count %d is below the minimum of %d", words, rules.MinWordCount))
	}
	if rules.MaxWordCount > 0 && words > rules.MaxWordCount {
		violations = append(violations, fmt.Sprintf("word count %d exceeds the maximum of %d", words, rules.MaxWordCount))
	}

	if rules.RequireFeaturedImage && !article.HasFeaturedImage {
		violations = append(violations, "a featured image is required")
	}

	return Result{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
