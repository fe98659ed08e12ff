package policy

import (
	"fmt"

	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
)

// Arbitrate reconciles the rules engine's decision with the AI reviewer's
// opinion. Disagreement is a one-way safety valve: it always resolves to
// needs_review, never to the more permissive side.
//
// The combined reason list is rules reasons, then AI missing-information
// items, then the conflict note. The order is part of the audit trail and
// must not change.
func Arbitrate(rules domain.DecisionResult, ai domain.AiOpinion) domain.FinalAssessment {
	reasons := make([]string, 0, len(rules.Reasons)+len(ai.MissingInfo)+1)
	reasons = append(reasons, rules.Reasons...)
	reasons = append(reasons, ai.MissingInfo...)

	// No usable opinion: the rules stand alone.
	if ai.Status == domain.StatusUnknown {
		return domain.FinalAssessment{
			Status:  rules.Status,
			Reasons: reasons,
			Summary: rules.Summary,
		}
	}

	// Agreement: prefer the AI's richer explanation for the summary.
	if ai.Status == rules.Status {
		summary := rules.Summary
		if ai.Explanation != "" {
			summary = ai.Explanation
		}
		return domain.FinalAssessment{
			Status:  ai.Status,
			Reasons: reasons,
			Summary: summary,
		}
	}

	note := fmt.Sprintf("the rules engine concluded %q but the AI reviewer concluded %q - escalated for manual review", rules.Status, ai.Status)
	reasons = append(reasons, note)
	return domain.FinalAssessment{
		Status:       domain.StatusNeedsReview,
		Reasons:      reasons,
		Summary:      summaryNeedsReview,
		ConflictNote: note,
	}
}
