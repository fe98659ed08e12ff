package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
)

func TestArbitrate_UnknownOpinionLeavesRulesUntouched(t *testing.T) {
	rules := domain.DecisionResult{
		Status:  domain.StatusEligible,
		Reasons: []string{"no red flags found in the provided permit facts"},
		Summary: "rules summary",
	}

	final := Arbitrate(rules, domain.UnknownOpinion())

	assert.Equal(t, domain.StatusEligible, final.Status)
	assert.Equal(t, rules.Reasons, final.Reasons)
	assert.Equal(t, "rules summary", final.Summary)
	assert.Empty(t, final.ConflictNote)
}

func TestArbitrate_AgreementPrefersAiExplanation(t *testing.T) {
	rules := domain.DecisionResult{
		Status:  domain.StatusNeedsReview,
		Reasons: []string{"it is unknown whether the permit limits working hours"},
		Summary: "rules summary",
	}
	ai := domain.AiOpinion{
		Status:      domain.StatusNeedsReview,
		Explanation: "the hours clause on page two is illegible",
		MissingInfo: []string{"a readable copy of the permit's rear side"},
	}

	final := Arbitrate(rules, ai)

	assert.Equal(t, domain.StatusNeedsReview, final.Status)
	assert.Equal(t, "the hours clause on page two is illegible", final.Summary)
	// Rules reasons first, then AI missing-info items.
	require.Len(t, final.Reasons, 2)
	assert.Equal(t, rules.Reasons[0], final.Reasons[0])
	assert.Equal(t, ai.MissingInfo[0], final.Reasons[1])
	assert.Empty(t, final.ConflictNote)
}

func TestArbitrate_AgreementWithoutExplanationKeepsRulesSummary(t *testing.T) {
	rules := domain.DecisionResult{
		Status:  domain.StatusEligible,
		Reasons: []string{"a"},
		Summary: "rules summary",
	}
	ai := domain.AiOpinion{Status: domain.StatusEligible}

	final := Arbitrate(rules, ai)

	assert.Equal(t, "rules summary", final.Summary)
}

func TestArbitrate_DisagreementEscalates(t *testing.T) {
	tests := []struct {
		name  string
		rules domain.Status
		ai    domain.Status
	}{
		{"rules eligible, ai not eligible", domain.StatusEligible, domain.StatusNotEligible},
		{"rules not eligible, ai eligible", domain.StatusNotEligible, domain.StatusEligible},
		{"rules needs review, ai eligible", domain.StatusNeedsReview, domain.StatusEligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := domain.DecisionResult{
				Status:  tt.rules,
				Reasons: []string{"rules reason"},
				Summary: "rules summary",
			}
			ai := domain.AiOpinion{
				Status:      tt.ai,
				Explanation: "ai explanation that must not win",
				MissingInfo: []string{"ai gap"},
			}

			final := Arbitrate(rules, ai)

			// Disagreement can only resolve to manual review.
			assert.Equal(t, domain.StatusNeedsReview, final.Status)
			assert.NotEmpty(t, final.ConflictNote)
			assert.Contains(t, final.ConflictNote, string(tt.rules))
			assert.Contains(t, final.ConflictNote, string(tt.ai))

			// Reason order: rules, AI missing info, conflict note last.
			require.Len(t, final.Reasons, 3)
			assert.Equal(t, "rules reason", final.Reasons[0])
			assert.Equal(t, "ai gap", final.Reasons[1])
			assert.Equal(t, final.ConflictNote, final.Reasons[2])
		})
	}
}
