// Package evidence merges the per-document extraction guesses of one
// submission batch into a single consolidated record.
//
// Aggregation is a streaming left-to-right reduce over the extractions in
// upload order, with an independent winner per field - the chosen document
// number and the chosen employer may well come from different scans.
package evidence

import (
	"fmt"
	"strings"
	"time"

	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
	"github.com/talentflow/talentflow-backend/pkg/errors"
)

// expiryLayouts are the date formats accepted for expiry guesses. Anything
// that does not parse as a real calendar date is ignored.
var expiryLayouts = []string{"2006-01-02", "02.01.2006"}

// Aggregate combines the extractions of one submission batch. The input must
// be non-empty and ordered by upload order; order determines which guess
// wins a per-field tie.
func Aggregate(extractions []domain.DocumentExtraction) (domain.AggregatedEvidence, error) {
	if len(extractions) == 0 {
		return domain.AggregatedEvidence{}, errors.BadRequest("at least one document extraction is required")
	}

	agg := domain.AggregatedEvidence{
		PermitType:     domain.PermitTypeUnrecognized,
		WorkPermission: domain.WorkPermissionUnclear,
		DocumentCount:  len(extractions),
	}

	var combined strings.Builder
	for _, ex := range extractions {
		if combined.Len() > 0 {
			combined.WriteString("\n\n")
		}
		combined.WriteString(fmt.Sprintf("--- %s ---\n", ex.SourceFile))
		combined.WriteString(ex.RawText)

		if agg.PermitType == domain.PermitTypeUnrecognized &&
			ex.PermitTypeGuess != "" && ex.PermitTypeGuess != domain.PermitTypeUnrecognized {
			agg.PermitType = ex.PermitTypeGuess
		}
		if agg.DocumentNumber == "" && ex.DocumentNumberGuess != "" {
			agg.DocumentNumber = ex.DocumentNumberGuess
		}
		// The earliest valid expiry wins, not the first seen: when several
		// documents disagree, the worst-case document governs.
		if expiry, ok := parseExpiry(ex.ExpiryGuess); ok {
			if agg.Expiry == nil || expiry.Before(*agg.Expiry) {
				agg.Expiry = &expiry
			}
		}
		if agg.Employer == "" && ex.EmployerGuess != "" {
			agg.Employer = ex.EmployerGuess
		}
		if agg.WorkPermission == domain.WorkPermissionUnclear &&
			ex.WorkPermissionGuess != "" && ex.WorkPermissionGuess != domain.WorkPermissionUnclear {
			agg.WorkPermission = ex.WorkPermissionGuess
		}
	}
	agg.CombinedText = combined.String()

	return agg, nil
}

// parseExpiry parses a guessed expiry date, rejecting strings that are not
// real calendar dates (e.g. "2025-02-30").
func parseExpiry(guess string) (time.Time, bool) {
	guess = strings.TrimSpace(guess)
	if guess == "" {
		return time.Time{}, false
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, guess); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToFacts derives permit facts from aggregated evidence for the anonymous
// submission flow, where no HR user has entered structured data yet.
// Everything the documents do not answer stays unknown or unclear, which the
// evaluator routes to manual review rather than silently assuming.
func ToFacts(agg domain.AggregatedEvidence, hiringEmployer string) domain.PermitFacts {
	return domain.PermitFacts{
		Citizenship:         domain.CitizenshipThirdCountry,
		PermitType:          agg.PermitType,
		ValidTo:             agg.Expiry,
		WorkPermission:      agg.WorkPermission,
		EmployerTie:         domain.TriStateUnknown,
		PermitEmployer:      agg.Employer,
		HiringEmployer:      hiringEmployer,
		OccupationTie:       domain.TriStateUnknown,
		HoursLimit:          domain.TriStateUnknown,
		LocationRestriction: domain.TriStateUnknown,
	}
}
