// Package policy contains the deterministic right-to-work rules engine and
// the guardrail that reconciles it with the AI reviewer's opinion.
//
// Evaluation is a total function over permit facts: every input maps to a
// decision, business outcomes are never errors. Hard stops decide
// immediately; everything after them can only escalate the working status
// from eligible to needs_review, never back down.
package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
)

// Evaluator turns structured permit facts into a decision. It holds no
// mutable state and is safe for concurrent use; the clock is injectable so
// date comparisons are deterministic in tests.
type Evaluator struct {
	now func() time.Time
}

// NewEvaluator creates an evaluator using the wall clock.
func NewEvaluator() *Evaluator {
	return &Evaluator{now: time.Now}
}

// NewEvaluatorAt creates an evaluator with a fixed clock.
func NewEvaluatorAt(now func() time.Time) *Evaluator {
	return &Evaluator{now: now}
}

const (
	summaryEligible    = "No objections found - the candidate may be employed on the basis of the provided documents."
	summaryNeedsReview = "Manual review required - one or more permit facts need human attention before a hiring decision."
	summaryNotEligible = "The candidate may not be employed on the basis of the provided documents."
)

// Evaluate applies the hard stops in order, then the escalate-only checks.
func (e *Evaluator) Evaluate(f domain.PermitFacts) domain.DecisionResult {
	today := dateOnly(e.now())

	// Hard stop 1: freedom of movement. EU/EEA/Swiss citizens are eligible
	// without a permit; an expired identity document still needs a fresh one.
	if f.Citizenship == domain.CitizenshipEUEEASwiss {
		if windowEnded(f.ValidTo, today) {
			return domain.DecisionResult{
				Status:  domain.StatusNeedsReview,
				Reasons: []string{"identity document has expired - request an updated document"},
				Summary: summaryNeedsReview,
			}
		}
		return domain.DecisionResult{
			Status:  domain.StatusEligible,
			Reasons: []string{"EU/EEA/Swiss citizenship - freedom of movement applies, no work permit required"},
			Summary: summaryEligible,
		}
	}

	// Hard stop 2: an expired third-country permit grants nothing.
	if windowEnded(f.ValidTo, today) {
		return notEligible(fmt.Sprintf("residence permit expired on %s", f.ValidTo.Format("2006-01-02")))
	}

	// Hard stop 3: visitor and tourist titles never allow employment.
	if f.PermitType == domain.PermitTypeVisitorNoWork {
		return notEligible("visitor title - employment is not permitted under this document category")
	}

	// Hard stop 4: the document explicitly forbids employment.
	if f.WorkPermission == domain.WorkPermissionNotAllowed {
		return notEligible("the permit explicitly states that employment is not allowed")
	}

	// From here on the status only ever escalates toward needs_review.
	needsReview := false
	var reasons []string
	escalate := func(reason string) {
		needsReview = true
		reasons = append(reasons, reason)
	}

	if f.WorkPermission == domain.WorkPermissionUnclear {
		escalate("the permit's employment permission could not be determined")
	}

	switch {
	case !f.EmployerTie.Known():
		escalate("it is unknown whether the permit is tied to a specific employer")
	case f.EmployerTie.IsTrue() && f.PermitEmployer != "":
		if !namesOverlap(f.PermitEmployer, f.HiringEmployer) {
			escalate(fmt.Sprintf("the permit is tied to employer %q, which does not match the hiring employer %q", f.PermitEmployer, f.HiringEmployer))
		}
	}

	switch {
	case !f.OccupationTie.Known():
		escalate("it is unknown whether the permit is tied to a specific occupation")
	case f.OccupationTie.IsTrue() && f.PermitOccupation != "":
		if !namesOverlap(f.PermitOccupation, f.PlannedRole) {
			escalate(fmt.Sprintf("the permit is tied to occupation %q, which does not match the planned role %q", f.PermitOccupation, f.PlannedRole))
		}
	}

	switch {
	case !f.HoursLimit.Known():
		escalate("it is unknown whether the permit limits working hours")
	case f.HoursLimit.IsTrue() && f.MaxWeeklyHours > 0:
		if f.ContractedWeeklyHours > f.MaxWeeklyHours {
			escalate(fmt.Sprintf("contracted hours (%d/week) exceed the permit's limit of %d/week", f.ContractedWeeklyHours, f.MaxWeeklyHours))
		}
	}

	switch {
	case !f.LocationRestriction.Known():
		escalate("it is unknown whether the permit restricts the place of work")
	case f.LocationRestriction.IsTrue() && f.RestrictionText != "":
		if !containsFold(f.RestrictionText, f.WorkCity) {
			escalate(fmt.Sprintf("the permit's location restriction (%q) does not mention the planned work city %q", f.RestrictionText, f.WorkCity))
		}
	}

	if f.PermitType == domain.PermitTypeBlueCard {
		switch {
		case f.BlueCardChangingEmployer && f.BlueCardMonthsHeld < 12:
			escalate(fmt.Sprintf("EU Blue Card held for %d months with an employer change - authority notification is typically required within the first 12 months", f.BlueCardMonthsHeld))
		case f.BlueCardChangingEmployer:
			reasons = append(reasons, "EU Blue Card held for 12+ months - employer change no longer requires authority approval")
		default:
			reasons = append(reasons, "EU Blue Card with unchanged employer - no additional approval required")
		}
	}

	// A provisional continuation certificate always needs a human look: the
	// underlying title has lapsed and the new decision is pending.
	if f.PermitType == domain.PermitTypeProvisionalCert {
		switch f.ProvisionalContinuation {
		case domain.TriStateTrue:
			escalate("provisional continuation certificate for the same job and employer - employment may usually continue, verify with the issuing authority")
		case domain.TriStateFalse:
			escalate("provisional continuation certificate with a change of job or employer - new employment generally requires authority approval")
		default:
			escalate("provisional continuation certificate with unknown continuation status - verify with the issuing authority")
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "no red flags found in the provided permit facts")
	}

	if needsReview {
		return domain.DecisionResult{
			Status:  domain.StatusNeedsReview,
			Reasons: reasons,
			Summary: summaryNeedsReview,
		}
	}
	return domain.DecisionResult{
		Status:  domain.StatusEligible,
		Reasons: reasons,
		Summary: summaryEligible,
	}
}

func notEligible(reason string) domain.DecisionResult {
	return domain.DecisionResult{
		Status:  domain.StatusNotEligible,
		Reasons: []string{reason},
		Summary: summaryNotEligible,
	}
}

// windowEnded reports whether the validity window ended before today,
// compared at day granularity. A missing end date means the window is open.
func windowEnded(validTo *time.Time, today time.Time) bool {
	if validTo == nil {
		return false
	}
	return today.After(dateOnly(*validTo))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// namesOverlap implements the deliberately coarse employer/occupation match:
// case-insensitive substring containment in either direction. No
// normalization of legal suffixes, diacritics, or abbreviations - changing
// this would change audit outcomes.
func namesOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// containsFold is a case-insensitive substring check.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
