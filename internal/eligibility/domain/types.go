package domain

import "time"

// TriState is a fact that can be affirmed, denied, or simply not known.
// Unknown is a first-class value and is never treated as false: an unknown
// restriction still has to be looked at by a human.
type TriState string

const (
	TriStateTrue    TriState = "true"
	TriStateFalse   TriState = "false"
	TriStateUnknown TriState = "unknown"
)

// Known reports whether the value carries an actual yes/no answer.
func (t TriState) Known() bool {
	return t == TriStateTrue || t == TriStateFalse
}

// IsTrue reports whether the value is an explicit yes.
func (t TriState) IsTrue() bool { return t == TriStateTrue }

// CitizenshipCategory distinguishes freedom-of-movement citizens from
// third-country nationals, the first fork of every eligibility decision.
type CitizenshipCategory string

const (
	CitizenshipEUEEASwiss   CitizenshipCategory = "eu_eea_swiss"
	CitizenshipThirdCountry CitizenshipCategory = "third_country"
)

// PermitType is the closed set of residence-document categories the
// evaluator understands.
type PermitType string

const (
	// PermitTypeBlueCard is the EU Blue Card for qualified professionals.
	PermitTypeBlueCard PermitType = "blue_card_eu"
	// PermitTypeEmploymentAuthTitle is a residence title issued specifically
	// for taking up employment.
	PermitTypeEmploymentAuthTitle PermitType = "employment_auth_title"
	// PermitTypeGeneralResidence is a general residence permit that may or
	// may not allow employment; the permission fields decide.
	PermitTypeGeneralResidence PermitType = "general_residence_employment"
	PermitTypeStudent          PermitType = "student"
	PermitTypeJobSeeker        PermitType = "job_seeker"
	// PermitTypeProvisionalCert is a provisional continuation certificate
	// (Fiktionsbescheinigung): the previous title has lapsed and a decision
	// on the new one is pending.
	PermitTypeProvisionalCert PermitType = "provisional_certificate"
	// PermitTypeVisitorNoWork covers visitor and tourist titles that never
	// allow employment.
	PermitTypeVisitorNoWork PermitType = "visitor_no_work"
	PermitTypeOther         PermitType = "other"
	// PermitTypeUnrecognized marks an extraction guess that could not be
	// mapped to any known category.
	PermitTypeUnrecognized PermitType = "unrecognized"
)

// WorkPermission is what the document says about taking up employment.
type WorkPermission string

const (
	WorkPermissionAllowed           WorkPermission = "allowed"
	WorkPermissionAllowedWithLimits WorkPermission = "allowed_with_limits"
	WorkPermissionNotAllowed        WorkPermission = "not_allowed"
	WorkPermissionUnclear           WorkPermission = "unclear"
)

// Status is the outcome of an eligibility decision.
type Status string

const (
	StatusEligible    Status = "eligible"
	StatusNotEligible Status = "not_eligible"
	StatusNeedsReview Status = "needs_review"
	// StatusUnknown is only valid inside an AiOpinion and means "no usable
	// opinion" - the assessor failed, timed out, or was not configured.
	StatusUnknown Status = "unknown"
)

// PermitFacts is the structured representation of a residence document's
// legally relevant attributes, as entered by HR or derived from scanned
// evidence. Tri-state fields default to unknown, not false.
type PermitFacts struct {
	Citizenship CitizenshipCategory `json:"citizenship" validate:"required,oneof=eu_eea_swiss third_country"`
	PermitType  PermitType          `json:"permit_type"`

	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`

	WorkPermission WorkPermission `json:"work_permission"`

	// Employer tie: the permit names a specific employer.
	EmployerTie    TriState `json:"employer_tie"`
	PermitEmployer string   `json:"permit_employer,omitempty"`
	HiringEmployer string   `json:"hiring_employer,omitempty"`

	// Occupation tie: the permit names a specific occupation.
	OccupationTie    TriState `json:"occupation_tie"`
	PermitOccupation string   `json:"permit_occupation,omitempty"`
	PlannedRole      string   `json:"planned_role,omitempty"`

	// Hours limit: the permit caps working hours per week.
	HoursLimit            TriState `json:"hours_limit"`
	MaxWeeklyHours        int      `json:"max_weekly_hours,omitempty"`
	ContractedWeeklyHours int      `json:"contracted_weekly_hours,omitempty"`

	// Location restriction: the permit restricts where work may happen.
	LocationRestriction TriState `json:"location_restriction"`
	RestrictionText     string   `json:"restriction_text,omitempty"`
	WorkCity            string   `json:"work_city,omitempty"`

	// Blue Card specifics, only meaningful when PermitType is blue_card_eu.
	BlueCardChangingEmployer bool `json:"blue_card_changing_employer,omitempty"`
	BlueCardMonthsHeld       int  `json:"blue_card_months_held,omitempty"`

	// Provisional certificate specifics: does the candidate continue the
	// same job with the same employer the lapsed title covered?
	ProvisionalContinuation TriState `json:"provisional_continuation,omitempty"`
}

// DecisionResult is the rules engine's verdict. Reasons are append-only in
// evaluation order; the slice is never reordered so the audit trail reads in
// the order checks ran.
type DecisionResult struct {
	Status  Status   `json:"status"`
	Reasons []string `json:"reasons"`
	Summary string   `json:"summary"`
}

// AiOpinion is an independent assessment from the AI reviewer. A status of
// unknown means the assessor did not participate; it is distinct from a
// genuine needs_review.
type AiOpinion struct {
	Status      Status   `json:"status"`
	Explanation string   `json:"explanation,omitempty"`
	MissingInfo []string `json:"missing_info,omitempty"`
}

// UnknownOpinion is the sentinel returned whenever the assessor cannot
// produce a usable opinion.
func UnknownOpinion() AiOpinion {
	return AiOpinion{Status: StatusUnknown}
}

// FinalAssessment is the reconciled outcome of the rules engine and the AI
// opinion. ConflictNote is non-empty only when the two disagreed.
type FinalAssessment struct {
	Status       Status   `json:"status"`
	Reasons      []string `json:"reasons"`
	Summary      string   `json:"summary"`
	ConflictNote string   `json:"conflict_note,omitempty"`
}

// DocumentExtraction is the best-effort read of one scanned document.
// Produced once per upload, never mutated. Guesses may be empty or
// unrecognized when recognition failed for that document.
type DocumentExtraction struct {
	SourceFile          string         `json:"source_file"`
	RawText             string         `json:"raw_text"`
	PermitTypeGuess     PermitType     `json:"permit_type_guess"`
	DocumentNumberGuess string         `json:"document_number_guess,omitempty"`
	ExpiryGuess         string         `json:"expiry_guess,omitempty"`
	EmployerGuess       string         `json:"employer_guess,omitempty"`
	WorkPermissionGuess WorkPermission `json:"work_permission_guess,omitempty"`
}

// EmptyExtraction is what callers substitute when recognition of a document
// failed outright, so that one bad scan never aborts a whole submission.
func EmptyExtraction(sourceFile string) DocumentExtraction {
	return DocumentExtraction{
		SourceFile:      sourceFile,
		PermitTypeGuess: PermitTypeUnrecognized,
	}
}

// AggregatedEvidence is the consolidated best guess across all documents of
// one submission batch. Fields are chosen independently, so they need not
// all come from the same source document.
type AggregatedEvidence struct {
	CombinedText   string         `json:"combined_text"`
	PermitType     PermitType     `json:"permit_type"`
	DocumentNumber string         `json:"document_number,omitempty"`
	Expiry         *time.Time     `json:"expiry,omitempty"`
	Employer       string         `json:"employer,omitempty"`
	WorkPermission WorkPermission `json:"work_permission"`
	DocumentCount  int            `json:"document_count"`
}

// UploadGrant authorizes one anonymous candidate to submit evidence for one
// employee record until the grant expires. Grants are stateless: once issued
// they are valid for their full lifetime, there is no server-side record to
// revoke.
type UploadGrant struct {
	IssuerID   string    `json:"issuer_id"`
	EmployeeID string    `json:"employee_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}
