package testutil

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
)

// FixtureFactory creates deterministic test data with unique identifiers
type FixtureFactory struct {
	seq int64
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{}
}

func (f *FixtureFactory) nextSeq() int64 {
	return atomic.AddInt64(&f.seq, 1)
}

// EmployeeID returns a fresh random employee id.
func (f *FixtureFactory) EmployeeID() string {
	return uuid.New().String()
}

// ThirdCountryFacts returns facts for a third-country national with a valid
// permit and no restrictions, the baseline happy path.
func (f *FixtureFactory) ThirdCountryFacts(opts ...func(*domain.PermitFacts)) domain.PermitFacts {
	validTo := time.Now().AddDate(1, 0, 0)
	facts := domain.PermitFacts{
		Citizenship:         domain.CitizenshipThirdCountry,
		PermitType:          domain.PermitTypeGeneralResidence,
		ValidTo:             &validTo,
		WorkPermission:      domain.WorkPermissionAllowed,
		EmployerTie:         domain.TriStateFalse,
		OccupationTie:       domain.TriStateFalse,
		HoursLimit:          domain.TriStateFalse,
		LocationRestriction: domain.TriStateFalse,
	}
	for _, opt := range opts {
		opt(&facts)
	}
	return facts
}

// EUFacts returns facts for an EU/EEA/Swiss citizen with a valid identity
// document.
func (f *FixtureFactory) EUFacts(opts ...func(*domain.PermitFacts)) domain.PermitFacts {
	validTo := time.Now().AddDate(3, 0, 0)
	facts := domain.PermitFacts{
		Citizenship: domain.CitizenshipEUEEASwiss,
		ValidTo:     &validTo,
	}
	for _, opt := range opts {
		opt(&facts)
	}
	return facts
}

// WithValidTo overrides the permit's expiry date.
func WithValidTo(t time.Time) func(*domain.PermitFacts) {
	return func(f *domain.PermitFacts) {
		f.ValidTo = &t
	}
}

// WithPermitType overrides the permit category.
func WithPermitType(pt domain.PermitType) func(*domain.PermitFacts) {
	return func(f *domain.PermitFacts) {
		f.PermitType = pt
	}
}

// WithWorkPermission overrides the employment clause.
func WithWorkPermission(wp domain.WorkPermission) func(*domain.PermitFacts) {
	return func(f *domain.PermitFacts) {
		f.WorkPermission = wp
	}
}

// Extraction returns a complete extraction guess for one scanned document.
func (f *FixtureFactory) Extraction(opts ...func(*domain.DocumentExtraction)) domain.DocumentExtraction {
	seq := f.nextSeq()
	ex := domain.DocumentExtraction{
		SourceFile:          "scan-" + uuid.New().String()[:8] + ".jpg",
		RawText:             "Aufenthaltserlaubnis\nErwerbstätigkeit gestattet",
		PermitTypeGuess:     domain.PermitTypeGeneralResidence,
		DocumentNumberGuess: uuid.New().String()[:10],
		ExpiryGuess:         time.Now().AddDate(0, int(seq%12)+1, 0).Format("2006-01-02"),
		WorkPermissionGuess: domain.WorkPermissionAllowed,
	}
	for _, opt := range opts {
		opt(&ex)
	}
	return ex
}
