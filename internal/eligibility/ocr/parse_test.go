package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
)

func TestParseText_BlueCard(t *testing.T) {
	text := `AUFENTHALTSTITEL
Blaue Karte EU
Dokumenten-Nr.: Y01X2345K
gültig bis 31.03.2027
Erwerbstätigkeit gestattet
Arbeitgeber: Klinik Nord GmbH`

	ex := ParseText("scan.jpg", text)

	assert.Equal(t, "scan.jpg", ex.SourceFile)
	assert.Equal(t, text, ex.RawText)
	assert.Equal(t, domain.PermitTypeBlueCard, ex.PermitTypeGuess)
	assert.Equal(t, "Y01X2345K", ex.DocumentNumberGuess)
	assert.Equal(t, "31.03.2027", ex.ExpiryGuess)
	assert.Equal(t, domain.WorkPermissionAllowed, ex.WorkPermissionGuess)
	assert.Equal(t, "Klinik Nord GmbH", ex.EmployerGuess)
}

func TestParseText_Fiktionsbescheinigung(t *testing.T) {
	ex := ParseText("f.jpg", "Fiktionsbescheinigung\ngültig bis 2025-12-01")

	assert.Equal(t, domain.PermitTypeProvisionalCert, ex.PermitTypeGuess)
	assert.Equal(t, "2025-12-01", ex.ExpiryGuess)
	assert.Equal(t, domain.WorkPermissionUnclear, ex.WorkPermissionGuess)
}

func TestParseText_WorkPermission(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.WorkPermission
	}{
		{"explicit prohibition", "Erwerbstätigkeit nicht gestattet", domain.WorkPermissionNotAllowed},
		{"prohibition wins over permission phrasing", "Erwerbstätigkeit nicht gestattet. Beschäftigung gestattet?", domain.WorkPermissionNotAllowed},
		{"student hour cap", "Beschäftigung bis zu 20 Stunden pro Woche gestattet", domain.WorkPermissionAllowedWithLimits},
		{"plain permission", "Erwerbstätigkeit gestattet", domain.WorkPermissionAllowed},
		{"english permission", "Employment permitted", domain.WorkPermissionAllowed},
		{"nothing stated", "Aufenthaltstitel der Bundesrepublik", domain.WorkPermissionUnclear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := ParseText("x.jpg", tt.text)
			assert.Equal(t, tt.want, ex.WorkPermissionGuess)
		})
	}
}

func TestParseText_PermitTypes(t *testing.T) {
	tests := []struct {
		text string
		want domain.PermitType
	}{
		{"Blaue Karte EU", domain.PermitTypeBlueCard},
		{"Aufenthaltserlaubnis zur Beschäftigung", domain.PermitTypeEmploymentAuthTitle},
		{"Aufenthaltserlaubnis §16b Studium", domain.PermitTypeGeneralResidence},
		{"Niederlassungserlaubnis", domain.PermitTypeGeneralResidence},
		{"Visum zur Arbeitsplatzsuche", domain.PermitTypeJobSeeker},
		{"Schengen-Visum C", domain.PermitTypeVisitorNoWork},
		{"Einkaufsliste", domain.PermitTypeUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ex := ParseText("x.jpg", tt.text)
			assert.Equal(t, tt.want, ex.PermitTypeGuess)
		})
	}
}

func TestParseText_ExpiryFallsBackToLatestDate(t *testing.T) {
	// No validity phrase: the latest date is assumed to be the expiry, since
	// issue dates precede expiry dates on every known layout.
	ex := ParseText("x.jpg", "Ausgestellt am 2023-05-01\nAblauf 2026-05-01")
	assert.Equal(t, "2026-05-01", ex.ExpiryGuess)
}

func TestParseText_EmptyText(t *testing.T) {
	ex := ParseText("blank.jpg", "   ")

	assert.Equal(t, "blank.jpg", ex.SourceFile)
	assert.Equal(t, domain.PermitTypeUnrecognized, ex.PermitTypeGuess)
	assert.Empty(t, ex.DocumentNumberGuess)
	assert.Empty(t, ex.ExpiryGuess)
	assert.Empty(t, ex.WorkPermissionGuess)
}
