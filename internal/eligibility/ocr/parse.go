package ocr

import (
	"regexp"
	"strings"

	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
)

var (
	// ISO and German date forms, e.g. "2026-03-31" or "31.03.2026".
	isoDateRe    = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	germanDateRe = regexp.MustCompile(`\b(\d{2}\.\d{2}\.\d{4})\b`)

	// Validity phrases that precede the expiry date on German titles.
	validUntilRe = regexp.MustCompile(`(?i)(?:gültig bis|gueltig bis|valid until|befristet bis)[:\s]*([0-9.\-]+)`)

	// Document numbers on residence titles: letter-digit mixes of 8-12 chars.
	documentNumberRe = regexp.MustCompile(`(?i)(?:dokumenten?[-\s]?nr\.?|document no\.?|nr\.)[:\s]*([A-Z0-9]{6,12})`)

	// Employer lines, e.g. "Arbeitgeber: Pflegedienst Sonnenschein GmbH".
	employerRe = regexp.MustCompile(`(?i)(?:arbeitgeber|employer)[:\s]+(.+)`)
)

// permitTypePatterns maps lowercase document phrases to permit categories.
// Order matters: more specific phrases come first.
var permitTypePatterns = []struct {
	phrase string
	permit domain.PermitType
}{
	{"blaue karte", domain.PermitTypeBlueCard},
	{"blue card", domain.PermitTypeBlueCard},
	{"fiktionsbescheinigung", domain.PermitTypeProvisionalCert},
	{"beschäftigungsduldung", domain.PermitTypeEmploymentAuthTitle},
	{"aufenthaltserlaubnis zur beschäftigung", domain.PermitTypeEmploymentAuthTitle},
	{"aufenthaltserlaubnis", domain.PermitTypeGeneralResidence},
	{"niederlassungserlaubnis", domain.PermitTypeGeneralResidence},
	{"studium", domain.PermitTypeStudent},
	{"student", domain.PermitTypeStudent},
	{"arbeitsplatzsuche", domain.PermitTypeJobSeeker},
	{"job seeker", domain.PermitTypeJobSeeker},
	{"schengen", domain.PermitTypeVisitorNoWork},
	{"besuchsvisum", domain.PermitTypeVisitorNoWork},
	{"tourist", domain.PermitTypeVisitorNoWork},
}

// ParseText maps recognized document text onto extraction guesses. The
// heuristics are keyword-based and intentionally conservative: anything the
// text does not clearly state stays empty or unclear, which downstream
// evaluation turns into a manual review rather than a wrong answer.
func ParseText(sourceFile, text string) domain.DocumentExtraction {
	ex := domain.DocumentExtraction{
		SourceFile:      sourceFile,
		RawText:         text,
		PermitTypeGuess: domain.PermitTypeUnrecognized,
	}
	if strings.TrimSpace(text) == "" {
		return ex
	}

	lower := strings.ToLower(text)

	for _, p := range permitTypePatterns {
		if strings.Contains(lower, p.phrase) {
			ex.PermitTypeGuess = p.permit
			break
		}
	}

	ex.WorkPermissionGuess = parseWorkPermission(lower)
	ex.DocumentNumberGuess = firstSubmatch(documentNumberRe, text)
	ex.EmployerGuess = parseEmployer(text)
	ex.ExpiryGuess = parseExpiryGuess(text)

	return ex
}

// parseWorkPermission reads the employment clause. German titles state this
// explicitly ("Erwerbstätigkeit gestattet" / "nicht gestattet").
func parseWorkPermission(lower string) domain.WorkPermission {
	switch {
	case strings.Contains(lower, "erwerbstätigkeit nicht gestattet"),
		strings.Contains(lower, "beschäftigung nicht gestattet"),
		strings.Contains(lower, "employment not permitted"):
		return domain.WorkPermissionNotAllowed
	case strings.Contains(lower, "nur mit genehmigung"),
		strings.Contains(lower, "beschäftigung nur gestattet"),
		strings.Contains(lower, "bis zu 20 stunden"),
		strings.Contains(lower, "120 tage"):
		return domain.WorkPermissionAllowedWithLimits
	case strings.Contains(lower, "erwerbstätigkeit gestattet"),
		strings.Contains(lower, "beschäftigung gestattet"),
		strings.Contains(lower, "erwerbstätigkeit erlaubt"),
		strings.Contains(lower, "employment permitted"):
		return domain.WorkPermissionAllowed
	default:
		return domain.WorkPermissionUnclear
	}
}

// parseExpiryGuess prefers a date following a validity phrase; failing that,
// it falls back to the latest date anywhere in the text, since issue dates
// precede expiry dates on every known title layout.
func parseExpiryGuess(text string) string {
	if m := validUntilRe.FindStringSubmatch(text); m != nil {
		candidate := strings.Trim(m[1], ".")
		if isoDateRe.MatchString(candidate) || germanDateRe.MatchString(candidate) {
			return candidate
		}
	}

	var last string
	for _, m := range isoDateRe.FindAllString(text, -1) {
		if m > last {
			last = m
		}
	}
	if last != "" {
		return last
	}

	dates := germanDateRe.FindAllString(text, -1)
	if len(dates) > 0 {
		return dates[len(dates)-1]
	}
	return ""
}

func parseEmployer(text string) string {
	m := employerRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	// The employer name runs to the end of its line.
	name := m[1]
	if i := strings.IndexAny(name, "\r\n"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

func firstSubmatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
