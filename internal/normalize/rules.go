package normalize

import (
	"regexp"
	"strings"
)

// Rule identifies one kind of header/footer line. Match receives the trimmed
// line and the company name.
type Rule struct {
	Name  string
	Match func(line, company string) bool
}

var (
	annualReportRe     = regexp.MustCompile(`(?i)annual\s+report`)
	yearRe             = regexp.MustCompile(`\d{4}`)
	pipeYearReportRe   = regexp.MustCompile(`(?i)^.*\|\s*\d{4}\s+annual\s+report.*$`)
	reportYearRe       = regexp.MustCompile(`(?i)^.*annual\s+report\s+\d{4}.*$`)
	sectionPageRe      = regexp.MustCompile(`(?i)^.*\|\s*page\s*\d+.*$`)
	pageNumberRe       = regexp.MustCompile(`(?i)^\d{1,4}\s*(yf)?\s*$`)
	yfYearRe           = regexp.MustCompile(`(?i)^yf\s*\d{4}\s*$`)
	pageLabelRe        = regexp.MustCompile(`(?i)^page\s+\d+\s*$`)
	companyHeaderSepRe = regexp.MustCompile(`^\s*\|`)
)

// DefaultRules is the ordered list of artifact predicates applied by
// RemoveArtifactLines.
var DefaultRules = []Rule{
	{Name: "company-annual-report", Match: matchCompanyHeader},
	{Name: "annual-report-year", Match: func(line, _ string) bool {
		return pipeYearReportRe.MatchString(line) || reportYearRe.MatchString(line)
	}},
	{Name: "section-page", Match: func(line, _ string) bool { return sectionPageRe.MatchString(line) }},
	{Name: "page-number", Match: func(line, _ string) bool { return pageNumberRe.MatchString(line) }},
	{Name: "yf-year", Match: func(line, _ string) bool { return yfYearRe.MatchString(line) }},
	{Name: "page-label", Match: func(line, _ string) bool { return pageLabelRe.MatchString(line) }},
	{Name: "company-name", Match: func(line, company string) bool {
		return company != "" && strings.EqualFold(line, company)
	}},
}

// matchCompanyHeader matches "<Company> | ... Annual Report ..." lines that
// carry a year.
func matchCompanyHeader(line, company string) bool {
	if company == "" {
		return false
	}
	lower, prefix := strings.ToLower(line), strings.ToLower(company)
	if !strings.HasPrefix(lower, prefix) {
		return false
	}
	rest := lower[len(prefix):]
	return companyHeaderSepRe.MatchString(rest) &&
		annualReportRe.MatchString(rest) &&
		yearRe.MatchString(rest)
}

// MatchingRule returns the name of the first rule matching the trimmed line,
// or "" when the line is content.
func MatchingRule(rules []Rule, line, company string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	for _, r := range rules {
		if r.Match(trimmed, company) {
			return r.Name
		}
	}
	return ""
}
