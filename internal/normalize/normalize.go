// Package normalize turns raw extracted annual-report text into clean prose.
//
// Normalization is a fixed sequence of four passes: page-marker removal,
// header/footer line removal, broken line-join repair and whitespace
// cleanup. Every pass is pure and total.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/finsight/internal/report"
)

var (
	pageMarkerRe = regexp.MustCompile(`(?i)---\s*Page\s+\d+\s*---`)
	listNumberRe = regexp.MustCompile(`^[\d\-\x{2022}]+\.`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// bulletGlyphs start a list item when they lead a line.
var bulletGlyphs = []string{"-", "*", "•", "◦", "▪", "●", "■", "‣"}

// Normalize applies all passes in order using DefaultRules.
func Normalize(raw, company string) string {
	text := StripPageMarkers(raw)
	text = RemoveArtifactLines(text, company, DefaultRules)
	text = RepairLineJoins(text)
	return NormalizeWhitespace(text)
}

// Document normalizes a RawDocument.
func Document(doc report.RawDocument) report.NormalizedDocument {
	company := doc.CompanyName()
	return report.NormalizedDocument{
		Identity:    doc.Identity,
		CompanyName: company,
		Text:        Normalize(doc.Text, company),
	}
}

// StripPageMarkers removes "--- Page N ---" markers inserted by text extraction.
func StripPageMarkers(text string) string {
	return pageMarkerRe.ReplaceAllString(text, "")
}

// RemoveArtifactLines drops every line matched by one of rules. Blank lines
// are kept as empty lines; other lines keep their content.
func RemoveArtifactLines(text, company string, rules []Rule) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		if MatchingRule(rules, line, company) != "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// RepairLineJoins rejoins sentences broken across lines in one greedy pass.
// A line is joined with its successor when both are non-empty, the line has
// no terminal punctuation and the successor is not a list item.
func RepairLineJoins(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); {
		cur := strings.TrimSpace(lines[i])
		if cur == "" {
			out = append(out, "")
			i++
			continue
		}
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next != "" && !endsSentence(cur) && !isListItem(next) {
				out = append(out, cur+" "+next)
				i += 2
				continue
			}
		}
		out = append(out, cur)
		i++
	}
	return strings.Join(out, "\n")
}

// NormalizeWhitespace collapses space runs, caps blank runs at one blank
// line and trims the document.
func NormalizeWhitespace(text string) string {
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func endsSentence(line string) bool {
	r, _ := utf8.DecodeLastRuneInString(line)
	return strings.ContainsRune(".!?:;", r)
}

func isListItem(line string) bool {
	if listNumberRe.MatchString(line) {
		return true
	}
	for _, g := range bulletGlyphs {
		if strings.HasPrefix(line, g) {
			return true
		}
	}
	return false
}

// Stats summarizes a normalization run.
type Stats struct {
	WordsBefore int
	WordsAfter  int
}

// Reduction returns the fraction of words removed, in [0, 1].
func (s Stats) Reduction() float64 {
	if s.WordsBefore == 0 {
		return 0
	}
	return float64(s.WordsBefore-s.WordsAfter) / float64(s.WordsBefore)
}

// Measure counts words before and after normalization.
func Measure(raw, normalized string) Stats {
	return Stats{
		WordsBefore: len(strings.Fields(raw)),
		WordsAfter:  len(strings.Fields(normalized)),
	}
}
