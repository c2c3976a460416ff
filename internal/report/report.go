package report

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
)

// ErrInputUnreadable marks a source document that could not be read or decoded.
var ErrInputUnreadable = errors.New("input unreadable")

// Category is one of the four statement buckets produced by extraction.
type Category string

const (
	Positive       Category = "positive"
	Negative       Category = "negative"
	ForwardLooking Category = "forward_looking"
	Risks          Category = "risks"
)

// Categories lists every category in output order.
var Categories = []Category{Positive, Negative, ForwardLooking, Risks}

// RawDocument is the text extracted from one annual report file.
type RawDocument struct {
	Identity string // Source filename stem, e.g. "TRENT_2023"
	Text     string
}

// NewRawDocument builds a RawDocument with line endings canonicalized to "\n".
func NewRawDocument(identity, text string) RawDocument {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return RawDocument{Identity: identity, Text: text}
}

// CompanyName returns the portion of the identity before the first underscore.
func (d RawDocument) CompanyName() string {
	return CompanyFromIdentity(d.Identity)
}

// NormalizedDocument is a RawDocument after artifact removal.
type NormalizedDocument struct {
	Identity    string
	CompanyName string
	Text        string
}

// Chunk is a contiguous slice of normalized text sent to the backend as one unit.
type Chunk struct {
	Index int
	Total int
	Text  string
}

// IdentityFromPath returns the file stem used as a document identity.
func IdentityFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CompanyFromIdentity returns the token preceding the first "_", or the
// whole identity when it has none.
func CompanyFromIdentity(identity string) string {
	if i := strings.Index(identity, "_"); i >= 0 {
		return identity[:i]
	}
	return identity
}

// ExtractionResult holds the statements extracted from a single chunk.
type ExtractionResult struct {
	Positive       []string `json:"positive"`
	Negative       []string `json:"negative"`
	ForwardLooking []string `json:"forward_looking"`
	Risks          []string `json:"risks"`
}

// Get returns the statements for a category.
func (r ExtractionResult) Get(c Category) []string {
	switch c {
	case Positive:
		return r.Positive
	case Negative:
		return r.Negative
	case ForwardLooking:
		return r.ForwardLooking
	case Risks:
		return r.Risks
	}
	return nil
}

// Len returns the total number of statements across categories.
func (r ExtractionResult) Len() int {
	return len(r.Positive) + len(r.Negative) + len(r.ForwardLooking) + len(r.Risks)
}

func (r ExtractionResult) MarshalJSON() ([]byte, error) {
	type plain ExtractionResult
	return json.Marshal(plain(r.withEmptyLists()))
}

func (r ExtractionResult) withEmptyLists() ExtractionResult {
	return ExtractionResult{
		Positive:       nonNil(r.Positive),
		Negative:       nonNil(r.Negative),
		ForwardLooking: nonNil(r.ForwardLooking),
		Risks:          nonNil(r.Risks),
	}
}

// MergedDocumentResult is the per-document union of chunk results for the
// model attempt that succeeded on every chunk.
type MergedDocumentResult struct {
	Company string
	ExtractionResult
}

func (m MergedDocumentResult) MarshalJSON() ([]byte, error) {
	r := m.ExtractionResult.withEmptyLists()
	return json.Marshal(struct {
		Company        string   `json:"company"`
		Positive       []string `json:"positive"`
		Negative       []string `json:"negative"`
		ForwardLooking []string `json:"forward_looking"`
		Risks          []string `json:"risks"`
	}{m.Company, r.Positive, r.Negative, r.ForwardLooking, r.Risks})
}

func (m *MergedDocumentResult) UnmarshalJSON(data []byte) error {
	var v struct {
		Company string `json:"company"`
		ExtractionResult
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.Company = v.Company
	m.ExtractionResult = v.ExtractionResult.withEmptyLists()
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
