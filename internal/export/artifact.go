// Package export reads and writes the pipeline's persisted artifacts and
// builds the aggregate insight tables.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/finsight/internal/report"
)

// Artifact storage layout.
const (
	CleanedPrefix   = "cleaned/"
	LLMPrefix       = "llm/"
	SentimentPrefix = "sentiment/"

	AggregateCSV  = "unified_financial_insights.csv"
	AggregateXLSX = "unified_financial_insights.xlsx"
)

func CleanedKey(identity string) string   { return CleanedPrefix + identity + ".txt" }
func LLMKey(identity string) string       { return LLMPrefix + identity + ".json" }
func SentimentKey(identity string) string { return SentimentPrefix + identity + ".csv" }

// IdentityFromLLMKey returns the document identity for an llm/ key, or ""
// when key is not an extraction artifact.
func IdentityFromLLMKey(key string) string {
	if !strings.HasPrefix(key, LLMPrefix) || !strings.HasSuffix(key, ".json") {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(key, LLMPrefix), ".json")
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// Artifact is the persisted extraction output for one document.
type Artifact struct {
	Document string
	Model    string
	Result   report.MergedDocumentResult
}

type artifactJSON struct {
	Document       string   `json:"document"`
	Model          string   `json:"model,omitempty"`
	Company        string   `json:"company"`
	Positive       []string `json:"positive"`
	Negative       []string `json:"negative"`
	ForwardLooking []string `json:"forward_looking"`
	Risks          []string `json:"risks"`
}

// MarshalArtifact encodes a as indented JSON. Category lists are always
// arrays, never null.
func MarshalArtifact(a Artifact) ([]byte, error) {
	r := report.Merge(a.Result.Company, []report.ExtractionResult{a.Result.ExtractionResult})
	data, err := json.MarshalIndent(artifactJSON{
		Document:       a.Document,
		Model:          a.Model,
		Company:        r.Company,
		Positive:       r.Positive,
		Negative:       r.Negative,
		ForwardLooking: r.ForwardLooking,
		Risks:          r.Risks,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return data, nil
}

// UnmarshalArtifact decodes a stored extraction artifact. Older files that
// carry only the merged result decode with empty provenance fields.
func UnmarshalArtifact(data []byte) (Artifact, error) {
	var v artifactJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return Artifact{}, fmt.Errorf("decode artifact: %w", err)
	}
	r := report.Merge(v.Company, []report.ExtractionResult{{
		Positive:       v.Positive,
		Negative:       v.Negative,
		ForwardLooking: v.ForwardLooking,
		Risks:          v.Risks,
	}})
	return Artifact{Document: v.Document, Model: v.Model, Result: r}, nil
}
