package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dgallion1/finsight/internal/report"
)

const resultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["positive", "negative", "forward_looking", "risks"],
  "additionalProperties": false,
  "properties": {
    "positive":        {"type": "array", "items": {"type": "string"}},
    "negative":        {"type": "array", "items": {"type": "string"}},
    "forward_looking": {"type": "array", "items": {"type": "string"}},
    "risks":           {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("result.json", strings.NewReader(resultSchema)); err != nil {
			schemaErr = fmt.Errorf("load result schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("result.json")
	})
	return schema, schemaErr
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// extractObject returns the outermost {...} span of s, or "" if there is none.
func extractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

// DecodeResponse parses a backend completion into an ExtractionResult.
// Code fences and surrounding prose are tolerated; anything that does not
// validate against the result schema is a KindSchemaInvalid BackendError.
func DecodeResponse(raw string) (report.ExtractionResult, error) {
	text := stripCodeBlock(raw)
	if text == "" {
		return report.ExtractionResult{}, schemaInvalid("empty response", nil)
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		obj := extractObject(text)
		if obj == "" || json.Unmarshal([]byte(obj), &doc) != nil {
			return report.ExtractionResult{}, schemaInvalid(fmt.Sprintf("parse json: %v (raw: %s)", err, report.Truncate(text, 200)), err)
		}
		text = obj
	}

	s, err := compiledSchema()
	if err != nil {
		return report.ExtractionResult{}, err
	}
	if err := s.Validate(doc); err != nil {
		return report.ExtractionResult{}, schemaInvalid("response does not match schema", err)
	}

	var result report.ExtractionResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return report.ExtractionResult{}, schemaInvalid("decode result", err)
	}
	return report.Merge("", []report.ExtractionResult{result}).ExtractionResult, nil
}

func schemaInvalid(msg string, err error) *BackendError {
	return &BackendError{Kind: KindSchemaInvalid, Message: msg, Err: err}
}
