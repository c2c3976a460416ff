package extract

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeResponse_PlainJSON(t *testing.T) {
	raw := `{"positive":["Strong Q4"],"negative":[],"forward_looking":["Expand to 50 stores"],"risks":["FX exposure"]}`
	r, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.Positive, []string{"Strong Q4"}) {
		t.Errorf("unexpected positive: %v", r.Positive)
	}
	if r.Negative == nil || len(r.Negative) != 0 {
		t.Errorf("expected empty non-nil negative, got %#v", r.Negative)
	}
	if len(r.ForwardLooking) != 1 || len(r.Risks) != 1 {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestDecodeResponse_CodeFence(t *testing.T) {
	raw := "```json\n{\"positive\":[\"a\"],\"negative\":[\"b\"],\"forward_looking\":[],\"risks\":[]}\n```"
	r, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Positive[0] != "a" || r.Negative[0] != "b" {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestDecodeResponse_SurroundingProse(t *testing.T) {
	raw := "Here is the JSON you asked for:\n{\"positive\":[],\"negative\":[],\"forward_looking\":[],\"risks\":[\"Debt\"]}\nThanks."
	r, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Risks) != 1 || r.Risks[0] != "Debt" {
		t.Errorf("unexpected risks: %v", r.Risks)
	}
}

func TestDecodeResponse_SchemaFailures(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"not json":      "I could not find any statements.",
		"missing key":   `{"positive":[],"negative":[],"forward_looking":[]}`,
		"extra key":     `{"positive":[],"negative":[],"forward_looking":[],"risks":[],"company":"X"}`,
		"non-string":    `{"positive":[1],"negative":[],"forward_looking":[],"risks":[]}`,
		"null category": `{"positive":null,"negative":[],"forward_looking":[],"risks":[]}`,
		"array root":    `[]`,
	}
	for name, raw := range cases {
		_, err := DecodeResponse(raw)
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		var be *BackendError
		if !errors.As(err, &be) || be.Kind != KindSchemaInvalid {
			t.Errorf("%s: expected schema_invalid BackendError, got %v", name, err)
		}
	}
}

func TestBuildChunkPrompt_EmbedsText(t *testing.T) {
	p := BuildChunkPrompt("Revenue grew 12%.")
	if len(p) <= len(ExtractionPrompt) {
		t.Fatal("expected prompt to include chunk text")
	}
	want := "Annual Report Text:\nRevenue grew 12%.\n"
	if p[len(p)-len(want):] != want {
		t.Errorf("expected prompt to end with %q, got %q", want, p[len(p)-len(want):])
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("boom")) != KindTransient {
		t.Error("expected unclassified errors to be transient")
	}
	wrapped := &ChunkError{Err: &BackendError{Kind: KindModelUnavailable}}
	if KindOf(wrapped) != KindModelUnavailable {
		t.Error("expected kind to be found through ChunkError")
	}
}
