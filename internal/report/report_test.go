package report

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCompanyFromIdentity(t *testing.T) {
	cases := map[string]string{
		"TRENT_2023":       "TRENT",
		"TATA_MOTORS_2022": "TATA",
		"INFOSYS":          "INFOSYS",
		"":                 "",
		"_leading":         "",
	}
	for identity, want := range cases {
		if got := CompanyFromIdentity(identity); got != want {
			t.Errorf("CompanyFromIdentity(%q): expected %q, got %q", identity, want, got)
		}
	}
}

func TestIdentityFromPath(t *testing.T) {
	if got := IdentityFromPath("/data/in/TRENT_2023.pdf"); got != "TRENT_2023" {
		t.Errorf("expected %q, got %q", "TRENT_2023", got)
	}
	if got := IdentityFromPath("notes"); got != "notes" {
		t.Errorf("expected %q, got %q", "notes", got)
	}
}

func TestNewRawDocument_CanonicalizesLineEndings(t *testing.T) {
	doc := NewRawDocument("X_1", "a\r\nb\rc\n")
	if doc.Text != "a\nb\nc\n" {
		t.Errorf("expected canonical newlines, got %q", doc.Text)
	}
	if doc.CompanyName() != "X" {
		t.Errorf("expected company X, got %q", doc.CompanyName())
	}
}

func TestMerge_EndToEndTwoChunks(t *testing.T) {
	results := []ExtractionResult{
		{Positive: []string{"Strong Q4"}, Negative: []string{}, ForwardLooking: []string{}, Risks: []string{"FX exposure"}},
		{Positive: []string{}, Negative: []string{"Weak margins"}, ForwardLooking: []string{}, Risks: []string{}},
	}
	m := Merge("ACME", results)

	if m.Company != "ACME" {
		t.Errorf("expected company ACME, got %q", m.Company)
	}
	if !reflect.DeepEqual(m.Positive, []string{"Strong Q4"}) {
		t.Errorf("unexpected positive: %v", m.Positive)
	}
	if !reflect.DeepEqual(m.Negative, []string{"Weak margins"}) {
		t.Errorf("unexpected negative: %v", m.Negative)
	}
	if len(m.ForwardLooking) != 0 || m.ForwardLooking == nil {
		t.Errorf("expected empty non-nil forward_looking, got %#v", m.ForwardLooking)
	}
	if !reflect.DeepEqual(m.Risks, []string{"FX exposure"}) {
		t.Errorf("unexpected risks: %v", m.Risks)
	}
}

func TestMerge_PreservesOrderAndDuplicates(t *testing.T) {
	m := Merge("C", []ExtractionResult{
		{Risks: []string{"b", "a"}},
		{Risks: []string{"a"}},
	})
	want := []string{"b", "a", "a"}
	if !reflect.DeepEqual(m.Risks, want) {
		t.Errorf("expected %v, got %v", want, m.Risks)
	}
}

func TestMerge_Associative(t *testing.T) {
	a := ExtractionResult{Positive: []string{"p1"}, Risks: []string{"r1"}}
	b := ExtractionResult{Negative: []string{"n1"}, Positive: []string{"p2"}}
	c := ExtractionResult{ForwardLooking: []string{"f1"}, Positive: []string{"p3"}}

	all := Merge("C", []ExtractionResult{a, b, c})
	stepwise := Merge("C", []ExtractionResult{a, b}).Append(c)

	if !reflect.DeepEqual(all, stepwise) {
		t.Errorf("expected associative merge, got %+v vs %+v", all, stepwise)
	}
}

func TestMerge_NoResults(t *testing.T) {
	m := Merge("C", nil)
	for _, c := range Categories {
		if m.Get(c) == nil {
			t.Errorf("expected non-nil %s", c)
		}
	}
}

func TestMergedDocumentResult_JSONAlwaysHasFourLists(t *testing.T) {
	m := MergedDocumentResult{Company: "ACME", ExtractionResult: ExtractionResult{Positive: []string{"x"}}}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "null") {
		t.Errorf("expected no null lists, got %s", s)
	}
	for _, key := range []string{`"company":"ACME"`, `"negative":[]`, `"forward_looking":[]`, `"risks":[]`} {
		if !strings.Contains(s, key) {
			t.Errorf("expected %s in %s", key, s)
		}
	}

	var back MergedDocumentResult
	if err := json.Unmarshal([]byte(`{"company":"ACME","positive":["x"]}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Company != "ACME" || back.Risks == nil || len(back.Positive) != 1 {
		t.Errorf("unexpected decoded result: %+v", back)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc..."},
		{"₹1,200 crore", 2, "..."},
		{"ab₹cd", 4, "ab..."},
		{"ab₹cd", 5, "ab₹..."},
	}
	for _, tt := range tests {
		got := Truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("Truncate(%q, %d): expected %q, got %q", tt.in, tt.n, tt.want, got)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Truncate(%q, %d): invalid UTF-8 %q", tt.in, tt.n, got)
		}
	}
}
