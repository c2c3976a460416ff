package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/finsight/internal/report"
)

type fakeClassifier struct {
	calls [][]string
	fail  map[string]bool // statements that make the whole call fail
}

func (f *fakeClassifier) Classify(_ context.Context, statements []string) ([]Prediction, error) {
	f.calls = append(f.calls, statements)
	preds := make([]Prediction, len(statements))
	for i, s := range statements {
		if f.fail[s] {
			return nil, errors.New("model overloaded")
		}
		label := "neutral"
		if strings.Contains(s, "grew") {
			label = "positive"
		}
		preds[i] = Prediction{Label: label, Score: 0.9}
	}
	return preds, nil
}

func sampleDoc() report.MergedDocumentResult {
	return report.MergedDocumentResult{
		Company: "ACME",
		ExtractionResult: report.ExtractionResult{
			Positive:       []string{"Revenue grew 12%", "   ", ""},
			Negative:       []string{},
			ForwardLooking: []string{"Plans 40 new stores"},
			Risks:          []string{"Currency risk"},
		},
	}
}

func TestScore_FiltersBlankAndSkipsEmptyCategories(t *testing.T) {
	fc := &fakeClassifier{}
	rows, err := Score(context.Background(), fc, sampleDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.calls) != 3 {
		t.Fatalf("expected 3 classifier calls (negative skipped), got %d", len(fc.calls))
	}
	if !reflect.DeepEqual(fc.calls[0], []string{"Revenue grew 12%"}) {
		t.Errorf("expected blank statements filtered, got %q", fc.calls[0])
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.Company != "ACME" || first.Category != report.Positive || first.Sentiment != "positive" || first.Confidence != 0.9 {
		t.Errorf("unexpected first row: %+v", first)
	}
	if rows[1].Category != report.ForwardLooking || rows[2].Category != report.Risks {
		t.Errorf("expected rows in category order, got %+v", rows)
	}
}

func TestScore_CategoryFailureIsIsolated(t *testing.T) {
	fc := &fakeClassifier{fail: map[string]bool{"Plans 40 new stores": true}}
	rows, err := Score(context.Background(), fc, sampleDoc())
	if err == nil || !strings.Contains(err.Error(), "forward_looking") {
		t.Fatalf("expected forward_looking failure, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected the other two categories to be scored, got %d rows", len(rows))
	}
}

func TestScore_EmptyDocument(t *testing.T) {
	rows, err := Score(context.Background(), &fakeClassifier{}, report.Merge("X", nil))
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected no rows and no error, got %d rows, %v", len(rows), err)
	}
}

func TestHTTPClassifier_FlatAndBatched(t *testing.T) {
	var batches [][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer hf-key" {
			t.Errorf("expected bearer token")
		}
		var req struct {
			Inputs []string `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		batches = append(batches, req.Inputs)
		preds := make([]Prediction, len(req.Inputs))
		for i := range preds {
			preds[i] = Prediction{Label: "negative", Score: 0.7}
		}
		_ = json.NewEncoder(w).Encode(preds)
	}))
	defer server.Close()

	c := NewHTTPClassifier(HTTPConfig{URL: server.URL, APIKey: "hf-key", BatchSize: 2})
	preds, err := c.Classify(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 2 || len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Errorf("expected batches of 2 and 1, got %v", batches)
	}
	if len(preds) != 3 || preds[2].Label != "negative" {
		t.Errorf("unexpected predictions: %+v", preds)
	}
}

func TestHTTPClassifier_RankedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"neutral","score":0.1},{"label":"positive","score":0.8},{"label":"negative","score":0.1}]]`))
	}))
	defer server.Close()

	c := NewHTTPClassifier(HTTPConfig{URL: server.URL})
	preds, err := c.Classify(context.Background(), []string{"Revenue grew"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preds[0].Label != "positive" || preds[0].Score != 0.8 {
		t.Errorf("expected top-ranked label, got %+v", preds[0])
	}
}

func TestHTTPClassifier_MisalignedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"neutral","score":0.5}]`))
	}))
	defer server.Close()

	c := NewHTTPClassifier(HTTPConfig{URL: server.URL})
	if _, err := c.Classify(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error for misaligned predictions")
	}
}

func TestHTTPClassifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is loading"}`))
	}))
	defer server.Close()

	c := NewHTTPClassifier(HTTPConfig{URL: server.URL})
	_, err := c.Classify(context.Background(), []string{"a"})
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status error, got %v", err)
	}
}
