// Package sentiment scores extracted statements with a financial sentiment
// classifier and flattens them into tabular rows.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/finsight/internal/report"
)

// Prediction is a classifier verdict for one statement.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier labels statements. The result is aligned with the input by position.
type Classifier interface {
	Classify(ctx context.Context, statements []string) ([]Prediction, error)
}

// Row is one scored statement.
type Row struct {
	Company    string
	Statement  string
	Category   report.Category
	Sentiment  string
	Confidence float64
}

// Header lists the column names of a sentiment table.
var Header = []string{"company", "statement", "category", "sentiment", "confidence"}

// Score classifies every non-blank statement of doc, category by category.
// Empty categories are skipped. A classifier failure loses only that
// category; the returned error joins all category failures.
func Score(ctx context.Context, c Classifier, doc report.MergedDocumentResult) ([]Row, error) {
	var rows []Row
	var errs []error

	for _, category := range report.Categories {
		statements := nonBlank(doc.Get(category))
		if len(statements) == 0 {
			continue
		}

		preds, err := c.Classify(ctx, statements)
		if err == nil && len(preds) != len(statements) {
			err = fmt.Errorf("classifier returned %d predictions for %d statements", len(preds), len(statements))
		}
		if err != nil {
			if ctx.Err() != nil {
				return rows, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("category %s: %w", category, err))
			continue
		}

		for i, s := range statements {
			rows = append(rows, Row{
				Company:    doc.Company,
				Statement:  s,
				Category:   category,
				Sentiment:  preds[i].Label,
				Confidence: preds[i].Score,
			})
		}
	}
	return rows, errors.Join(errs...)
}

func nonBlank(statements []string) []string {
	out := make([]string, 0, len(statements))
	for _, s := range statements {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
