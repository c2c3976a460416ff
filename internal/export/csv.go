package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"

	"github.com/dgallion1/finsight/internal/report"
	"github.com/dgallion1/finsight/internal/sentiment"
)

// MarshalSentimentCSV renders scored rows with a header line.
func MarshalSentimentCSV(rows []sentiment.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sentiment.Header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{
			r.Company,
			r.Statement,
			string(r.Category),
			r.Sentiment,
			strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalSentimentCSV parses a per-document sentiment table. The header
// must match sentiment.Header exactly.
func UnmarshalSentimentCSV(data []byte) ([]sentiment.Row, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv")
	}
	if !slices.Equal(records[0], sentiment.Header) {
		return nil, fmt.Errorf("unexpected header %v", records[0])
	}

	rows := make([]sentiment.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		conf, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: confidence %q: %w", i+2, rec[4], err)
		}
		rows = append(rows, sentiment.Row{
			Company:    rec[0],
			Statement:  rec[1],
			Category:   report.Category(rec[2]),
			Sentiment:  rec[3],
			Confidence: conf,
		})
	}
	return rows, nil
}
