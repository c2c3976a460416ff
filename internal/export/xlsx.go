package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/finsight/internal/sentiment"
)

const insightsSheet = "Insights"

// MarshalInsightsXLSX returns a workbook with one sheet holding rows under
// the same columns as the CSV output.
func MarshalInsightsXLSX(rows []sentiment.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(insightsSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range sentiment.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(insightsSheet, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(insightsSheet, cell, v)
		}
		write(1, r.Company)
		write(2, r.Statement)
		write(3, string(r.Category))
		write(4, r.Sentiment)
		write(5, r.Confidence)
	}

	_ = f.SetColWidth(insightsSheet, "A", "A", 24)
	_ = f.SetColWidth(insightsSheet, "B", "B", 80)
	_ = f.SetColWidth(insightsSheet, "C", "D", 16)
	_ = f.SetColWidth(insightsSheet, "E", "E", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
