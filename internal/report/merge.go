package report

// Merge concatenates chunk results per category in the order given.
// Duplicates are kept and nothing is reordered or truncated.
func Merge(company string, results []ExtractionResult) MergedDocumentResult {
	m := MergedDocumentResult{
		Company: company,
		ExtractionResult: ExtractionResult{
			Positive:       []string{},
			Negative:       []string{},
			ForwardLooking: []string{},
			Risks:          []string{},
		},
	}
	for _, r := range results {
		m = m.Append(r)
	}
	return m
}

// Append returns m with r's statements appended to each category.
func (m MergedDocumentResult) Append(r ExtractionResult) MergedDocumentResult {
	out := MergedDocumentResult{Company: m.Company}
	out.Positive = concat(m.Positive, r.Positive)
	out.Negative = concat(m.Negative, r.Negative)
	out.ForwardLooking = concat(m.ForwardLooking, r.ForwardLooking)
	out.Risks = concat(m.Risks, r.Risks)
	return out
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
