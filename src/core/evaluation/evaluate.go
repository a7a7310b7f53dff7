package evaluation

import (
	"regexp"
	"strings"
)

// Case is one offline evaluation input: a query and the reference answer it
// should produce.
type Case struct {
	Query     string `json:"query"`
	Reference string `json:"reference"`
}

// CaseResult is the scored outcome of one case.
type CaseResult struct {
	Query     string  `json:"query"`
	Reference string  `json:"reference"`
	Answer    string  `json:"answer"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Report aggregates all case results of one evaluation run.
type Report struct {
	RunID         string       `json:"run_id"`
	DocumentID    int64        `json:"document_id"`
	Cases         []CaseResult `json:"cases"`
	MeanPrecision float64      `json:"mean_precision"`
	MeanRecall    float64      `json:"mean_recall"`
	MeanF1        float64      `json:"mean_f1"`
}

var reNonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Score computes token-level precision, recall and F1 between a generated
// answer and the reference, over normalized bag-of-words counts.
func Score(answer, reference string) (precision, recall, f1 float64) {
	answerTokens := normalizeTokens(answer)
	referenceTokens := normalizeTokens(reference)

	if len(answerTokens) == 0 || len(referenceTokens) == 0 {
		if len(answerTokens) == 0 && len(referenceTokens) == 0 {
			return 1, 1, 1
		}
		return 0, 0, 0
	}

	counts := make(map[string]int, len(referenceTokens))
	for _, tok := range referenceTokens {
		counts[tok]++
	}

	common := 0
	for _, tok := range answerTokens {
		if counts[tok] > 0 {
			counts[tok]--
			common++
		}
	}

	if common == 0 {
		return 0, 0, 0
	}

	precision = float64(common) / float64(len(answerTokens))
	recall = float64(common) / float64(len(referenceTokens))
	f1 = 2 * precision * recall / (precision + recall)
	return precision, recall, f1
}

// NewCaseResult scores one case.
func NewCaseResult(c Case, answer string) CaseResult {
	precision, recall, f1 := Score(answer, c.Reference)
	return CaseResult{
		Query:     c.Query,
		Reference: c.Reference,
		Answer:    answer,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
	}
}

// BuildReport aggregates case results into a run report.
func BuildReport(runID string, documentID int64, results []CaseResult) Report {
	report := Report{
		RunID:      runID,
		DocumentID: documentID,
		Cases:      results,
	}
	if len(results) == 0 {
		return report
	}

	for _, r := range results {
		report.MeanPrecision += r.Precision
		report.MeanRecall += r.Recall
		report.MeanF1 += r.F1
	}
	n := float64(len(results))
	report.MeanPrecision /= n
	report.MeanRecall /= n
	report.MeanF1 /= n
	return report
}

func normalizeTokens(text string) []string {
	lower := strings.ToLower(text)
	lower = reNonWord.ReplaceAllString(lower, " ")
	return strings.Fields(lower)
}
