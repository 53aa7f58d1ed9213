// Package report aggregates pipeline outcomes into a timestamped, persisted summary.
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the wall-clock format written to the report.
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultFilename is the report written into the project root after a full run.
const DefaultFilename = "test-report.json"

// Summary aggregates leaf counts across the result tree.
type Summary struct {
	TotalChecks  int     `json:"total_checks"`
	PassedChecks int     `json:"passed_checks"`
	FailedChecks int     `json:"failed_checks"`
	SuccessRate  float64 `json:"success_rate"`
}

// Report is a read-only snapshot of one run.
type Report struct {
	Timestamp   string  `json:"timestamp"`
	ProjectRoot string  `json:"project_root"`
	Results     *Tree   `json:"results"`
	Summary     Summary `json:"summary"`
}

// Generate builds a report from the current tree. The tree is copied, not retained.
func Generate(tree *Tree, projectRoot string, now time.Time) *Report {
	results := tree.Clone()
	return &Report{
		Timestamp:   now.Format(TimestampLayout),
		ProjectRoot: projectRoot,
		Results:     results,
		Summary:     Summarize(results),
	}
}

// Summarize counts every leaf of the tree one level deep.
func Summarize(tree *Tree) Summary {
	var s Summary
	for _, name := range tree.Keys() {
		outcome, _ := tree.Get(name)
		for _, passed := range outcome.Leaves() {
			s.TotalChecks++
			if passed {
				s.PassedChecks++
			} else {
				s.FailedChecks++
			}
		}
	}
	s.SuccessRate = SuccessRate(s.PassedChecks, s.TotalChecks).InexactFloat64()
	return s
}

// SuccessRate is passed/total as a percentage, or zero when total is zero.
func SuccessRate(passed, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(passed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total)))
}

// Rate returns the summary's success rate as a decimal for display.
func (s Summary) Rate() decimal.Decimal {
	return SuccessRate(s.PassedChecks, s.TotalChecks)
}
