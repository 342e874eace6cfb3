package ledger

import "cashbook/internal/core"

// Summary is everything the dashboard renders for one range and scope.
type Summary struct {
	Range     core.DateRange `json:"-"`
	Start     string         `json:"start,omitempty"`
	End       string         `json:"end,omitempty"`
	Records   []core.Record  `json:"records"`
	Totals    Totals         `json:"totals"`
	Breakdown Breakdown      `json:"breakdown"`
	Flow      Flow           `json:"flow"`
}

// Summarize filters the snapshot to r and derives totals, the breakdown for
// scope and the income/expense ring from the filtered records. Income is
// filtered by the same range as expenses.
func Summarize(records []core.Record, r core.DateRange, scope Scope) Summary {
	filtered := FilterByRange(records, r)
	totals := ComputeTotals(filtered)
	s := Summary{
		Range:     r,
		Records:   SortRecent(filtered),
		Totals:    totals,
		Breakdown: BuildCategoryBreakdown(filtered, scope),
		Flow:      FlowSplit(totals),
	}
	if r.IsSet() {
		s.Start, s.End = r.Start.String(), r.End.String()
	}
	return s
}
