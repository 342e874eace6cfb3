// Package ledger turns a snapshot of records into what the dashboard shows:
// the records inside a date range, income/expense totals and a per-category
// breakdown for the chart.
//
// Every function here is pure. Inputs are never modified, nothing is cached,
// and calling a function twice with the same input returns equal results, so
// callers may recompute whenever the snapshot or the selected range changes.
package ledger

import (
	"cmp"
	"slices"

	"cashbook/internal/core"
)

// Totals are the summed amounts of a record set.
type Totals struct {
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Balance core.Money `json:"balance"`
}

// FilterByRange returns the records whose calendar date lies inside r.
// An unset range keeps every record. Input order is preserved.
func FilterByRange(records []core.Record, r core.DateRange) []core.Record {
	out := make([]core.Record, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Date()) {
			out = append(out, rec)
		}
	}
	return out
}

// SortRecent orders records most recent first. Records at the same instant
// keep insertion order (lower ID first).
func SortRecent(records []core.Record) []core.Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b core.Record) int {
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// ComputeTotals sums income and expense amounts. Records of an unknown kind
// count toward neither.
func ComputeTotals(records []core.Record) Totals {
	income, expense := core.Zero(), core.Zero()
	for _, rec := range records {
		switch rec.Kind {
		case core.Income:
			income = income.Add(rec.Amount)
		case core.Expense:
			expense = expense.Add(rec.Amount)
		}
	}
	return Totals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}
