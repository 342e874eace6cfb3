package http

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
)

var templateFuncs = template.FuncMap{
	"money":    func(m core.Money) string { return m.Display() },
	"hex":      func(c ledger.Color) string { return c.Hex() },
	"ring":     breakdownRing,
	"flowRing": flowRing,
	"when":     func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"isIncome": func(k core.Kind) bool { return k == core.Income },
	"pickerArgs": func(action string, q summaryQuery, scopes []ledger.Scope) pickerView {
		return pickerView{Action: action, Query: q, Scopes: scopes}
	},
}

// pickerView feeds the shared range picker.
type pickerView struct {
	Action string
	Query  summaryQuery
	Scopes []ledger.Scope
}

type ringSlice struct {
	color    ledger.Color
	fraction decimal.Decimal
}

// conicGradient renders slices as a CSS conic-gradient. Slices are laid out
// clockwise in the given order; an empty list gives the placeholder ring.
func conicGradient(slices []ringSlice) template.CSS {
	if len(slices) == 0 {
		return template.CSS("background: " + ledger.DefaultColor.Hex())
	}
	var b strings.Builder
	b.WriteString("background: conic-gradient(")
	from := decimal.Zero
	for i, s := range slices {
		to := from.Add(s.fraction.Shift(2))
		if i == len(slices)-1 {
			to = decimal.NewFromInt(100)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s%% %s%%", s.color.Hex(), from.StringFixed(2), to.StringFixed(2))
		from = to
	}
	b.WriteString(")")
	// Built only from palette hex values and numbers.
	return template.CSS(b.String())
}

func breakdownRing(bd ledger.Breakdown) template.CSS {
	if bd.Empty() {
		return conicGradient(nil)
	}
	slices := make([]ringSlice, 0, len(bd.Buckets))
	for _, bucket := range bd.Buckets {
		slices = append(slices, ringSlice{color: bucket.Color, fraction: bucket.Fraction})
	}
	return conicGradient(slices)
}

func flowRing(f ledger.Flow) template.CSS {
	if f.Empty() {
		return conicGradient(nil)
	}
	return conicGradient([]ringSlice{
		{color: f.Income.Color, fraction: f.Income.Fraction},
		{color: f.Expense.Color, fraction: f.Expense.Fraction},
	})
}

type dashboardView struct {
	Summary  ledger.Summary
	Query    summaryQuery
	Scopes   []ledger.Scope
	Error    string
	Recent   []core.Record
	Overflow int
}

type recordsView struct {
	Summary ledger.Summary
	Query   summaryQuery
	Error   string
}

type formView struct {
	Form       RecordForm
	Error      string
	Categories map[core.Kind][]string
	Kinds      []core.Kind
}

// recentLimit caps the dashboard list; the records page shows everything.
const recentLimit = 10

func newDashboardView(s ledger.Summary, q summaryQuery) dashboardView {
	v := dashboardView{
		Summary: s,
		Query:   q,
		Scopes:  []ledger.Scope{ledger.ScopeExpense, ledger.ScopeIncome, ledger.ScopeAll},
		Recent:  s.Records,
	}
	if len(v.Recent) > recentLimit {
		v.Overflow = len(v.Recent) - recentLimit
		v.Recent = v.Recent[:recentLimit]
	}
	return v
}

func newFormView(f RecordForm, errMsg string) formView {
	if f.Kind == "" {
		f.Kind = string(core.Expense)
	}
	return formView{
		Form:       f,
		Error:      errMsg,
		Categories: ledger.Categories,
		Kinds:      []core.Kind{core.Expense, core.Income},
	}
}
