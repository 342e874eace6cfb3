package ledger

import (
	"github.com/shopspring/decimal"

	"cashbook/internal/core"
)

const (
	IncomeColor  Color = 0xFF4CAF50
	ExpenseColor Color = 0xFFF44336
)

// Segment is one side of the income-vs-expense ring.
type Segment struct {
	Amount   core.Money      `json:"amount"`
	Color    Color           `json:"color"`
	Fraction decimal.Decimal `json:"fraction"`
}

// Flow is the income-vs-expense ring drawn above the category chart.
type Flow struct {
	Income  Segment `json:"income"`
	Expense Segment `json:"expense"`
}

// Empty reports whether both sides are zero.
func (f Flow) Empty() bool {
	return !f.Income.Amount.Add(f.Expense.Amount).IsPositive()
}

// FlowSplit splits income+expense into the two ring segments.
func FlowSplit(t Totals) Flow {
	f := Flow{
		Income:  Segment{Amount: t.Income, Color: IncomeColor, Fraction: decimal.Zero},
		Expense: Segment{Amount: t.Expense, Color: ExpenseColor, Fraction: decimal.Zero},
	}
	total := t.Income.Add(t.Expense)
	if !total.IsPositive() {
		return f
	}
	f.Income.Fraction = t.Income.Div(total.Decimal)
	f.Expense.Fraction = t.Expense.Div(total.Decimal)
	return f
}
