package ledger

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"cashbook/internal/core"
)

// Scope selects which kinds of records feed a breakdown.
type Scope string

const (
	ScopeExpense Scope = "expense"
	ScopeIncome  Scope = "income"
	ScopeAll     Scope = "all"
)

var ErrInvalidScope = errors.New("invalid scope")

// ParseScope reads a scope from a query value. Blank means ScopeExpense.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeExpense:
		return ScopeExpense, nil
	case ScopeIncome:
		return ScopeIncome, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", ErrInvalidScope
}

// Includes reports whether records of kind k belong to the scope.
func (s Scope) Includes(k core.Kind) bool {
	switch s {
	case ScopeExpense:
		return k == core.Expense
	case ScopeIncome:
		return k == core.Income
	case ScopeAll:
		return k.Valid()
	}
	return false
}

// Bucket is one chart segment.
type Bucket struct {
	Category string          `json:"category"`
	Amount   core.Money      `json:"amount"`
	Color    Color           `json:"color"`
	Fraction decimal.Decimal `json:"fraction"`
}

// Percent returns the fraction as a percentage rounded to one decimal.
func (b Bucket) Percent() string {
	return b.Fraction.Shift(2).StringFixed(1)
}

// Breakdown is the category chart for one scope.
type Breakdown struct {
	Scope   Scope      `json:"scope"`
	Total   core.Money `json:"total"`
	Buckets []Bucket   `json:"buckets"`
}

// Empty reports whether there is nothing to draw. Renderers show a
// placeholder ring instead.
func (b Breakdown) Empty() bool {
	return !b.Total.IsPositive()
}

// MarshalJSON writes an empty breakdown's buckets as [] rather than null.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	type plain Breakdown
	if b.Buckets == nil {
		b.Buckets = []Bucket{}
	}
	return json.Marshal(plain(b))
}

// BuildCategoryBreakdown groups the in-scope records by category.
//
// Buckets appear in the order their category is first met in records, so
// chart segments stay in place between recomputations. When the scope total
// is zero the breakdown is empty and carries no buckets.
func BuildCategoryBreakdown(records []core.Record, scope Scope) Breakdown {
	out := Breakdown{Scope: scope, Total: core.Zero()}

	var order []string
	sums := make(map[string]core.Money)
	for _, rec := range records {
		if !scope.Includes(rec.Kind) {
			continue
		}
		sum, seen := sums[rec.Category]
		if !seen {
			order = append(order, rec.Category)
			sum = core.Zero()
		}
		sums[rec.Category] = sum.Add(rec.Amount)
		out.Total = out.Total.Add(rec.Amount)
	}

	if out.Empty() {
		return out
	}

	out.Buckets = make([]Bucket, 0, len(order))
	for _, category := range order {
		amount := sums[category]
		out.Buckets = append(out.Buckets, Bucket{
			Category: category,
			Amount:   amount,
			Color:    ColorFor(category),
			Fraction: amount.Div(out.Total.Decimal),
		})
	}
	return out
}
