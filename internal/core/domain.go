package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// Labels used by the original mobile form.
const (
	incomeLabel  = "รายรับ"
	expenseLabel = "รายจ่าย"
)

const maxTitleLength = 200

type (
	Kind string

	Date struct {
		time.Time
	}

	// DateRange is an inclusive calendar range. It only filters when both ends are set.
	DateRange struct {
		Start Date
		End   Date
	}

	Record struct {
		ID         int64     `json:"id"`
		Amount     Money     `json:"amount"`
		Title      string    `json:"title"`
		Kind       Kind      `json:"kind"`
		Category   string    `json:"category"`
		OccurredAt time.Time `json:"occurred_at"`
	}
)

var (
	ErrInvalidKind   = errors.New("invalid kind")
	ErrEmptyTitle    = errors.New("empty title")
	ErrTitleTooLong  = errors.New("title too long (max 200 characters)")
	ErrEmptyCategory = errors.New("empty category")
	ErrZeroTime      = errors.New("occurred at cannot be zero")
	ErrInvalidDate   = errors.New("invalid date")
	ErrNotFound      = errors.New("record not found")
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts the canonical names and the labels of the original app.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Income), incomeLabel:
		return Income, nil
	case string(Expense), expenseLabel:
		return Expense, nil
	}
	return "", ErrInvalidKind
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// NewDateRange builds a range from two dates; either may be zero.
func NewDateRange(start, end Date) DateRange {
	return DateRange{Start: start, End: end}
}

// IsSet reports whether the range filters at all.
func (r DateRange) IsSet() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// Contains reports whether d lies within [Start, End]. An unset range contains every date.
func (r DateRange) Contains(d Date) bool {
	if !r.IsSet() {
		return true
	}
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// Date returns the calendar date the record falls on.
func (r Record) Date() Date {
	return DateOf(r.OccurredAt)
}

// Validate checks what the entry form requires before a record may be stored.
func (r Record) Validate() error {
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(r.Title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.OccurredAt.IsZero() {
		return ErrZeroTime
	}
	return nil
}

// IsValidationError reports whether err came from record validation.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrEmptyTitle, ErrTitleTooLong, ErrInvalidKind,
		ErrEmptyCategory, ErrZeroTime, ErrInvalidDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
