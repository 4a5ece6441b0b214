// Package period resolves period selections (current month, last 6 months,
// a custom month, ...) into concrete inclusive date ranges.
//
// Resolution is a pure function of the kind, a reference date and, for
// custom months, an explicit year-month. Each kind has its own range
// strategy registered in rangeStrategies.
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lexledger/internal/core"
)

const (
	CurrentMonth Kind = "current_month"
	LastMonth    Kind = "last_month"
	Last3Months  Kind = "last_3_months"
	Last6Months  Kind = "last_6_months"
	CurrentYear  Kind = "current_year"
	CustomMonth  Kind = "custom_month"
	All          Kind = "all"
)

const (
	Previous Direction = -1
	Next     Direction = 1
)

// TrailingMonths is the window used for monthly series when a selection is unbounded.
const TrailingMonths = 6

var (
	ErrUnknownKind      = errors.New("unknown period kind")
	ErrNotNavigable     = errors.New("period kind does not support month navigation")
	ErrInvalidYearMonth = errors.New("invalid year-month")
	ErrMissingYearMonth = errors.New("custom_month requires a year-month")
	ErrMissingReference = errors.New("missing reference date")
	ErrInvalidDirection = errors.New("invalid navigation direction")
)

type (
	Kind      string
	Direction int

	// YearMonth names a calendar month.
	YearMonth struct {
		Year  int
		Month time.Month
	}

	// Selection is a resolved period. Start and End are inclusive and are
	// either both set or both zero (unbounded).
	Selection struct {
		Kind      Kind      `json:"kind"`
		Start     core.Date `json:"start"`
		End       core.Date `json:"end"`
		Reference core.Date `json:"reference"`
		YearMonth YearMonth `json:"year_month"`
	}
)

// Kinds lists every supported kind in menu order.
func Kinds() []Kind {
	return []Kind{CurrentMonth, LastMonth, Last3Months, Last6Months, CurrentYear, CustomMonth, All}
}

// ParseKind validates a kind coming from configuration or the command line.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	if _, ok := rangeStrategies[k]; ok || k == CustomMonth {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	return YearMonth{Year: y, Month: time.Month(m)}, nil
}

// YearMonthOf returns the month containing d.
func YearMonthOf(d core.Date) YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// First returns the first day of the month.
func (ym YearMonth) First() core.Date {
	return core.NewDate(ym.Year, int(ym.Month), 1)
}

// Last returns the last day of the month.
func (ym YearMonth) Last() core.Date {
	return ym.First().EndOfMonth()
}

// Add moves n months forward (negative n moves back).
func (ym YearMonth) Add(n int) YearMonth {
	return YearMonthOf(ym.First().AddMonths(n))
}

// After reports whether ym is a later month than other.
func (ym YearMonth) After(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year > other.Year
	}
	return ym.Month > other.Month
}

func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

func (ym *YearMonth) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*ym = YearMonth{}
		return nil
	}
	parsed, err := ParseYearMonth(string(b))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// Bounded reports whether the selection restricts dates at all.
func (s Selection) Bounded() bool {
	return !s.Start.IsZero() && !s.End.IsZero()
}

// Contains applies the period filter rule: inclusive on both ends, and an
// unbounded selection matches every record. Undated records only match an
// unbounded selection.
func (s Selection) Contains(d core.Date) bool {
	if !s.Bounded() {
		return true
	}
	if d.IsZero() {
		return false
	}
	return !d.Before(s.Start) && !d.After(s.End)
}

// Months lists the calendar months the selection spans, oldest first. An
// unbounded selection yields the trailing TrailingMonths months ending at now.
func (s Selection) Months(now core.Date) []YearMonth {
	if !s.Bounded() {
		last := YearMonthOf(now)
		return monthsBetween(last.Add(-(TrailingMonths - 1)), last)
	}
	return monthsBetween(YearMonthOf(s.Start), YearMonthOf(s.End))
}

func monthsBetween(from, to YearMonth) []YearMonth {
	var out []YearMonth
	for ym := from; !ym.After(to); ym = ym.Add(1) {
		out = append(out, ym)
	}
	return out
}
