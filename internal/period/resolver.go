package period

import (
	"fmt"

	"lexledger/internal/core"
)

// DefaultMaxMonth is the latest month custom navigation may reach.
var DefaultMaxMonth = YearMonth{Year: 2032, Month: 12}

// rangeFunc computes the inclusive range of a kind for a reference date.
type rangeFunc func(ref core.Date) (start, end core.Date)

// rangeStrategies maps reference-anchored kinds to their range computation.
// CustomMonth is resolved from its explicit year-month instead.
var rangeStrategies = map[Kind]rangeFunc{
	CurrentMonth: func(ref core.Date) (core.Date, core.Date) {
		return ref.StartOfMonth(), ref.EndOfMonth()
	},
	LastMonth: func(ref core.Date) (core.Date, core.Date) {
		prev := ref.AddMonths(-1)
		return prev, prev.EndOfMonth()
	},
	Last3Months: func(ref core.Date) (core.Date, core.Date) {
		return ref.AddMonths(-2), ref.EndOfMonth()
	},
	Last6Months: func(ref core.Date) (core.Date, core.Date) {
		return ref.AddMonths(-5), ref.EndOfMonth()
	},
	CurrentYear: func(ref core.Date) (core.Date, core.Date) {
		return core.NewDate(ref.Year(), 1, 1), core.NewDate(ref.Year(), 12, 31)
	},
	All: func(core.Date) (core.Date, core.Date) {
		return core.Date{}, core.Date{}
	},
}

// Resolver turns period kinds into selections. It holds configuration only.
type Resolver struct {
	maxMonth YearMonth
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxMonth sets the upper bound for custom month navigation.
func WithMaxMonth(ym YearMonth) Option {
	return func(r *Resolver) {
		if !ym.IsZero() {
			r.maxMonth = ym
		}
	}
}

// NewResolver creates a resolver clamped at DefaultMaxMonth unless configured.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{maxMonth: DefaultMaxMonth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxMonth returns the configured navigation bound.
func (r *Resolver) MaxMonth() YearMonth {
	return r.maxMonth
}

// Resolve computes the selection for kind anchored at ref. custom is only
// read for CustomMonth and is clamped at the resolver's upper bound.
func (r *Resolver) Resolve(kind Kind, ref core.Date, custom *YearMonth) (Selection, error) {
	if kind == CustomMonth {
		if custom == nil || custom.IsZero() {
			return Selection{}, ErrMissingYearMonth
		}
		return r.customMonth(*custom), nil
	}

	strategy, ok := rangeStrategies[kind]
	if !ok {
		return Selection{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if ref.IsZero() && kind != All {
		return Selection{}, ErrMissingReference
	}

	start, end := strategy(ref)
	return Selection{
		Kind:      kind,
		Start:     start,
		End:       end,
		Reference: ref,
	}, nil
}

// ShiftMonth moves a month-sized selection one month back or forward.
// CurrentMonth and LastMonth re-anchor their reference date; CustomMonth
// advances its year-month and stays put at the upper bound.
func (r *Resolver) ShiftMonth(sel Selection, dir Direction) (Selection, error) {
	if dir != Previous && dir != Next {
		return sel, fmt.Errorf("%w: %d", ErrInvalidDirection, dir)
	}

	switch sel.Kind {
	case CurrentMonth, LastMonth:
		ref := sel.Reference
		if ref.IsZero() {
			return sel, ErrMissingReference
		}
		return r.Resolve(sel.Kind, ref.AddMonths(int(dir)), nil)
	case CustomMonth:
		next := sel.YearMonth.Add(int(dir))
		if next.After(r.maxMonth) {
			return sel, nil
		}
		return r.customMonth(next), nil
	default:
		return sel, fmt.Errorf("%w: %q", ErrNotNavigable, sel.Kind)
	}
}

// CanAdvance reports whether a Next shift would change the selection.
func (r *Resolver) CanAdvance(sel Selection) bool {
	if sel.Kind != CustomMonth {
		return sel.Kind == CurrentMonth || sel.Kind == LastMonth
	}
	return !sel.YearMonth.Add(1).After(r.maxMonth)
}

func (r *Resolver) customMonth(ym YearMonth) Selection {
	if ym.After(r.maxMonth) {
		ym = r.maxMonth
	}
	return Selection{
		Kind:      CustomMonth,
		Start:     ym.First(),
		End:       ym.Last(),
		YearMonth: ym,
	}
}

var defaultResolver = NewResolver()

// Resolve uses a resolver bounded at DefaultMaxMonth.
func Resolve(kind Kind, ref core.Date, custom *YearMonth) (Selection, error) {
	return defaultResolver.Resolve(kind, ref, custom)
}

// ShiftMonth uses a resolver bounded at DefaultMaxMonth.
func ShiftMonth(sel Selection, dir Direction) (Selection, error) {
	return defaultResolver.ShiftMonth(sel, dir)
}
