// Package installment splits a parceled credit card payment into its
// monthly installment entries.
package installment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lexledger/internal/core"
)

const (
	MinCount = 2
	MaxCount = 12

	// DaysBetween is the spacing between installments, counted from the
	// purchase date.
	DaysBetween = 30

	// DefaultDescription labels installments of an entry without a description.
	DefaultDescription = "Cartão de Crédito"
)

var ErrInvalidInstallmentCount = errors.New("installment count must be between 2 and 12")

// Expander generates installment entries. The zero value is not usable; use New.
type Expander struct {
	newGroupID func() string
}

// Option configures an Expander.
type Option func(*Expander)

// WithGroupIDs overrides the installment group id generator.
func WithGroupIDs(gen func() string) Option {
	return func(e *Expander) {
		if gen != nil {
			e.newGroupID = gen
		}
	}
}

func New(opts ...Option) *Expander {
	e := &Expander{newGroupID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand splits entry into n installments. Each one carries value/n rounded
// to the ledger precision (the rounding remainder is not redistributed), is
// dated DaysBetween*(i+1) days after entry.Date, is already paid and is
// charged to the plain credit card method. All installments share one group id.
func (x *Expander) Expand(entry core.LedgerEntry, n int) ([]core.LedgerEntry, error) {
	if n < MinCount || n > MaxCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidInstallmentCount, n)
	}
	if entry.Date.IsZero() {
		return nil, core.ErrMissingDate
	}
	if entry.Value.IsNegative() {
		return nil, core.ErrInvalidAmount
	}

	per := core.RoundMoney(entry.Value.Div(decimal.NewFromInt(int64(n))))
	desc := entry.Description
	if desc == "" {
		desc = DefaultDescription
	}
	group := x.newGroupID()

	out := make([]core.LedgerEntry, n)
	for i := 0; i < n; i++ {
		inst := entry
		inst.ID = ""
		inst.Value = per
		inst.Date = entry.Date.AddDays(DaysBetween * (i + 1))
		inst.Status = core.StatusPaid
		inst.PaymentMethod = core.MethodCreditCard
		inst.Description = fmt.Sprintf("%s - Parcela %d/%d", desc, i+1, n)
		inst.InstallmentGroupID = group
		inst.InstallmentIndex = i + 1
		inst.InstallmentTotal = n
		out[i] = inst
	}
	return out, nil
}

// Total sums installment values; it can differ from the original value by the
// rounding remainder.
func Total(entries []core.LedgerEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Value)
	}
	return sum
}

// ShouldExpand reports whether a submitted entry is a parceled payment with
// more than one installment.
func ShouldExpand(method core.PaymentMethod, n int) bool {
	return method == core.MethodCreditCardParcels && n > 1
}
