package asset

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/basketfi/valuation/internal/numeric"
)

// decimalFraction is the fixed scaling constant for rate arithmetic in
// integer space: rates are applied as fractions of 10^18.
var decimalFraction = numeric.MustFromString("1000000000000000000")

// ErrInvalidTaxRate indicates a tax rate outside [0, 1).
var ErrInvalidTaxRate = errors.New("tax rate must be in [0, 1)")

// BalanceMismatchError indicates that a claimed native amount does not match
// the funds actually attached to the operation.
type BalanceMismatchError struct {
	Denom    string
	Claimed  numeric.Uint128
	Attached numeric.Uint128
}

func (e *BalanceMismatchError) Error() string {
	return fmt.Sprintf("native balance mismatch for %s: claimed %s, attached %s",
		e.Denom, e.Claimed, e.Attached)
}

// ComputeTax returns the transfer tax owed on a native-currency amount:
// tax = amount - amount*F/(F + floor(F*rate)), clamped to cap. Contract
// tokens are never taxed. Arithmetic failures surface as errors, never as
// saturated values.
func ComputeTax(a Asset, rate decimal.Decimal, cap numeric.Uint128) (numeric.Uint128, error) {
	if !a.IsNative() {
		return numeric.New(0), nil
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.New(1, 0)) {
		return numeric.Uint128{}, fmt.Errorf("rate %s: %w", rate, ErrInvalidTaxRate)
	}

	scaledRate, err := numeric.FromString(rate.Mul(decimal.New(1, 18)).Truncate(0).String())
	if err != nil {
		return numeric.Uint128{}, fmt.Errorf("scaling tax rate %s: %w", rate, err)
	}
	denominator, err := decimalFraction.CheckedAdd(scaledRate)
	if err != nil {
		return numeric.Uint128{}, fmt.Errorf("tax denominator: %w", err)
	}

	kept, err := a.Amount.MulRatio(decimalFraction, denominator)
	if err != nil {
		return numeric.Uint128{}, fmt.Errorf("computing tax on %s: %w", a.Amount, err)
	}
	tax, err := a.Amount.CheckedSub(kept)
	if err != nil {
		return numeric.Uint128{}, fmt.Errorf("computing tax on %s: %w", a.Amount, err)
	}
	return numeric.Min(tax, cap), nil
}

// DeductTax returns the amount deliverable after tax. The subtraction cannot
// underflow while the cap invariant holds, but it is checked, not assumed.
func DeductTax(a Asset, rate decimal.Decimal, cap numeric.Uint128) (numeric.Uint128, error) {
	tax, err := ComputeTax(a, rate, cap)
	if err != nil {
		return numeric.Uint128{}, err
	}
	deliverable, err := a.Amount.CheckedSub(tax)
	if err != nil {
		return numeric.Uint128{}, fmt.Errorf("deducting tax %s from %s: %w", tax, a.Amount, err)
	}
	return deliverable, nil
}

// AssertAttachedBalance verifies that a claimed native amount matches the
// funds attached to the operation exactly. A missing fund entry requires a
// claimed amount of zero. Contract tokens always pass: their balance is
// enforced by the token contract itself on transfer.
func AssertAttachedBalance(a Asset, funds []Coin) error {
	if !a.IsNative() {
		return nil
	}

	coin, found := lo.Find(funds, func(c Coin) bool { return c.Denom == a.Ref.Denom })
	if !found {
		if a.Amount.IsZero() {
			return nil
		}
		return &BalanceMismatchError{Denom: a.Ref.Denom, Claimed: a.Amount, Attached: numeric.New(0)}
	}
	if !a.Amount.Equal(coin.Amount) {
		return &BalanceMismatchError{Denom: a.Ref.Denom, Claimed: a.Amount, Attached: coin.Amount}
	}
	return nil
}
