package valuation

import (
	"context"
	"errors"
	"fmt"

	"github.com/basketfi/valuation/internal/asset"
	"github.com/basketfi/valuation/internal/basket"
	"github.com/basketfi/valuation/internal/numeric"
	"github.com/basketfi/valuation/internal/oracle"
)

// ErrNoLPSupply indicates a withdraw valuation against a zero LP supply.
var ErrNoLPSupply = errors.New("lp token supply is zero")

// BasketValue returns the basket's assets under management in 10^-6 USD:
// the sum of every record's whole-reserve value.
func BasketValue(ctx context.Context, b *basket.Basket, lookup DecimalsLookup, src oracle.Source) (numeric.Uint128, error) {
	total := numeric.New(0)
	for _, record := range b.Assets {
		session := NewPricedAsset(asset.Asset{Ref: record.Ref}, record)
		value, err := session.ValueOfReserves(ctx, lookup, src)
		if err != nil {
			return numeric.Uint128{}, fmt.Errorf("basket %s: %w", b.Name, err)
		}
		total, err = total.CheckedAdd(value)
		if err != nil {
			return numeric.Uint128{}, fmt.Errorf("basket %s: %w", b.Name, err)
		}
	}
	return total, nil
}

// WithdrawValue returns the USD value redeemable for lpAmount LP tokens:
// lpAmount * aum / lpSupply, floored.
func WithdrawValue(lpAmount, aum, lpSupply numeric.Uint128) (numeric.Uint128, error) {
	if lpSupply.IsZero() {
		return numeric.Uint128{}, ErrNoLPSupply
	}
	value, err := lpAmount.MulRatio(aum, lpSupply)
	if err != nil {
		return numeric.Uint128{}, fmt.Errorf("withdraw value: %w", err)
	}
	return value, nil
}
