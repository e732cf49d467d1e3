// Package valuation computes normalized USD values for basket assets from
// oracle price samples and per-asset decimal precision. All arithmetic is
// exponent-aligned fixed point: amounts carry the asset's own decimals,
// prices carry an arbitrary signed exponent, and results land at a fixed
// 10^-6 USD precision.
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

// USDValuePrecision is the output precision exponent: values are denominated
// in 10^-6 USD.
const USDValuePrecision int32 = -6

// NativeDecimals is the protocol-defined decimal count of the chain's native
// currency.
const NativeDecimals uint8 = 6

// ErrDecimalsOutOfRange indicates a reported decimal count the engine's
// ratio math cannot represent.
var ErrDecimalsOutOfRange = errors.New("token decimals out of range")

// DecimalsLookup resolves the decimal precision of contract-issued tokens.
// Native assets never reach the lookup: their decimal count is the protocol
// constant.
type DecimalsLookup interface {
	QueryDecimals(ctx context.Context, ref asset.Ref) (uint8, error)
}

// PricedAsset is a per-request valuation session: an asset quantity, its
// basket record, and compute-once guards for the two external queries.
// Constructed, used, and discarded within one logical request; never shared,
// so the memoization needs no locking.
type PricedAsset struct {
	Asset  asset.Asset
	Record basket.BasketAsset

	cachedDecimals *int32
	cachedPrice    *oracle.Price
}

// NewPricedAsset creates a valuation session for one asset quantity.
func NewPricedAsset(a asset.Asset, record basket.BasketAsset) *PricedAsset {
	return &PricedAsset{Asset: a, Record: record}
}

// Decimals returns the asset's decimal precision, querying the lookup
// collaborator at most once per session. Native assets resolve to the
// protocol constant without an external query.
func (p *PricedAsset) Decimals(ctx context.Context, lookup DecimalsLookup) (int32, error) {
	if p.cachedDecimals != nil {
		return *p.cachedDecimals, nil
	}

	var decimals int32
	if p.Asset.IsNative() {
		decimals = int32(NativeDecimals)
	} else {
		reported, err := lookup.QueryDecimals(ctx, p.Asset.Ref)
		if err != nil {
			return 0, fmt.Errorf("querying decimals for %s: %w", p.Asset.Ref, err)
		}
		if reported > 38 {
			return 0, fmt.Errorf("%s reports %d decimals: %w", p.Asset.Ref, reported, ErrDecimalsOutOfRange)
		}
		decimals = int32(reported)
	}

	p.cachedDecimals = &decimals
	return decimals, nil
}

// Price returns the asset's current oracle sample, querying the record's
// oracle reference at most once per session.
func (p *PricedAsset) Price(ctx context.Context, src oracle.Source) (oracle.Price, error) {
	if p.cachedPrice != nil {
		return *p.cachedPrice, nil
	}

	price, err := src.QueryPrice(ctx, p.Record.Oracle)
	if err != nil {
		return oracle.Price{}, fmt.Errorf("querying price for %s: %w", p.Asset.Ref, err)
	}

	p.cachedPrice = &price
	return price, nil
}

// ValueOfAmount returns the USD value of the session's asset amount at
// 10^-6 USD precision.
func (p *PricedAsset) ValueOfAmount(ctx context.Context, lookup DecimalsLookup, src oracle.Source) (numeric.Uint128, error) {
	return p.value(ctx, lookup, src, p.Asset.Amount)
}

// ValueOfReserves returns the USD value of the basket's whole holding of the
// asset (available + occupied reserves), the footprint used for basket-level
// accounting.
func (p *PricedAsset) ValueOfReserves(ctx context.Context, lookup DecimalsLookup, src oracle.Source) (numeric.Uint128, error) {
	reserves, err := p.Record.TotalReserves()
	if err != nil {
		return numeric.Uint128{}, err
	}
	return p.value(ctx, lookup, src, reserves)
}

// value computes amount * mantissa * 10^expo / 10^decimals, rescaled to the
// output precision. Multiplications happen before the single floor division
// so no precision is lost to intermediate truncation; the floor bias is
// deliberate, working against the party receiving the value.
func (p *PricedAsset) value(ctx context.Context, lookup DecimalsLookup, src oracle.Source, amount numeric.Uint128) (numeric.Uint128, error) {
	decimals, err := p.Decimals(ctx, lookup)
	if err != nil {
		return numeric.Uint128{}, err
	}
	price, err := p.Price(ctx, src)
	if err != nil {
		return numeric.Uint128{}, err
	}
	if price.Mantissa < 0 {
		return numeric.Uint128{}, fmt.Errorf("pricing %s: %w", p.Asset.Ref, oracle.ErrNegativePrice)
	}

	mantissa := numeric.New(uint64(price.Mantissa))
	outScale := uint32(-USDValuePrecision)

	var numerator, denominator numeric.Uint128
	if price.Expo < 0 {
		scale, err := numeric.Pow10(outScale)
		if err != nil {
			return numeric.Uint128{}, fmt.Errorf("valuing %s: %w", p.Asset.Ref, err)
		}
		numerator, err = amount.CheckedMul(scale)
		if err != nil {
			return numeric.Uint128{}, fmt.Errorf("valuing %s: %w", p.Asset.Ref, err)
		}
		denominator, err = numeric.Pow10(uint32(-int64(price.Expo)) + uint32(decimals))
		if err != nil {
			return numeric.Uint128{}, fmt.Errorf("valuing %s: %w", p.Asset.Ref, err)
		}
	} else {
		scale, err := numeric.Pow10(outScale + uint32(price.Expo))
		if err != nil {
			return numeric.Uint128{}, fmt.Errorf("valuing %s: %w", p.Asset.Ref, err)
		}
		numerator, err = amount.CheckedMul(scale)
		if err != nil {
			return numeric.Uint128{}, fmt.Errorf("valuing %s: %w", p.Asset.Ref, err)
		}
		denominator, err = numeric.Pow10(uint32(decimals))
		if err != nil {
			return numeric.Uint128{}, fmt.Errorf("valuing %s: %w", p.Asset.Ref, err)
		}
	}

	value, err := mantissa.MulRatio(numerator, denominator)
	if err != nil {
		return numeric.Uint128{}, fmt.Errorf("valuing %s: %w", p.Asset.Ref, err)
	}
	return value, nil
}
