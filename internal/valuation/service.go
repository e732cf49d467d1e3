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

// ErrAssetNotInBasket indicates a valuation request for an asset the basket
// does not whitelist.
var ErrAssetNotInBasket = errors.New("asset not in basket")

// Service values basket assets against stored basket records. Each request
// builds a fresh PricedAsset session, so decimals and price are queried at
// most once per request.
type Service struct {
	store  basket.Store
	src    oracle.Source
	lookup DecimalsLookup
}

// NewService creates a valuation service. A nil lookup falls back to the
// decimal precision recorded in each basket's own asset records.
func NewService(store basket.Store, src oracle.Source, lookup DecimalsLookup) *Service {
	return &Service{store: store, src: src, lookup: lookup}
}

func (s *Service) lookupFor(b *basket.Basket) DecimalsLookup {
	if s.lookup != nil {
		return s.lookup
	}
	return RecordLookup{Basket: b}
}

// AssetValue returns the 10^-6 USD value of an amount of one basket asset.
func (s *Service) AssetValue(ctx context.Context, basketName string, ref asset.Ref, amount numeric.Uint128) (numeric.Uint128, error) {
	b, err := s.store.Load(ctx, basketName)
	if err != nil {
		return numeric.Uint128{}, err
	}

	record, found := b.FindAsset(ref)
	if !found {
		return numeric.Uint128{}, fmt.Errorf("asset %s in basket %s: %w", ref, basketName, ErrAssetNotInBasket)
	}

	session := NewPricedAsset(asset.Asset{Ref: ref, Amount: amount}, record)
	return session.ValueOfAmount(ctx, s.lookupFor(b), s.src)
}

// BasketAUM returns the basket's assets under management in 10^-6 USD.
func (s *Service) BasketAUM(ctx context.Context, basketName string) (numeric.Uint128, error) {
	b, err := s.store.Load(ctx, basketName)
	if err != nil {
		return numeric.Uint128{}, err
	}
	return BasketValue(ctx, b, s.lookupFor(b), s.src)
}
