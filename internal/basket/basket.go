// Package basket defines the reserve protocol's persistent aggregate: the
// whitelisted asset records plus protocol-wide fee parameters. The valuation
// core only reads these records; mutation happens through the protocol entry
// points under a whole-aggregate-replace discipline.
package basket

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/basketfi/valuation/internal/asset"
	"github.com/basketfi/valuation/internal/numeric"
	"github.com/basketfi/valuation/internal/oracle"
)

var (
	// ErrDuplicateAsset indicates the same asset listed twice in a config.
	ErrDuplicateAsset = errors.New("duplicate asset in basket")
	// ErrNoAssets indicates a basket config with an empty asset list.
	ErrNoAssets = errors.New("basket requires at least one asset")
	// ErrReserveLimitExceeded indicates reserves above the per-asset cap.
	ErrReserveLimitExceeded = errors.New("reserves exceed max asset amount")
)

// BasketAsset is the persistent per-asset record inside a basket: one
// instance per distinct asset ref, created at instantiation, alive for the
// life of the basket.
type BasketAsset struct {
	Ref asset.Ref `json:"ref"`

	// Weight of this asset in the basket.
	Weight numeric.Uint128 `json:"weight"`

	// Minimum profit a position needs before taking profit early.
	MinProfitBasisPoints numeric.Uint128 `json:"minProfitBasisPoints"`

	// Cap on the total amount of this asset the basket may hold.
	MaxAssetAmount numeric.Uint128 `json:"maxAssetAmount"`

	StableToken    bool `json:"stableToken"`
	ShortableToken bool `json:"shortableToken"`

	// Funding state, accrued by the position entry points.
	CumulativeFundingRate numeric.Uint128 `json:"cumulativeFundingRate"`
	LastFundingTime       numeric.Uint128 `json:"lastFundingTime"`

	Oracle       oracle.Ref `json:"oracle"`
	BackupOracle oracle.Ref `json:"backupOracle"`

	GlobalShortSize        numeric.Uint128 `json:"globalShortSize"`
	NetProtocolLiabilities numeric.Uint128 `json:"netProtocolLiabilities"`

	// OccupiedReserves back open positions; AvailableReserves are free for
	// trading. Neither includes FeeReserves.
	OccupiedReserves  numeric.Uint128 `json:"occupiedReserves"`
	FeeReserves       numeric.Uint128 `json:"feeReserves"`
	AvailableReserves numeric.Uint128 `json:"availableReserves"`
	PoolReserves      numeric.Uint128 `json:"poolReserves"`

	// Decimal precision of the asset, recorded at whitelisting.
	Decimals uint8 `json:"decimals"`
}

// TotalReserves returns available + occupied reserves, the basket's whole
// holding of the asset for valuation purposes.
func (ba BasketAsset) TotalReserves() (numeric.Uint128, error) {
	total, err := ba.AvailableReserves.CheckedAdd(ba.OccupiedReserves)
	if err != nil {
		return numeric.Uint128{}, fmt.Errorf("total reserves of %s: %w", ba.Ref, err)
	}
	return total, nil
}

// CheckReserves verifies the record's reserve invariant:
// available + occupied never exceeds the asset cap.
func (ba BasketAsset) CheckReserves() error {
	total, err := ba.TotalReserves()
	if err != nil {
		return err
	}
	if ba.MaxAssetAmount.LT(total) {
		return fmt.Errorf("asset %s holds %s of max %s: %w",
			ba.Ref, total, ba.MaxAssetAmount, ErrReserveLimitExceeded)
	}
	return nil
}

// AssetConfig describes one asset at basket instantiation.
type AssetConfig struct {
	Ref                  asset.Ref       `json:"ref"`
	Weight               numeric.Uint128 `json:"weight"`
	MinProfitBasisPoints numeric.Uint128 `json:"minProfitBasisPoints"`
	MaxAssetAmount       numeric.Uint128 `json:"maxAssetAmount"`
	Stable               bool            `json:"stable"`
	Shortable            bool            `json:"shortable"`
	Oracle               oracle.Ref      `json:"oracle"`
	BackupOracle         oracle.Ref      `json:"backupOracle"`
	Decimals             uint8           `json:"decimals"`
}

// NewBasketAsset creates a fresh record from an asset configuration, with all
// reserve and funding state zeroed.
func NewBasketAsset(cfg AssetConfig) BasketAsset {
	return BasketAsset{
		Ref:                  cfg.Ref,
		Weight:               cfg.Weight,
		MinProfitBasisPoints: cfg.MinProfitBasisPoints,
		MaxAssetAmount:       cfg.MaxAssetAmount,
		StableToken:          cfg.Stable,
		ShortableToken:       cfg.Shortable,
		Oracle:               cfg.Oracle,
		BackupOracle:         cfg.BackupOracle,
		Decimals:             cfg.Decimals,
	}
}

// Config describes a basket at instantiation.
type Config struct {
	Name                     string          `json:"name"`
	Assets                   []AssetConfig   `json:"assets"`
	TaxBasisPoints           numeric.Uint128 `json:"taxBasisPoints"`
	StableTaxBasisPoints     numeric.Uint128 `json:"stableTaxBasisPoints"`
	MintBurnBasisPoints      numeric.Uint128 `json:"mintBurnBasisPoints"`
	SwapFeeBasisPoints       numeric.Uint128 `json:"swapFeeBasisPoints"`
	StableSwapFeeBasisPoints numeric.Uint128 `json:"stableSwapFeeBasisPoints"`
	MarginFeeBasisPoints     numeric.Uint128 `json:"marginFeeBasisPoints"`
	LiquidationFeeUSD        numeric.Uint128 `json:"liquidationFeeUsd"`
	MinProfitTime            numeric.Uint128 `json:"minProfitTime"`
	Admin                    string          `json:"admin"`
}

// Basket is the aggregate of all whitelisted asset records plus the
// protocol-wide fee parameters.
type Basket struct {
	Name                     string          `json:"name"`
	Assets                   []BasketAsset   `json:"assets"`
	TaxBasisPoints           numeric.Uint128 `json:"taxBasisPoints"`
	StableTaxBasisPoints     numeric.Uint128 `json:"stableTaxBasisPoints"`
	MintBurnBasisPoints      numeric.Uint128 `json:"mintBurnBasisPoints"`
	SwapFeeBasisPoints       numeric.Uint128 `json:"swapFeeBasisPoints"`
	StableSwapFeeBasisPoints numeric.Uint128 `json:"stableSwapFeeBasisPoints"`
	MarginFeeBasisPoints     numeric.Uint128 `json:"marginFeeBasisPoints"`
	LiquidationFeeUSD        numeric.Uint128 `json:"liquidationFeeUsd"`
	MinProfitTime            numeric.Uint128 `json:"minProfitTime"`
	Admin                    string          `json:"admin"`
	LPTokenAddress           string          `json:"lpTokenAddress"`
}

// New creates a basket from its instantiation config, checking identifier
// casing against the validator and rejecting duplicate assets.
func New(cfg Config, v asset.AddressValidator) (*Basket, error) {
	if len(cfg.Assets) == 0 {
		return nil, ErrNoAssets
	}

	assets := make([]BasketAsset, 0, len(cfg.Assets))
	seen := make(map[string]bool, len(cfg.Assets))
	for _, ac := range cfg.Assets {
		if err := ac.Ref.Validate(v); err != nil {
			return nil, fmt.Errorf("basket %s: %w", cfg.Name, err)
		}
		key := string(ac.Ref.Bytes())
		if seen[key] {
			return nil, fmt.Errorf("asset %s: %w", ac.Ref, ErrDuplicateAsset)
		}
		seen[key] = true
		assets = append(assets, NewBasketAsset(ac))
	}

	return &Basket{
		Name:                     cfg.Name,
		Assets:                   assets,
		TaxBasisPoints:           cfg.TaxBasisPoints,
		StableTaxBasisPoints:     cfg.StableTaxBasisPoints,
		MintBurnBasisPoints:      cfg.MintBurnBasisPoints,
		SwapFeeBasisPoints:       cfg.SwapFeeBasisPoints,
		StableSwapFeeBasisPoints: cfg.StableSwapFeeBasisPoints,
		MarginFeeBasisPoints:     cfg.MarginFeeBasisPoints,
		LiquidationFeeUSD:        cfg.LiquidationFeeUSD,
		MinProfitTime:            cfg.MinProfitTime,
		Admin:                    cfg.Admin,
	}, nil
}

// FindAsset returns the record for the given ref, if whitelisted.
func (b *Basket) FindAsset(ref asset.Ref) (BasketAsset, bool) {
	return lo.Find(b.Assets, func(ba BasketAsset) bool {
		return ba.Ref.Equal(ref)
	})
}

// TotalWeights sums the weights of all records.
func (b *Basket) TotalWeights() (numeric.Uint128, error) {
	total := numeric.New(0)
	for _, ba := range b.Assets {
		var err error
		total, err = total.CheckedAdd(ba.Weight)
		if err != nil {
			return numeric.Uint128{}, fmt.Errorf("summing weights: %w", err)
		}
	}
	return total, nil
}
