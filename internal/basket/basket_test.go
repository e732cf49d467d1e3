package basket

import (
	"errors"
	"testing"

	"github.com/basketfi/valuation/internal/asset"
	"github.com/basketfi/valuation/internal/numeric"
	"github.com/basketfi/valuation/internal/oracle"
)

type acceptAllValidator struct{}

func (acceptAllValidator) ValidateAddress(_ string) error { return nil }

func testConfig() Config {
	return Config{
		Name: "reserve",
		Assets: []AssetConfig{
			{
				Ref:            asset.NativeRef("uusd"),
				Weight:         numeric.New(40),
				MaxAssetAmount: numeric.New(1_000_000_000),
				Stable:         true,
				Oracle:         oracle.StubRef(1_000_000, -6),
				Decimals:       6,
			},
			{
				Ref:            asset.ContractRef("wasm1token"),
				Weight:         numeric.New(60),
				MaxAssetAmount: numeric.New(500_000_000),
				Shortable:      true,
				Oracle:         oracle.FeedRef("abc123"),
				Decimals:       8,
			},
		},
		TaxBasisPoints: numeric.New(15),
		Admin:          "wasm1admin",
	}
}

func TestNewBasket(t *testing.T) {
	b, err := New(testConfig(), acceptAllValidator{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if b.Name != "reserve" {
		t.Errorf("Name = %q, want reserve", b.Name)
	}
	if len(b.Assets) != 2 {
		t.Fatalf("Assets = %d, want 2", len(b.Assets))
	}

	// Reserve and funding state start zeroed.
	for _, ba := range b.Assets {
		if !ba.AvailableReserves.IsZero() || !ba.OccupiedReserves.IsZero() || !ba.FeeReserves.IsZero() {
			t.Errorf("asset %s has non-zero initial reserves", ba.Ref)
		}
		if !ba.CumulativeFundingRate.IsZero() {
			t.Errorf("asset %s has non-zero initial funding rate", ba.Ref)
		}
	}

	if b.Assets[0].Decimals != 6 || b.Assets[1].Decimals != 8 {
		t.Error("decimals not carried from config")
	}
}

func TestNewBasketRejectsDuplicates(t *testing.T) {
	cfg := testConfig()
	cfg.Assets = append(cfg.Assets, cfg.Assets[0])

	if _, err := New(cfg, acceptAllValidator{}); !errors.Is(err, ErrDuplicateAsset) {
		t.Errorf("New error = %v, want ErrDuplicateAsset", err)
	}
}

func TestNewBasketRejectsEmpty(t *testing.T) {
	cfg := testConfig()
	cfg.Assets = nil

	if _, err := New(cfg, acceptAllValidator{}); !errors.Is(err, ErrNoAssets) {
		t.Errorf("New error = %v, want ErrNoAssets", err)
	}
}

func TestNewBasketValidatesRefs(t *testing.T) {
	cfg := testConfig()
	cfg.Assets[0].Ref = asset.NativeRef("uUSD")

	if _, err := New(cfg, acceptAllValidator{}); !errors.Is(err, asset.ErrNotLowercase) {
		t.Errorf("New error = %v, want ErrNotLowercase", err)
	}
}

func TestFindAsset(t *testing.T) {
	b, err := New(testConfig(), acceptAllValidator{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ba, found := b.FindAsset(asset.ContractRef("wasm1token"))
	if !found {
		t.Fatal("FindAsset did not find whitelisted token")
	}
	if !ba.Weight.Equal(numeric.New(60)) {
		t.Errorf("Weight = %s, want 60", ba.Weight)
	}

	if _, found := b.FindAsset(asset.NativeRef("uluna")); found {
		t.Error("FindAsset found an asset not in the basket")
	}
	// Same bytes, different variant: not the same asset.
	if _, found := b.FindAsset(asset.NativeRef("wasm1token")); found {
		t.Error("FindAsset matched across variants")
	}
}

func TestTotalWeights(t *testing.T) {
	b, err := New(testConfig(), acceptAllValidator{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	total, err := b.TotalWeights()
	if err != nil {
		t.Fatalf("TotalWeights error: %v", err)
	}
	if !total.Equal(numeric.New(100)) {
		t.Errorf("TotalWeights = %s, want 100", total)
	}
}

func TestCheckReserves(t *testing.T) {
	ba := BasketAsset{
		Ref:               asset.NativeRef("uusd"),
		MaxAssetAmount:    numeric.New(100),
		AvailableReserves: numeric.New(60),
		OccupiedReserves:  numeric.New(40),
	}
	if err := ba.CheckReserves(); err != nil {
		t.Errorf("CheckReserves at exactly the cap: %v", err)
	}

	ba.OccupiedReserves = numeric.New(41)
	if err := ba.CheckReserves(); !errors.Is(err, ErrReserveLimitExceeded) {
		t.Errorf("CheckReserves error = %v, want ErrReserveLimitExceeded", err)
	}
}

func TestTotalReserves(t *testing.T) {
	ba := BasketAsset{
		Ref:               asset.NativeRef("uusd"),
		AvailableReserves: numeric.New(60),
		OccupiedReserves:  numeric.New(40),
		FeeReserves:       numeric.New(5),
	}
	total, err := ba.TotalReserves()
	if err != nil {
		t.Fatalf("TotalReserves error: %v", err)
	}
	// Fee reserves are excluded.
	if !total.Equal(numeric.New(100)) {
		t.Errorf("TotalReserves = %s, want 100", total)
	}
}
