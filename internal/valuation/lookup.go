package valuation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/basketfi/valuation/internal/asset"
	"github.com/basketfi/valuation/internal/basket"
)

// ErrDecimalsNotFound indicates that no decimal precision is registered for
// a token.
var ErrDecimalsNotFound = errors.New("token decimals not found")

// RecordLookup resolves decimals from the basket's own asset records, the
// precision captured when the asset was whitelisted.
type RecordLookup struct {
	Basket *basket.Basket
}

func (l RecordLookup) QueryDecimals(_ context.Context, ref asset.Ref) (uint8, error) {
	record, found := l.Basket.FindAsset(ref)
	if !found {
		return 0, fmt.Errorf("asset %s: %w", ref, ErrDecimalsNotFound)
	}
	return record.Decimals, nil
}

// RegistryLookup resolves decimals from the token_decimals registry table,
// for assets priced outside any loaded basket.
type RegistryLookup struct {
	pool *pgxpool.Pool
}

// NewRegistryLookup creates a PostgreSQL-backed decimals lookup.
func NewRegistryLookup(pool *pgxpool.Pool) *RegistryLookup {
	return &RegistryLookup{pool: pool}
}

func (l *RegistryLookup) QueryDecimals(ctx context.Context, ref asset.Ref) (uint8, error) {
	var decimals uint8
	err := l.pool.QueryRow(ctx,
		`SELECT decimals FROM token_decimals WHERE asset_key = $1`,
		string(ref.Bytes())).Scan(&decimals)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("asset %s: %w", ref, ErrDecimalsNotFound)
		}
		return 0, fmt.Errorf("querying decimals for %s: %w", ref, err)
	}
	return decimals, nil
}
