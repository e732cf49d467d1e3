package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that no basket exists under the requested name.
var ErrNotFound = errors.New("basket not found")

// Store persists baskets as whole aggregates: Load returns a fully
// consistent snapshot, Save replaces the aggregate atomically.
type Store interface {
	Load(ctx context.Context, name string) (*Basket, error)
	Save(ctx context.Context, b *Basket) error
}

// PgStore implements Store with PostgreSQL, storing each aggregate as a
// single jsonb document keyed by basket name.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PostgreSQL basket store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Load(ctx context.Context, name string) (*Basket, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM baskets WHERE name = $1`, name).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("basket %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("loading basket %s: %w", name, err)
	}

	var b Basket
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decoding basket %s: %w", name, err)
	}
	return &b, nil
}

func (s *PgStore) Save(ctx context.Context, b *Basket) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding basket %s: %w", b.Name, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO baskets (name, data)
		 VALUES ($1, $2::jsonb)
		 ON CONFLICT (name)
		 DO UPDATE SET data = $2::jsonb, updated_at = NOW()`,
		b.Name, data)
	if err != nil {
		return fmt.Errorf("saving basket %s: %w", b.Name, err)
	}
	return nil
}
