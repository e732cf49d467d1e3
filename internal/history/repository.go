// Package history records basket AUM observations over time, one row per
// basket per capture, so reports can track valuation drift between captures.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/basketfi/valuation/internal/numeric"
)

// ErrNotFound indicates that no history exists for the requested basket.
var ErrNotFound = errors.New("valuation record not found")

// Record is one stored AUM observation.
type Record struct {
	ID        int             `json:"id"`
	Basket    string          `json:"basket"`
	AUM       numeric.Uint128 `json:"aum"`
	TakenAt   time.Time       `json:"takenAt"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Repository defines persistent storage for AUM observations.
type Repository interface {
	Save(ctx context.Context, basketName string, takenAt time.Time, aum numeric.Uint128) error
	GetLatest(ctx context.Context, basketName string) (*Record, error)
	List(ctx context.Context, basketName string, limit int) ([]Record, error)
}

// PgRepository implements Repository with PostgreSQL. AUM values are stored
// as numeric text to keep the full 128-bit range.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL history repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, basketName string, takenAt time.Time, aum numeric.Uint128) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO valuation_history (basket_name, taken_at, aum)
		 VALUES ($1, $2, $3::numeric)
		 ON CONFLICT (basket_name, taken_at)
		 DO UPDATE SET aum = $3::numeric`,
		basketName, takenAt, aum.String())
	if err != nil {
		return fmt.Errorf("saving valuation record: %w", err)
	}
	return nil
}

func (r *PgRepository) GetLatest(ctx context.Context, basketName string) (*Record, error) {
	var (
		rec Record
		aum string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, basket_name, aum::text, taken_at, created_at
		 FROM valuation_history
		 WHERE basket_name = $1
		 ORDER BY taken_at DESC
		 LIMIT 1`, basketName).Scan(&rec.ID, &rec.Basket, &aum, &rec.TakenAt, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest valuation record: %w", err)
	}
	if rec.AUM, err = numeric.FromString(aum); err != nil {
		return nil, fmt.Errorf("parsing stored aum: %w", err)
	}
	return &rec, nil
}

func (r *PgRepository) List(ctx context.Context, basketName string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, basket_name, aum::text, taken_at, created_at
		 FROM valuation_history
		 WHERE basket_name = $1
		 ORDER BY taken_at DESC
		 LIMIT $2`, basketName, limit)
	if err != nil {
		return nil, fmt.Errorf("listing valuation records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec Record
			aum string
		)
		if err := rows.Scan(&rec.ID, &rec.Basket, &aum, &rec.TakenAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning valuation record: %w", err)
		}
		if rec.AUM, err = numeric.FromString(aum); err != nil {
			return nil, fmt.Errorf("parsing stored aum: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating valuation records: %w", err)
	}
	return records, nil
}
