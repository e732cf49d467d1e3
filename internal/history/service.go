package history

import (
	"context"
	"fmt"
	"time"

	"github.com/basketfi/valuation/internal/numeric"
)

// Valuer computes the current AUM of a basket.
type Valuer interface {
	BasketAUM(ctx context.Context, basketName string) (numeric.Uint128, error)
}

// Service captures and retrieves AUM observations.
type Service struct {
	valuer Valuer
	repo   Repository
}

// NewService creates a new history service.
func NewService(valuer Valuer, repo Repository) *Service {
	return &Service{valuer: valuer, repo: repo}
}

// Capture values the basket now and stores the observation.
func (s *Service) Capture(ctx context.Context, basketName string, takenAt time.Time) (numeric.Uint128, error) {
	aum, err := s.valuer.BasketAUM(ctx, basketName)
	if err != nil {
		return numeric.Uint128{}, fmt.Errorf("valuing basket %s: %w", basketName, err)
	}
	if err := s.repo.Save(ctx, basketName, takenAt, aum); err != nil {
		return numeric.Uint128{}, err
	}
	return aum, nil
}

// GetLatest retrieves the most recent observation for the basket.
func (s *Service) GetLatest(ctx context.Context, basketName string) (*Record, error) {
	return s.repo.GetLatest(ctx, basketName)
}

// List retrieves recent observations, newest first.
func (s *Service) List(ctx context.Context, basketName string, limit int) ([]Record, error) {
	return s.repo.List(ctx, basketName, limit)
}
