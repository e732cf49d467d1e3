// Package oracle models externally supplied price samples as signed
// mantissa/exponent pairs and the sources that produce them.
package oracle

import (
	"errors"
	"fmt"

	"github.com/basketfi/valuation/internal/numeric"
)

var (
	// ErrNegativePrice indicates an oracle sample with a negative mantissa,
	// which is a data error, not a valid market state.
	ErrNegativePrice = errors.New("negative oracle price")
	// ErrNoPrice indicates that the oracle has no current sample.
	ErrNoPrice = errors.New("no oracle price available")
)

// ExponentError indicates a price whose exponent does not match the fixed
// point representation the caller expects.
type ExponentError struct {
	Expo     int32
	Expected int32
}

func (e *ExponentError) Error() string {
	return fmt.Sprintf("oracle price has exponent %d, expected %d", e.Expo, e.Expected)
}

// Price is an oracle sample representing mantissa * 10^expo, with the
// sample's confidence interval and publish time. Ephemeral: sourced fresh
// per valuation session.
type Price struct {
	Mantissa    int64  `json:"mantissa"`
	Expo        int32  `json:"expo"`
	Conf        uint64 `json:"conf"`
	PublishTime int64  `json:"publishTime"`
}

// ToUint128 converts the mantissa to an unsigned fixed-point value at the
// expected exponent. The exponent check is strict: no rescaling happens at
// this layer. Callers that need a different scale use the ratio math in the
// valuation engine.
func (p Price) ToUint128(expectedExpo int32) (numeric.Uint128, error) {
	if p.Mantissa < 0 {
		return numeric.Uint128{}, ErrNegativePrice
	}
	if p.Expo != expectedExpo {
		return numeric.Uint128{}, &ExponentError{Expo: p.Expo, Expected: expectedExpo}
	}
	return numeric.New(uint64(p.Mantissa)), nil
}
