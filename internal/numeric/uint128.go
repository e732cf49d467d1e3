// Package numeric provides overflow-checked 128-bit unsigned arithmetic for
// reserve amounts and USD values. Intermediate products in ratio math are
// carried at full width, so multiply-before-divide never loses range.
package numeric

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow indicates that a result does not fit into 128 bits.
	ErrOverflow = errors.New("uint128 overflow")
	// ErrUnderflow indicates that a checked subtraction went below zero.
	ErrUnderflow = errors.New("uint128 underflow")
	// ErrDivideByZero indicates a zero divisor in ratio math.
	ErrDivideByZero = errors.New("uint128 divide by zero")
	// ErrFailedCast indicates a lossy narrowing or widening conversion.
	ErrFailedCast = errors.New("failed to cast between types safely")
	// ErrExponentTooLarge indicates a power of ten beyond the 128-bit range.
	ErrExponentTooLarge = errors.New("power of ten exceeds uint128 range")
)

const maxPow10 = 38 // 10^38 < 2^128 < 10^39

// Uint128 is an unsigned 128-bit integer. The zero value is zero.
type Uint128 struct {
	v uint256.Int
}

// New creates a Uint128 from a uint64.
func New(x uint64) Uint128 {
	var u Uint128
	u.v.SetUint64(x)
	return u
}

// FromString parses a base-10 string into a Uint128.
func FromString(s string) (Uint128, error) {
	var u Uint128
	if err := u.v.SetFromDecimal(s); err != nil {
		return Uint128{}, fmt.Errorf("parsing uint128 %q: %w", s, err)
	}
	if u.v.BitLen() > 128 {
		return Uint128{}, ErrOverflow
	}
	return u, nil
}

// MustFromString parses a base-10 string, panicking on error. For use with
// hard-coded constants only.
func MustFromString(s string) Uint128 {
	u, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return u
}

// FromInt64 widens a signed 64-bit integer. It fails with ErrFailedCast
// unless narrowing the result back to int64 reproduces the input exactly,
// which rejects all negative inputs.
func FromInt64(x int64) (Uint128, error) {
	if x < 0 {
		return Uint128{}, ErrFailedCast
	}
	return New(uint64(x)), nil
}

// ToInt64 narrows to a signed 64-bit integer. It fails with ErrFailedCast
// unless widening the result back to Uint128 reproduces the input exactly.
func (u Uint128) ToInt64() (int64, error) {
	if !u.v.IsUint64() {
		return 0, ErrFailedCast
	}
	x := u.v.Uint64()
	if x > math.MaxInt64 {
		return 0, ErrFailedCast
	}
	return int64(x), nil
}

// Pow10 returns 10^n, or ErrExponentTooLarge if the result exceeds 128 bits.
func Pow10(n uint32) (Uint128, error) {
	if n > maxPow10 {
		return Uint128{}, ErrExponentTooLarge
	}
	var u Uint128
	u.v.Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
	return u, nil
}

// IsZero reports whether u is zero.
func (u Uint128) IsZero() bool {
	return u.v.IsZero()
}

// Equal reports whether u == other.
func (u Uint128) Equal(other Uint128) bool {
	return u.v.Eq(&other.v)
}

// LT reports whether u < other.
func (u Uint128) LT(other Uint128) bool {
	return u.v.Lt(&other.v)
}

// Min returns the smaller of a and b.
func Min(a, b Uint128) Uint128 {
	if a.LT(b) {
		return a
	}
	return b
}

// CheckedAdd returns u + other, or ErrOverflow.
func (u Uint128) CheckedAdd(other Uint128) (Uint128, error) {
	var r Uint128
	r.v.Add(&u.v, &other.v)
	if r.v.BitLen() > 128 {
		return Uint128{}, ErrOverflow
	}
	return r, nil
}

// CheckedSub returns u - other, or ErrUnderflow.
func (u Uint128) CheckedSub(other Uint128) (Uint128, error) {
	if u.v.Lt(&other.v) {
		return Uint128{}, ErrUnderflow
	}
	var r Uint128
	r.v.Sub(&u.v, &other.v)
	return r, nil
}

// CheckedMul returns u * other, or ErrOverflow.
func (u Uint128) CheckedMul(other Uint128) (Uint128, error) {
	var r Uint128
	r.v.Mul(&u.v, &other.v) // cannot wrap: both operands fit 128 bits
	if r.v.BitLen() > 128 {
		return Uint128{}, ErrOverflow
	}
	return r, nil
}

// MulRatio returns u * num / den with the product carried at full width
// before the floor division, so the intermediate never overflows.
func (u Uint128) MulRatio(num, den Uint128) (Uint128, error) {
	if den.IsZero() {
		return Uint128{}, ErrDivideByZero
	}
	var r Uint128
	if _, overflow := r.v.MulDivOverflow(&u.v, &num.v, &den.v); overflow {
		return Uint128{}, ErrOverflow
	}
	if r.v.BitLen() > 128 {
		return Uint128{}, ErrOverflow
	}
	return r, nil
}

// String returns the base-10 representation.
func (u Uint128) String() string {
	return u.v.Dec()
}

// MarshalJSON encodes the value as a decimal string, matching the wire form
// used for reserve amounts in stored basket records.
func (u Uint128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON decodes a decimal string.
func (u *Uint128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("uint128 expects a decimal string: %w", err)
	}
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
