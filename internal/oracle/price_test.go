package oracle

import (
	"errors"
	"testing"

	"github.com/basketfi/valuation/internal/numeric"
)

func TestToUint128(t *testing.T) {
	tests := []struct {
		name         string
		price        Price
		expectedExpo int32
		want         uint64
		wantErr      error
	}{
		{"matching exponent", Price{Mantissa: 10_000_000, Expo: -6}, -6, 10_000_000, nil},
		{"zero mantissa", Price{Mantissa: 0, Expo: -6}, -6, 0, nil},
		{"positive exponent match", Price{Mantissa: 5, Expo: 2}, 2, 5, nil},
		{"negative price", Price{Mantissa: -5, Expo: -6}, -6, 0, ErrNegativePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.price.ToUint128(tt.expectedExpo)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ToUint128 error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToUint128 error: %v", err)
			}
			if !got.Equal(numeric.New(tt.want)) {
				t.Errorf("ToUint128 = %s, want %d", got, tt.want)
			}
		})
	}
}

func TestToUint128ExponentMismatch(t *testing.T) {
	p := Price{Mantissa: 100, Expo: -8}
	_, err := p.ToUint128(-6)

	var expErr *ExponentError
	if !errors.As(err, &expErr) {
		t.Fatalf("ToUint128 error = %v, want ExponentError", err)
	}
	if expErr.Expo != -8 || expErr.Expected != -6 {
		t.Errorf("ExponentError = {%d, %d}, want {-8, -6}", expErr.Expo, expErr.Expected)
	}
}

func TestToUint128NegativeBeforeExponentCheck(t *testing.T) {
	// A negative mantissa is rejected even when the exponent also mismatches.
	p := Price{Mantissa: -1, Expo: -8}
	if _, err := p.ToUint128(-6); !errors.Is(err, ErrNegativePrice) {
		t.Errorf("ToUint128 error = %v, want ErrNegativePrice", err)
	}
}
