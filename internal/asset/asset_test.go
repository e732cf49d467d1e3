package asset

import (
	"errors"
	"fmt"
	"testing"

	"github.com/basketfi/valuation/internal/numeric"
)

type acceptAllValidator struct{}

func (acceptAllValidator) ValidateAddress(_ string) error { return nil }

type rejectingValidator struct{}

func (rejectingValidator) ValidateAddress(addr string) error {
	return fmt.Errorf("address %q not on chain", addr)
}

func TestRefIsNative(t *testing.T) {
	if !NativeRef("uusd").IsNative() {
		t.Error("NativeRef reported not native")
	}
	if ContractRef("wasm1token").IsNative() {
		t.Error("ContractRef reported native")
	}
}

func TestRefEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Ref
		want bool
	}{
		{"same denom", NativeRef("uusd"), NativeRef("uusd"), true},
		{"different denom", NativeRef("uusd"), NativeRef("uluna"), false},
		{"same contract", ContractRef("wasm1abc"), ContractRef("wasm1abc"), true},
		{"different contract", ContractRef("wasm1abc"), ContractRef("wasm1def"), false},
		{"cross variant same string", NativeRef("wasm1abc"), ContractRef("wasm1abc"), false},
		{"cross variant reversed", ContractRef("uusd"), NativeRef("uusd"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRefValidate(t *testing.T) {
	tests := []struct {
		name    string
		ref     Ref
		wantErr bool
	}{
		{"lowercase denom", NativeRef("uusd"), false},
		{"uppercase denom", NativeRef("uUSD"), true},
		{"ibc denom passes through", NativeRef("ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2"), false},
		{"lowercase contract", ContractRef("wasm1token"), false},
		{"uppercase contract", ContractRef("Wasm1Token"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate(acceptAllValidator{})
			if tt.wantErr {
				if !errors.Is(err, ErrNotLowercase) {
					t.Errorf("Validate() error = %v, want ErrNotLowercase", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestRefValidateDelegatesContractAddresses(t *testing.T) {
	if err := ContractRef("wasm1bogus").Validate(rejectingValidator{}); err == nil {
		t.Error("Validate() ignored the address validator's rejection")
	}
	// Native denoms never reach the validator.
	if err := NativeRef("uusd").Validate(rejectingValidator{}); err != nil {
		t.Errorf("Validate() of native denom consulted the address validator: %v", err)
	}
}

func TestRefBytes(t *testing.T) {
	if got := string(NativeRef("uusd").Bytes()); got != "uusd" {
		t.Errorf("Bytes() = %q, want uusd", got)
	}
	if got := string(ContractRef("wasm1token").Bytes()); got != "wasm1token" {
		t.Errorf("Bytes() = %q, want wasm1token", got)
	}
}

func TestAssetString(t *testing.T) {
	a := NewNative("uusd", numeric.New(1500))
	if got := a.String(); got != "1500uusd" {
		t.Errorf("String() = %q, want 1500uusd", got)
	}
}
