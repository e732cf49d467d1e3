// Package asset defines the reserve protocol's asset identity model: a basket
// holds either the chain's native currency or contract-issued tokens, and
// everything that moves value in or out is keyed by an asset Ref.
package asset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/basketfi/valuation/internal/numeric"
)

// ErrNotLowercase indicates a denom or contract address with uppercase characters.
var ErrNotLowercase = errors.New("identifier must be lowercase")

// RefKind discriminates the two asset variants.
type RefKind string

const (
	RefKindNative   RefKind = "native"
	RefKindContract RefKind = "contract"
)

// ibcPrefix marks IBC voucher denoms, which are passed through unvalidated:
// their hash segment is uppercase hex by convention.
const ibcPrefix = "ibc/"

// Ref identifies an asset: a native-currency denom or a token contract
// address. Immutable once constructed.
type Ref struct {
	Kind     RefKind `json:"kind"`
	Denom    string  `json:"denom,omitempty"`
	Contract string  `json:"contract,omitempty"`
}

// NativeRef creates a Ref for a native-currency denom.
func NativeRef(denom string) Ref {
	return Ref{Kind: RefKindNative, Denom: denom}
}

// ContractRef creates a Ref for a contract-issued token.
func ContractRef(addr string) Ref {
	return Ref{Kind: RefKindContract, Contract: addr}
}

// IsNative reports whether the Ref is the native-currency variant.
func (r Ref) IsNative() bool {
	return r.Kind == RefKindNative
}

// Equal reports structural equality. Refs of different variants are never
// equal, even when denom and address strings coincide.
func (r Ref) Equal(other Ref) bool {
	if r.Kind != other.Kind {
		return false
	}
	if r.IsNative() {
		return r.Denom == other.Denom
	}
	return r.Contract == other.Contract
}

// Bytes returns the raw bytes of the denom or contract address, used as a
// storage-key component by the basket store.
func (r Ref) Bytes() []byte {
	if r.IsNative() {
		return []byte(r.Denom)
	}
	return []byte(r.Contract)
}

func (r Ref) String() string {
	if r.IsNative() {
		return r.Denom
	}
	return r.Contract
}

// AddressValidator checks contract addresses against the chain's address
// rules. Implementations must reject non-lowercase input.
type AddressValidator interface {
	ValidateAddress(addr string) error
}

// Validate checks the Ref's identifier casing. Contract addresses are
// delegated to the supplied validator after the lowercase check; native
// denoms must equal their own lowercase form unless IBC-prefixed.
func (r Ref) Validate(v AddressValidator) error {
	if r.IsNative() {
		if !strings.HasPrefix(r.Denom, ibcPrefix) && r.Denom != strings.ToLower(r.Denom) {
			return fmt.Errorf("non-IBC denom %q: %w", r.Denom, ErrNotLowercase)
		}
		return nil
	}
	if r.Contract != strings.ToLower(r.Contract) {
		return fmt.Errorf("contract address %q: %w", r.Contract, ErrNotLowercase)
	}
	return v.ValidateAddress(r.Contract)
}

// Asset is a concrete quantity of a specific asset. Created per operation,
// never persisted.
type Asset struct {
	Ref    Ref             `json:"ref"`
	Amount numeric.Uint128 `json:"amount"`
}

// NewNative creates an Asset of the native currency.
func NewNative(denom string, amount numeric.Uint128) Asset {
	return Asset{Ref: NativeRef(denom), Amount: amount}
}

// NewToken creates an Asset of a contract-issued token.
func NewToken(contract string, amount numeric.Uint128) Asset {
	return Asset{Ref: ContractRef(contract), Amount: amount}
}

// IsNative reports whether the asset is the native-currency variant.
func (a Asset) IsNative() bool {
	return a.Ref.IsNative()
}

func (a Asset) String() string {
	return a.Amount.String() + a.Ref.String()
}

// Coin is a denom/amount pair as attached to an operation's funds.
type Coin struct {
	Denom  string          `json:"denom"`
	Amount numeric.Uint128 `json:"amount"`
}
