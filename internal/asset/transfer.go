package asset

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/basketfi/valuation/internal/numeric"
)

// OutboundMessage is a transfer instruction for the surrounding protocol
// layer to dispatch. The core only constructs these.
type OutboundMessage interface {
	isOutbound()
}

// BankSend moves native currency to a recipient address.
type BankSend struct {
	ToAddress string `json:"toAddress"`
	Amount    []Coin `json:"amount"`
}

func (BankSend) isOutbound() {}

// ContractInvoke instructs a token contract to execute an encoded message.
type ContractInvoke struct {
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
	Funds    []Coin          `json:"funds"`
}

func (ContractInvoke) isOutbound() {}

type tokenTransferMsg struct {
	Transfer struct {
		Recipient string          `json:"recipient"`
		Amount    numeric.Uint128 `json:"amount"`
	} `json:"transfer"`
}

// BuildTransfer produces the outbound message that delivers the asset to the
// recipient. Native transfers deduct the transfer tax first; token transfers
// are invoked on the token contract untaxed, since the contract applies its
// own fee handling.
func BuildTransfer(a Asset, recipient string, taxRate decimal.Decimal, taxCap numeric.Uint128) (OutboundMessage, error) {
	if !a.IsNative() {
		var msg tokenTransferMsg
		msg.Transfer.Recipient = recipient
		msg.Transfer.Amount = a.Amount
		encoded, err := json.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("encoding token transfer: %w", err)
		}
		return ContractInvoke{Contract: a.Ref.Contract, Msg: encoded}, nil
	}

	deliverable, err := DeductTax(a, taxRate, taxCap)
	if err != nil {
		return nil, fmt.Errorf("building native transfer: %w", err)
	}
	return BankSend{
		ToAddress: recipient,
		Amount:    []Coin{{Denom: a.Ref.Denom, Amount: deliverable}},
	}, nil
}
