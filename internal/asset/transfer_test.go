package asset

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/basketfi/valuation/internal/numeric"
)

func TestBuildTransferToken(t *testing.T) {
	a := NewToken("wasm1token", numeric.New(250))
	msg, err := BuildTransfer(a, "wasm1recipient", decimal.RequireFromString("0.01"), numeric.New(1_000))
	if err != nil {
		t.Fatalf("BuildTransfer error: %v", err)
	}

	invoke, ok := msg.(ContractInvoke)
	if !ok {
		t.Fatalf("BuildTransfer returned %T, want ContractInvoke", msg)
	}
	if invoke.Contract != "wasm1token" {
		t.Errorf("Contract = %q, want wasm1token", invoke.Contract)
	}
	if len(invoke.Funds) != 0 {
		t.Errorf("Funds = %v, want empty", invoke.Funds)
	}

	var decoded tokenTransferMsg
	if err := json.Unmarshal(invoke.Msg, &decoded); err != nil {
		t.Fatalf("unmarshal transfer msg: %v", err)
	}
	if decoded.Transfer.Recipient != "wasm1recipient" {
		t.Errorf("Recipient = %q, want wasm1recipient", decoded.Transfer.Recipient)
	}
	// Token transfers carry the full amount: no tax deduction.
	if !decoded.Transfer.Amount.Equal(numeric.New(250)) {
		t.Errorf("Amount = %s, want 250", decoded.Transfer.Amount)
	}
}

func TestBuildTransferNativeDeductsTax(t *testing.T) {
	a := NewNative("uusd", numeric.New(1_000_000))
	msg, err := BuildTransfer(a, "wasm1recipient", decimal.RequireFromString("0.005"), numeric.New(1_000_000))
	if err != nil {
		t.Fatalf("BuildTransfer error: %v", err)
	}

	send, ok := msg.(BankSend)
	if !ok {
		t.Fatalf("BuildTransfer returned %T, want BankSend", msg)
	}
	if send.ToAddress != "wasm1recipient" {
		t.Errorf("ToAddress = %q, want wasm1recipient", send.ToAddress)
	}
	if len(send.Amount) != 1 {
		t.Fatalf("Amount has %d coins, want 1", len(send.Amount))
	}
	if send.Amount[0].Denom != "uusd" {
		t.Errorf("Denom = %q, want uusd", send.Amount[0].Denom)
	}
	if !send.Amount[0].Amount.Equal(numeric.New(995_024)) {
		t.Errorf("post-tax amount = %s, want 995024", send.Amount[0].Amount)
	}
}

func TestBuildTransferPropagatesTaxError(t *testing.T) {
	a := NewNative("uusd", numeric.New(100))
	if _, err := BuildTransfer(a, "wasm1recipient", decimal.RequireFromString("1.5"), numeric.New(10)); err == nil {
		t.Error("BuildTransfer accepted an invalid tax rate")
	}
}
