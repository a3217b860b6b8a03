package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"watchpay-back/internal/apperrors"
)

func TestFixedPoolVerifier(t *testing.T) {
	v := NewFixedPoolVerifier(0)

	tests := []struct {
		name    string
		txHash  string
		wantErr bool
	}{
		{name: "first pool token", txHash: "TX-001"},
		{name: "last pool token", txHash: "TX-020"},
		{name: "out of pool", txHash: "TX-021", wantErr: true},
		{name: "wrong format", txHash: "TX-1", wantErr: true},
		{name: "empty", txHash: "", wantErr: true},
		{name: "hex hash rejected in simulated mode", txHash: "0xdeadbeef", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt, err := v.Verify(context.Background(), tt.txHash)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidPaymentToken) {
					t.Fatalf("Verify() error = %v, want ErrInvalidPaymentToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if receipt.Amount != DefaultPingCostETH {
				t.Errorf("Amount = %v, want %v", receipt.Amount, DefaultPingCostETH)
			}
			if !receipt.Simulated {
				t.Error("Simulated = false, want true")
			}
			if receipt.GasUsed != nil {
				t.Errorf("GasUsed = %v, want nil", *receipt.GasUsed)
			}
		})
	}
}

func TestFixedPoolVerifierCodes(t *testing.T) {
	v := NewFixedPoolVerifier(0)

	codes := v.Codes()
	if len(codes) != 20 {
		t.Fatalf("len(Codes()) = %d, want 20", len(codes))
	}
	if codes[0] != "TX-001" || codes[19] != "TX-020" {
		t.Errorf("Codes() bounds = %s..%s, want TX-001..TX-020", codes[0], codes[19])
	}
}

func TestLedgerReceiptVerifier(t *testing.T) {
	const (
		contract = "0xabc0000000000000000000000000000000000001"
		goodTx   = "0xfeed"
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode rpc request: %v", err)
		}

		switch req.Method {
		case "eth_getTransactionReceipt":
			if req.Params[0] != goodTx {
				_, _ = w.Write([]byte(`{"result":null}`))
				return
			}
			_, _ = w.Write([]byte(`{"result":{"status":"0x1","to":"` + contract + `","gasUsed":"0x5208"}}`))
		case "eth_getTransactionByHash":
			// 0.0002 ETH in wei.
			_, _ = w.Write([]byte(`{"result":{"value":"0xb5e620f48000"}}`))
		default:
			t.Errorf("unexpected rpc method %s", req.Method)
		}
	}))
	defer srv.Close()

	v := NewLedgerReceiptVerifier(srv.URL, contract, 0.0002)

	receipt, err := v.Verify(context.Background(), goodTx)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if receipt.Simulated {
		t.Error("Simulated = true, want false")
	}
	if receipt.Amount != 0.0002 {
		t.Errorf("Amount = %v, want 0.0002", receipt.Amount)
	}
	if receipt.GasUsed == nil || *receipt.GasUsed != 21000 {
		t.Errorf("GasUsed = %v, want 21000", receipt.GasUsed)
	}

	if _, err := v.Verify(context.Background(), "0xmissing"); !errors.Is(err, apperrors.ErrInvalidPaymentToken) {
		t.Errorf("Verify(missing) error = %v, want ErrInvalidPaymentToken", err)
	}
}

func TestLedgerReceiptVerifierFailedTx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"status":"0x0","to":"0xabc","gasUsed":"0x5208"}}`))
	}))
	defer srv.Close()

	v := NewLedgerReceiptVerifier(srv.URL, "", 0.0002)

	if _, err := v.Verify(context.Background(), "0xdead"); !errors.Is(err, apperrors.ErrInvalidPaymentToken) {
		t.Errorf("Verify(failed tx) error = %v, want ErrInvalidPaymentToken", err)
	}
}
