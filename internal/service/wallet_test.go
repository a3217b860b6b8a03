package service

import (
	"context"
	"testing"
)

func TestWalletBalance(t *testing.T) {
	h := newPingHarness(t)
	ctx := context.Background()

	svc := NewWalletService(h.users, h.ledger, WalletConfig{
		ChainID:          11155111,
		NetworkName:      "sepolia",
		PingCostETH:      0.0002,
		AvailableTxCodes: 20,
		Simulated:        true,
	})

	if _, err := h.svc.ManualPing(ctx, 2, manualReq("TX-001"), nil); err != nil {
		t.Fatalf("ManualPing() error = %v", err)
	}
	if _, err := h.svc.ManualPing(ctx, 2, manualReq("TX-002"), nil); err != nil {
		t.Fatalf("ManualPing() error = %v", err)
	}

	balance, err := svc.Balance(ctx, 2)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}

	if balance.TotalPings != 2 {
		t.Errorf("TotalPings = %d, want 2", balance.TotalPings)
	}
	if balance.TotalSpent != "0.000400" {
		t.Errorf("TotalSpent = %q, want 0.000400", balance.TotalSpent)
	}
	if balance.ETHBalance != "0.999600" {
		t.Errorf("ETHBalance = %q, want 0.999600", balance.ETHBalance)
	}
	if !balance.Simulated {
		t.Error("Simulated = false, want true")
	}

	transactions, err := svc.Transactions(ctx, 2)
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if transactions.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", transactions.TotalCount)
	}

	status := svc.NetworkStatus(ctx)
	if status.AvailableTxCodes != 20 {
		t.Errorf("AvailableTxCodes = %d, want 20", status.AvailableTxCodes)
	}
	if !status.Connected {
		t.Error("Connected = false, want true")
	}
}

func TestWalletBalanceEmptyLedger(t *testing.T) {
	h := newPingHarness(t)

	svc := NewWalletService(h.users, h.ledger, WalletConfig{Simulated: true})

	balance, err := svc.Balance(context.Background(), 1)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}

	if balance.ETHBalance != "1.000000" {
		t.Errorf("ETHBalance = %q, want 1.000000", balance.ETHBalance)
	}
	if balance.TotalPings != 0 {
		t.Errorf("TotalPings = %d, want 0", balance.TotalPings)
	}
}
