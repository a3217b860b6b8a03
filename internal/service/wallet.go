package service

import (
	"context"
	"fmt"

	"watchpay-back/internal/model"
)

const (
	startingBalanceETH = 1.0
	ethPriceUSD        = 2500.0
)

type WalletConfig struct {
	ChainID          int64
	NetworkName      string
	RPCURL           string
	ContractAddress  string
	PingCostETH      float64
	AvailableTxCodes int
	Simulated        bool
}

// WalletService derives wallet views from the transaction ledger. In
// simulated mode every account starts with the same demo balance and
// spends it one ping fee at a time.
type WalletService struct {
	userRepo UserRepository
	txRepo   TransactionRepository
	cfg      WalletConfig
}

func NewWalletService(userRepo UserRepository, txRepo TransactionRepository, cfg WalletConfig) *WalletService {
	return &WalletService{
		userRepo: userRepo,
		txRepo:   txRepo,
		cfg:      cfg,
	}
}

func (s *WalletService) Balance(ctx context.Context, userID int64) (*model.WalletBalance, error) {
	user, err := s.userRepo.SelectUserByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	transactions, err := s.txRepo.SelectTransactionsByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}

	var spent float64
	for _, tx := range transactions {
		spent += tx.TokenAmount
	}

	balance := startingBalanceETH - spent

	return &model.WalletBalance{
		WalletAddress:   user.WalletAddress,
		ETHBalance:      fmt.Sprintf("%.6f", balance),
		USDValue:        fmt.Sprintf("%.2f", balance*ethPriceUSD),
		TotalSpent:      fmt.Sprintf("%.6f", spent),
		TotalPings:      len(transactions),
		StartingBalance: fmt.Sprintf("%.6f", startingBalanceETH),
		Simulated:       s.cfg.Simulated,
	}, nil
}

func (s *WalletService) Transactions(ctx context.Context, userID int64) (*model.WalletTransactionsResponse, error) {
	transactions, err := s.txRepo.SelectTransactionsByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}

	out := make([]model.WalletTransaction, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, model.WalletTransaction{
			TxHash:    tx.TxHash,
			Amount:    tx.TokenAmount,
			Timestamp: tx.CreatedAt,
			Status:    "confirmed",
			Type:      "ping_payment",
		})
	}

	return &model.WalletTransactionsResponse{
		Transactions: out,
		TotalCount:   len(out),
	}, nil
}

func (s *WalletService) NetworkStatus(_ context.Context) *model.NetworkStatus {
	return &model.NetworkStatus{
		Connected:        true,
		ChainID:          s.cfg.ChainID,
		NetworkName:      s.cfg.NetworkName,
		RPCURL:           s.cfg.RPCURL,
		ContractAddress:  s.cfg.ContractAddress,
		PingCostETH:      s.cfg.PingCostETH,
		AvailableTxCodes: s.cfg.AvailableTxCodes,
		Simulated:        s.cfg.Simulated,
	}
}
