package model

import (
	"time"
)

// OnChainTransaction is the ledger row for one consumed payment token.
// The tx_hash primary key is the token-uniqueness constraint: concurrent
// consumers of the same token produce exactly one committed row.
type OnChainTransaction struct {
	TxHash       string    `db:"tx_hash"       json:"tx_hash"`
	UserID       int64     `db:"uid"           json:"uid"`
	PingID       *int64    `db:"pid"           json:"pid"`
	TokenAddress string    `db:"token_address" json:"token_address"`
	TokenAmount  float64   `db:"token_amount"  json:"token_amount"`
	GasUsed      *int64    `db:"gas_used"      json:"gas_used"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}

// WalletBalance is a derived view over a user's transaction history.
type WalletBalance struct {
	WalletAddress   string `json:"wallet_address"`
	ETHBalance      string `json:"eth_balance"`
	USDValue        string `json:"usd_value"`
	TotalSpent      string `json:"total_spent"`
	TotalPings      int    `json:"total_pings"`
	StartingBalance string `json:"starting_balance"`
	Simulated       bool   `json:"simulated"`
}

type WalletTransaction struct {
	TxHash    string    `json:"tx_hash"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Type      string    `json:"type"`
}

type WalletTransactionsResponse struct {
	Transactions []WalletTransaction `json:"transactions"`
	TotalCount   int                 `json:"total_count"`
}

// NetworkStatus echoes the simulated payment-network configuration.
type NetworkStatus struct {
	Connected        bool    `json:"connected"`
	ChainID          int64   `json:"chain_id"`
	NetworkName      string  `json:"network_name"`
	RPCURL           string  `json:"rpc_url"`
	ContractAddress  string  `json:"contract_address"`
	PingCostETH      float64 `json:"ping_cost_eth"`
	AvailableTxCodes int     `json:"available_tx_codes"`
	Simulated        bool    `json:"simulated"`
}
