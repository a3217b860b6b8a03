package model

import (
	"time"
)

// Ping is one recorded uptime-check result. Rows are immutable after
// creation; a manual ping always references the payment token that paid
// for it.
type Ping struct {
	ID        int64     `db:"pid"              json:"pid"`
	WebsiteID int64     `db:"wid"              json:"wid"`
	UserID    int64     `db:"uid"              json:"uid"`
	TxHash    string    `db:"tx_hash"          json:"tx_hash,omitempty"`
	IsUp      bool      `db:"is_up"            json:"is_up"`
	LatencyMS *int64    `db:"latency_ms"       json:"latency_ms"`
	Region    string    `db:"region"           json:"region"`
	FeePaid   float64   `db:"fee_paid_numeric" json:"fee_paid_numeric"`
	CreatedAt time.Time `db:"created_at"       json:"created_at"`
}

type PingIDPathParam struct {
	ID int64 `uri:"ping_id" binding:"required" example:"104"`
}

// ManualPingRequest is the body of POST /pings/manual. The tx_hash is a
// single-use payment token from the configured pool (or an on-chain
// transaction hash in receipt mode).
type ManualPingRequest struct {
	WebsiteID int64  `json:"wid" binding:"required"`
	URL       string `json:"url" binding:"required,url"`
	TxHash    string `json:"tx_hash" binding:"required"`
}

// ValidatorPingRequest is an automated ping submitted by a validator agent
// authenticated with an API key. No payment token is involved.
type ValidatorPingRequest struct {
	WebsiteID int64  `json:"wid" binding:"required"`
	IsUp      bool   `json:"is_up"`
	LatencyMS *int64 `json:"latency_ms"`
	Region    string `json:"region"`
}

// OnChainSummary describes the settlement side of a recorded manual ping.
type OnChainSummary struct {
	TxHash    string  `json:"tx_hash"`
	Amount    float64 `json:"amount"`
	GasUsed   *int64  `json:"gas_used"`
	Simulated bool    `json:"simulated"`
}

// ManualPingResult is the composite outcome of the manual-ping workflow:
// the persisted ping, its settlement record and the raw agent verdict.
type ManualPingResult struct {
	Ping    *Ping          `json:"ping"`
	OnChain OnChainSummary `json:"onchain"`
	Result  ProbeResult    `json:"result"`
}
