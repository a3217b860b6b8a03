package payment

import (
	"context"
	"fmt"

	"watchpay-back/internal/apperrors"
)

const (
	// DefaultPingCostETH is the fee a single manual ping burns when the
	// ledger runs in simulated mode.
	DefaultPingCostETH = 0.0002

	poolSize   = 20
	poolPrefix = "TX-%03d"
)

// Receipt describes a validated payment token. GasUsed is nil when the
// backing ledger does not report gas (simulated mode).
type Receipt struct {
	TxHash    string
	Amount    float64
	GasUsed   *int64
	Simulated bool
}

// Verifier checks that a payment token names a real, well-formed
// payment before it may be burned. Verification is stateless, the
// one-use guarantee lives in the transaction ledger, not here.
type Verifier interface {
	Verify(ctx context.Context, txHash string) (*Receipt, error)
}

// FixedPoolVerifier accepts tokens from a fixed demo pool. Tokens are
// reusable across environments but still one-use per deployment thanks
// to the ledger primary key.
type FixedPoolVerifier struct {
	pool map[string]struct{}
	fee  float64
}

func NewFixedPoolVerifier(fee float64) *FixedPoolVerifier {
	if fee <= 0 {
		fee = DefaultPingCostETH
	}

	pool := make(map[string]struct{}, poolSize)
	for i := 1; i <= poolSize; i++ {
		pool[fmt.Sprintf(poolPrefix, i)] = struct{}{}
	}

	return &FixedPoolVerifier{pool: pool, fee: fee}
}

func (v *FixedPoolVerifier) Verify(_ context.Context, txHash string) (*Receipt, error) {
	if _, ok := v.pool[txHash]; !ok {
		return nil, fmt.Errorf("token %q is not in the payment pool: %w", txHash, apperrors.ErrInvalidPaymentToken)
	}

	return &Receipt{
		TxHash:    txHash,
		Amount:    v.fee,
		Simulated: true,
	}, nil
}

// Codes returns the accepted token pool in order. Used by the network
// status endpoint so clients can discover usable tokens.
func (v *FixedPoolVerifier) Codes() []string {
	codes := make([]string, 0, poolSize)
	for i := 1; i <= poolSize; i++ {
		codes = append(codes, fmt.Sprintf(poolPrefix, i))
	}

	return codes
}
