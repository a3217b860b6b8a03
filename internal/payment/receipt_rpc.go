package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"watchpay-back/internal/apperrors"
)

const (
	rpcTimeout       = 10 * time.Second
	weiPerETH        = 1e18
	receiptSucceeded = "0x1"
)

// LedgerReceiptVerifier validates a token against a real Ethereum-style
// node by looking up the transaction receipt over JSON-RPC. A token is
// valid when the receipt exists, succeeded, and pays the contract at
// least the ping fee.
type LedgerReceiptVerifier struct {
	rpcURL   string
	contract string
	fee      float64
	http     *http.Client
}

func NewLedgerReceiptVerifier(rpcURL, contract string, fee float64) *LedgerReceiptVerifier {
	if fee <= 0 {
		fee = DefaultPingCostETH
	}

	return &LedgerReceiptVerifier{
		rpcURL:   rpcURL,
		contract: strings.ToLower(contract),
		fee:      fee,
		http:     &http.Client{Timeout: rpcTimeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result *txReceipt `json:"result"`
	Error  *rpcError  `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type txReceipt struct {
	Status  string `json:"status"`
	To      string `json:"to"`
	GasUsed string `json:"gasUsed"`
}

type rpcTx struct {
	Value string `json:"value"`
}

func (v *LedgerReceiptVerifier) Verify(ctx context.Context, txHash string) (*Receipt, error) {
	receipt, err := v.fetchReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}

	if receipt == nil {
		return nil, fmt.Errorf("no receipt for %q: %w", txHash, apperrors.ErrInvalidPaymentToken)
	}

	if receipt.Status != receiptSucceeded {
		return nil, fmt.Errorf("transaction %q failed on chain: %w", txHash, apperrors.ErrInvalidPaymentToken)
	}

	if v.contract != "" && strings.ToLower(receipt.To) != v.contract {
		return nil, fmt.Errorf("transaction %q does not pay the ping contract: %w", txHash, apperrors.ErrInvalidPaymentToken)
	}

	amount, err := v.fetchValue(ctx, txHash)
	if err != nil {
		return nil, err
	}

	if amount < v.fee {
		return nil, fmt.Errorf("transaction %q underpays the ping fee: %w", txHash, apperrors.ErrInvalidPaymentToken)
	}

	var gasUsed *int64
	if gas, err := parseHexInt(receipt.GasUsed); err == nil {
		gasUsed = &gas
	}

	return &Receipt{
		TxHash:  txHash,
		Amount:  amount,
		GasUsed: gasUsed,
	}, nil
}

func (v *LedgerReceiptVerifier) fetchReceipt(ctx context.Context, txHash string) (*txReceipt, error) {
	var resp rpcResponse
	if err := v.call(ctx, "eth_getTransactionReceipt", []any{txHash}, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	return resp.Result, nil
}

func (v *LedgerReceiptVerifier) fetchValue(ctx context.Context, txHash string) (float64, error) {
	var resp struct {
		Result *rpcTx    `json:"result"`
		Error  *rpcError `json:"error"`
	}

	if err := v.call(ctx, "eth_getTransactionByHash", []any{txHash}, &resp); err != nil {
		return 0, err
	}

	if resp.Error != nil {
		return 0, fmt.Errorf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	if resp.Result == nil {
		return 0, fmt.Errorf("no transaction for %q: %w", txHash, apperrors.ErrInvalidPaymentToken)
	}

	wei, err := parseHexInt(resp.Result.Value)
	if err != nil {
		return 0, fmt.Errorf("malformed transaction value: %w", err)
	}

	return float64(wei) / weiPerETH, nil
}

func (v *LedgerReceiptVerifier) call(ctx context.Context, method string, params []any, out any) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build rpc request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := v.http.Do(req)
	if err != nil {
		return fmt.Errorf("rpc node unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read rpc response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc node returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode rpc response: %w", err)
	}

	return nil
}

func parseHexInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(s, "0x"), 16, 64)
}
