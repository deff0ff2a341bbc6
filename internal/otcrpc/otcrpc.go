package otcrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/riftresearch/swap-coordinator/internal/consts"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

type otcRpc struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func New(cfg *config.AppConfig, logger *logger.Logger) IOtcRpc {
	return &otcRpc{
		baseURL: cfg.Otc.BaseURL,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: logger,
	}
}

type createSwapReply struct {
	SwapID         string `json:"swap_id"`
	DepositAddress string `json:"deposit_address"`
	ExpectedAmount string `json:"expected_amount"`
	Decimals       int    `json:"decimals"`
}

type swapRecordReply struct {
	SwapID          string `json:"swap_id"`
	Status          string `json:"status"`
	DepositAddress  string `json:"deposit_address"`
	UserTxHash      string `json:"user_tx_hash"`
	MMTxHash        string `json:"mm_tx_hash"`
	RefundAvailable bool   `json:"is_refund_available"`
	CreatedAt       int64  `json:"created_at"`
}

func (c *otcRpc) CreateSwap(ctx context.Context, req *CreateSwapRequest) (*CreateSwapResponse, error) {
	payload := map[string]any{
		"direction":           req.Direction,
		"input_symbol":        req.InputSymbol,
		"output_symbol":       req.OutputSymbol,
		"input_amount":        req.InputAmount.Value,
		"output_amount":       req.OutputAmount.Value,
		"destination_address": req.DestinationAddress,
		"evm_address":         req.EvmAddress,
		"metadata":            req.Metadata,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode create swap request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/swaps", bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, model.NewSwapError(model.ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewSwapError(model.ErrTransport, err.Error())
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("[CreateSwap] request failed", map[string]string{
			"statusCode": fmt.Sprintf("%d", resp.StatusCode),
			"body":       string(body),
		})
		return nil, c.mapError(resp.StatusCode, body)
	}

	var reply createSwapReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, errors.Wrap(err, "failed to decode create swap response")
	}

	decimals := reply.Decimals
	if decimals == 0 {
		decimals = consts.BTC_DECIMALS
	}

	return &CreateSwapResponse{
		SwapID:         reply.SwapID,
		DepositAddress: reply.DepositAddress,
		ExpectedAmount: &model.Web3BigInt{Value: reply.ExpectedAmount, Decimal: decimals},
	}, nil
}

func (c *otcRpc) GetSwap(ctx context.Context, swapID string) (*SwapRecord, error) {
	url := fmt.Sprintf("%s/v1/swaps/%s", c.baseURL, swapID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, model.NewSwapError(model.ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewSwapError(model.ErrTransport, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.mapError(resp.StatusCode, body)
	}

	var reply swapRecordReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, errors.Wrap(err, "failed to decode swap record")
	}
	return recordFromReply(reply), nil
}

func recordFromReply(reply swapRecordReply) *SwapRecord {
	return &SwapRecord{
		SwapID:          reply.SwapID,
		Status:          model.SwapStatus(reply.Status),
		DepositAddress:  reply.DepositAddress,
		UserTxHash:      reply.UserTxHash,
		MMTxHash:        reply.MMTxHash,
		RefundAvailable: reply.RefundAvailable,
		CreatedAt:       time.Unix(reply.CreatedAt, 0),
	}
}

// mapError distinguishes the compliance rejection, which is terminal and
// must never be auto-retried.
func (c *otcRpc) mapError(statusCode int, body []byte) error {
	if statusCode >= http.StatusInternalServerError {
		return model.NewSwapError(model.ErrServiceUnavailable,
			fmt.Sprintf("otc service returned %d", statusCode))
	}

	var reply struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return model.NewSwapError(model.ErrTransport, string(body))
	}

	if statusCode == http.StatusForbidden || strings.Contains(reply.Code, "COMPLIANCE") {
		return model.NewSwapError(model.ErrComplianceRejected, reply.Message)
	}
	return model.NewSwapError(model.ErrTransport, reply.Message)
}
