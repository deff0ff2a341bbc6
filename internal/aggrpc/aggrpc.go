package aggrpc

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

	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

type aggRpc struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func New(cfg *config.AppConfig, logger *logger.Logger) IAggRpc {
	return &aggRpc{
		baseURL: cfg.Aggregator.BaseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

type quotePayload struct {
	SellToken    string `json:"sellToken"`
	BuyToken     string `json:"buyToken"`
	SellAmount   string `json:"sellAmountBeforeFee,omitempty"`
	BuyAmount    string `json:"buyAmountAfterFee,omitempty"`
	Kind         string `json:"kind"`
	PriceQuality string `json:"priceQuality"`
	SlippageBps  int    `json:"slippageBps"`
	ChainID      int64  `json:"chainId"`
	Receiver     string `json:"receiver,omitempty"`
}

type quoteReply struct {
	Quote struct {
		SellAmount string `json:"sellAmount"`
		BuyAmount  string `json:"buyAmount"`
		FeeUsd     string `json:"feeAmountUsd"`
	} `json:"quote"`
	ValidFor int64 `json:"validFor"`
}

type errorReply struct {
	ErrorType   string `json:"errorType"`
	Description string `json:"description"`
}

func (c *aggRpc) GetQuote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	kind := "sell"
	if req.Kind == model.ExactOutput {
		kind = "buy"
	}
	payload := quotePayload{
		SellToken:    req.SellToken,
		BuyToken:     req.BuyToken,
		Kind:         kind,
		PriceQuality: string(req.Quality),
		SlippageBps:  req.SlippageBps,
		ChainID:      req.ChainID,
		Receiver:     req.Receiver,
	}
	if req.SellAmount != nil {
		payload.SellAmount = req.SellAmount.Value
	}
	if req.BuyAmount != nil {
		payload.BuyAmount = req.BuyAmount.Value
	}

	body, err := c.post(ctx, "/api/v1/quote", payload)
	if err != nil {
		return nil, err
	}

	var reply quoteReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, errors.Wrap(err, "failed to decode quote response")
	}

	resp := &QuoteResponse{
		SellAmount: &model.Web3BigInt{Value: reply.Quote.SellAmount, Decimal: req.SellDecimals},
		BuyAmount:  &model.Web3BigInt{Value: reply.Quote.BuyAmount, Decimal: req.BuyDecimals},
		ValidFor:   time.Duration(reply.ValidFor) * time.Second,
	}
	fmt.Sscanf(reply.Quote.FeeUsd, "%f", &resp.FeeUsd)
	return resp, nil
}

func (c *aggRpc) SubmitOrder(ctx context.Context, req *OrderRequest) (string, error) {
	payload := map[string]any{
		"sellToken":  req.SellToken,
		"buyToken":   req.BuyToken,
		"sellAmount": req.SellAmount.Value,
		"buyAmount":  req.BuyAmount.Value,
		"kind":       map[model.Exactness]string{model.ExactInput: "sell", model.ExactOutput: "buy"}[req.Kind],
		"receiver":   req.Receiver,
		"from":       req.From,
		"signature":  req.Signature,
		"validTo":    req.ValidTo,
	}

	body, err := c.post(ctx, "/api/v1/orders", payload)
	if err != nil {
		return "", err
	}

	// The order endpoint replies with the bare order uid as a JSON string.
	var orderID string
	if err := json.Unmarshal(body, &orderID); err != nil {
		return "", errors.Wrap(err, "failed to decode order id")
	}
	return orderID, nil
}

func (c *aggRpc) GetOrderStatus(ctx context.Context, orderID string) (*OrderStatusResponse, error) {
	url := fmt.Sprintf("%s/api/v1/orders/%s/status", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create status request")
	}

	resp, err := c.client.Do(req)
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

	var reply struct {
		Status     string `json:"type"`
		SellAmount string `json:"executedSellAmount"`
		BuyAmount  string `json:"executedBuyAmount"`
		TxHash     string `json:"txHash"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, errors.Wrap(err, "failed to decode order status")
	}

	return &OrderStatusResponse{
		Status:     OrderFillState(reply.Status),
		SellAmount: &model.Web3BigInt{Value: reply.SellAmount, Decimal: 0},
		BuyAmount:  &model.Web3BigInt{Value: reply.BuyAmount, Decimal: 0},
		TxHash:     reply.TxHash,
	}, nil
}

func (c *aggRpc) post(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, model.NewSwapError(model.ErrTransport, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewSwapError(model.ErrTransport, err.Error())
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("[aggrpc][post] request failed", map[string]string{
			"path":       path,
			"statusCode": fmt.Sprintf("%d", resp.StatusCode),
			"body":       string(body),
		})
		return nil, c.mapError(resp.StatusCode, body)
	}
	return body, nil
}

// mapError translates the service's error envelope into the typed failure
// taxonomy. Unknown shapes collapse to a transport failure.
func (c *aggRpc) mapError(statusCode int, body []byte) error {
	if statusCode >= http.StatusInternalServerError {
		return model.NewSwapError(model.ErrServiceUnavailable,
			fmt.Sprintf("aggregator returned %d", statusCode))
	}

	var reply errorReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return model.NewSwapError(model.ErrTransport, string(body))
	}

	switch {
	case strings.Contains(reply.ErrorType, "NoLiquidity"),
		strings.Contains(reply.ErrorType, "SellAmountDoesNotCoverFee"):
		return model.NewSwapError(model.ErrInsufficientLiquidity, reply.Description)
	case strings.Contains(reply.ErrorType, "UnsupportedToken"),
		strings.Contains(reply.ErrorType, "NoRoute"):
		return model.NewSwapError(model.ErrNoRoute, reply.Description)
	case strings.Contains(reply.ErrorType, "QuoteExpired"),
		strings.Contains(reply.ErrorType, "InvalidQuote"):
		return model.NewSwapError(model.ErrQuoteExpired, reply.Description)
	default:
		return model.NewSwapError(model.ErrTransport, reply.Description)
	}
}
