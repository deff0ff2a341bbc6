package rfqrpc

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

type rfqRpc struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func New(cfg *config.AppConfig, logger *logger.Logger) IRfqRpc {
	return &rfqRpc{
		baseURL: cfg.Rfq.BaseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

type quotePayload struct {
	Type   string `json:"type"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type quoteReply struct {
	From struct {
		Amount   string `json:"amount"`
		Decimals int    `json:"decimals"`
	} `json:"from"`
	To struct {
		Amount   string `json:"amount"`
		Decimals int    `json:"decimals"`
	} `json:"to"`
	Fees struct {
		Usd float64 `json:"usd"`
		Raw string  `json:"raw"`
	} `json:"fees"`
	BitcoinMarkPriceUsd float64 `json:"bitcoin_mark_price_usd"`
	ExpiresAt           int64   `json:"expires_at"`
}

type errorReply struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *rfqRpc) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	mode := "exact_input"
	if req.Type == model.ExactOutput {
		mode = "exact_output"
	}
	payload := quotePayload{
		Type:   mode,
		From:   req.From.Symbol,
		To:     req.To.Symbol,
		Amount: req.Amount.Value,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode quote request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/quote", bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create quote request")
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

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("[Quote] rfq request failed", map[string]string{
			"statusCode": fmt.Sprintf("%d", resp.StatusCode),
			"body":       string(body),
		})
		return nil, c.mapError(resp.StatusCode, body)
	}

	var reply quoteReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, errors.Wrap(err, "failed to decode quote response")
	}

	return &QuoteResponse{
		FromAmount: &model.Web3BigInt{Value: reply.From.Amount, Decimal: reply.From.Decimals},
		ToAmount:   &model.Web3BigInt{Value: reply.To.Amount, Decimal: reply.To.Decimals},
		FeesUsd:    reply.Fees.Usd,
		FeesRaw:    &model.Web3BigInt{Value: reply.Fees.Raw, Decimal: reply.From.Decimals},

		BitcoinMarkPriceUsd: reply.BitcoinMarkPriceUsd,
		ExpiresAt:           time.Unix(reply.ExpiresAt, 0),
	}, nil
}

func (c *rfqRpc) mapError(statusCode int, body []byte) error {
	if statusCode >= http.StatusInternalServerError {
		return model.NewSwapError(model.ErrServiceUnavailable,
			fmt.Sprintf("rfq service returned %d", statusCode))
	}

	var reply errorReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return model.NewSwapError(model.ErrTransport, string(body))
	}

	switch {
	case strings.Contains(reply.Code, "AMOUNT_TOO_LOW"):
		return model.NewSwapError(model.ErrBelowMinimum, reply.Message)
	case strings.Contains(reply.Code, "AMOUNT_TOO_HIGH"),
		strings.Contains(reply.Code, "INSUFFICIENT_LIQUIDITY"):
		return model.NewSwapError(model.ErrExceedsLiquidity, reply.Message)
	case strings.Contains(reply.Code, "UNSUPPORTED_PAIR"):
		return model.NewSwapError(model.ErrNoRoute, reply.Message)
	case strings.Contains(reply.Code, "QUOTE_EXPIRED"):
		return model.NewSwapError(model.ErrQuoteExpired, reply.Message)
	default:
		return model.NewSwapError(model.ErrTransport, reply.Message)
	}
}
