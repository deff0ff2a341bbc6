package btcrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"

	"github.com/riftresearch/swap-coordinator/internal/consts"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

type BtcRpc struct {
	appConfig *config.AppConfig
	logger    *logger.Logger
	client    *http.Client
	params    *chaincfg.Params
}

func New(appConfig *config.AppConfig, logger *logger.Logger) IBtcRpc {
	params := &chaincfg.MainNetParams
	switch appConfig.Bitcoin.Network {
	case "testnet", "testnet3":
		params = &chaincfg.TestNet3Params
	case "regtest":
		params = &chaincfg.RegressionNetParams
	}

	return &BtcRpc{
		appConfig: appConfig,
		logger:    logger,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		params: params,
	}
}

func (b *BtcRpc) ValidateAddress(address string) error {
	if address == "" {
		return model.NewSwapError(model.ErrInvalidDestination, "address is empty")
	}

	addr, err := btcutil.DecodeAddress(address, b.params)
	if err != nil {
		return model.NewSwapError(model.ErrInvalidDestination, err.Error())
	}
	if !addr.IsForNet(b.params) {
		return model.NewSwapError(model.ErrInvalidDestination,
			fmt.Sprintf("address is not valid for network %s", b.params.Name))
	}
	return nil
}

type addressReply struct {
	ChainStats struct {
		FundedSum int64 `json:"funded_txo_sum"`
		SpentSum  int64 `json:"spent_txo_sum"`
	} `json:"chain_stats"`
	MempoolStats struct {
		FundedSum int64 `json:"funded_txo_sum"`
		SpentSum  int64 `json:"spent_txo_sum"`
	} `json:"mempool_stats"`
}

func (b *BtcRpc) AddressBalance(ctx context.Context, address string) (*model.Web3BigInt, error) {
	url := fmt.Sprintf("%s/address/%s", b.appConfig.Bitcoin.EsploraAPIURL, address)

	var lastErr error
	maxRetries := 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create request")
		}

		resp, err := b.client.Do(req)
		if err != nil {
			lastErr = err
			b.logger.Error("[AddressBalance][client.Do]", map[string]string{
				"error":   err.Error(),
				"attempt": fmt.Sprintf("%d", attempt),
			})
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = errors.Errorf("unexpected status code: %d", resp.StatusCode)
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}

		var reply addressReply
		if err := json.Unmarshal(body, &reply); err != nil {
			return nil, errors.Wrap(err, "failed to decode address response")
		}

		// Mempool outputs count: a sweep in flight already empties the
		// address for refund-detection purposes.
		confirmed := reply.ChainStats.FundedSum - reply.ChainStats.SpentSum
		pending := reply.MempoolStats.FundedSum - reply.MempoolStats.SpentSum
		return &model.Web3BigInt{
			Value:   fmt.Sprintf("%d", confirmed+pending),
			Decimal: consts.BTC_DECIMALS,
		}, nil
	}

	return nil, model.NewSwapError(model.ErrTransport, lastErr.Error())
}

func (b *BtcRpc) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/blocks/tip/height", b.appConfig.Bitcoin.EsploraAPIURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "esplora unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
