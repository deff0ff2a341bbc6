package baserpc

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/riftresearch/swap-coordinator/internal/contracts/erc20"
	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

type BaseRpc struct {
	appConfig *config.AppConfig
	logger    *logger.Logger
	client    *ethclient.Client
	chainID   *big.Int
	signerKey *ecdsa.PrivateKey
	signer    common.Address
}

func New(appConfig *config.AppConfig, logger *logger.Logger) (IBaseRpc, error) {
	client, err := ethclient.Dial(appConfig.Ethereum.RPCEndpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial eth rpc")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(appConfig.Ethereum.SignerPrivateKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse signer key")
	}

	return &BaseRpc{
		appConfig: appConfig,
		logger:    logger,
		client:    client,
		chainID:   big.NewInt(appConfig.Ethereum.ChainID),
		signerKey: key,
		signer:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (b *BaseRpc) Client() *ethclient.Client {
	return b.client
}

func (b *BaseRpc) SignerAddress() string {
	return b.signer.Hex()
}

func (b *BaseRpc) Allowance(ctx context.Context, token, owner, spender string, decimals int) (*model.Web3BigInt, error) {
	instance, err := erc20.NewErc20(common.HexToAddress(token), b.client)
	if err != nil {
		return nil, err
	}
	allowance, err := instance.Allowance(&bind.CallOpts{Context: ctx},
		common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return nil, err
	}
	return &model.Web3BigInt{
		Value:   allowance.String(),
		Decimal: decimals,
	}, nil
}

func (b *BaseRpc) BalanceOf(ctx context.Context, token, owner string, decimals int) (*model.Web3BigInt, error) {
	instance, err := erc20.NewErc20(common.HexToAddress(token), b.client)
	if err != nil {
		return nil, err
	}
	balance, err := instance.BalanceOf(&bind.CallOpts{Context: ctx}, common.HexToAddress(owner))
	if err != nil {
		return nil, err
	}
	return &model.Web3BigInt{
		Value:   balance.String(),
		Decimal: decimals,
	}, nil
}

func (b *BaseRpc) Approve(ctx context.Context, token, spender string, amount *model.Web3BigInt) (string, error) {
	instance, err := erc20.NewErc20(common.HexToAddress(token), b.client)
	if err != nil {
		return "", err
	}

	opts, err := b.transactOpts(ctx)
	if err != nil {
		return "", err
	}

	value, ok := new(big.Int).SetString(amount.Value, 10)
	if !ok {
		return "", errors.Errorf("invalid amount %q", amount.Value)
	}

	tx, err := instance.Approve(opts, common.HexToAddress(spender), value)
	if err != nil {
		return "", model.NewSwapError(model.ErrApprovalRejected, err.Error())
	}
	return tx.Hash().Hex(), nil
}

func (b *BaseRpc) TransferToken(ctx context.Context, token, to string, amount *model.Web3BigInt) (string, error) {
	instance, err := erc20.NewErc20(common.HexToAddress(token), b.client)
	if err != nil {
		return "", err
	}

	opts, err := b.transactOpts(ctx)
	if err != nil {
		return "", err
	}

	value, ok := new(big.Int).SetString(amount.Value, 10)
	if !ok {
		return "", errors.Errorf("invalid amount %q", amount.Value)
	}

	tx, err := instance.Transfer(opts, common.HexToAddress(to), value)
	if err != nil {
		return "", model.NewSwapError(model.ErrSignerRejected, err.Error())
	}
	return tx.Hash().Hex(), nil
}

func (b *BaseRpc) SignMessage(message []byte) (string, error) {
	digest := crypto.Keccak256(message)
	sig, err := crypto.Sign(digest, b.signerKey)
	if err != nil {
		return "", model.NewSwapError(model.ErrSignerRejected, err.Error())
	}
	return "0x" + common.Bytes2Hex(sig), nil
}

func (b *BaseRpc) WaitMined(ctx context.Context, txHash string) error {
	hash := common.HexToHash(txHash)
	for {
		receipt, err := b.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return errors.Errorf("transaction %s reverted", txHash)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (b *BaseRpc) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(b.signerKey, b.chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transactor")
	}
	opts.Context = ctx
	return opts, nil
}
