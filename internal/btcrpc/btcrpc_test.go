package btcrpc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/types/environments"
	"github.com/riftresearch/swap-coordinator/internal/utils/config"
	"github.com/riftresearch/swap-coordinator/internal/utils/logger"
)

func testRpc(network string) IBtcRpc {
	appConfig := &config.AppConfig{}
	appConfig.Bitcoin.Network = network
	return New(appConfig, logger.New(environments.Test))
}

func TestValidateAddress_Mainnet(t *testing.T) {
	rpc := testRpc("mainnet")

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "p2pkh", address: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
		{name: "p2sh", address: "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy"},
		{name: "bech32", address: "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"},
		{name: "empty", address: "", wantErr: true},
		{name: "garbage", address: "not-an-address", wantErr: true},
		{name: "testnet address on mainnet", address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", wantErr: true},
		{name: "evm address", address: "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rpc.ValidateAddress(tt.address)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, model.IsSwapErrorCode(err, model.ErrInvalidDestination))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAddress_Testnet(t *testing.T) {
	rpc := testRpc("testnet")

	assert.NoError(t, rpc.ValidateAddress("tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"))
	assert.Error(t, rpc.ValidateAddress("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"))
}
