package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/riftresearch/swap-coordinator/internal/types/environments"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Postgres    DBConnection
	Bitcoin     BitcoinConfig
	Ethereum    EthereumConfig
	Aggregator  AggregatorConfig
	Rfq         RfqConfig
	Otc         OtcConfig
	Swap        SwapConfig
}

type ApiServerConfig struct {
	AllowedOrigins string
}

type DBConnection struct {
	Host string
	Port string
	User string
	Name string
	Pass string

	SSLMode string
}

type BitcoinConfig struct {
	Network        string
	EsploraAPIURL  string
	MinSweepSats   int64
}

type EthereumConfig struct {
	RPCEndpoint        string
	ChainID            int64
	SyntheticAssetAddr string
	SettlementAddr     string
	SignerPrivateKey   string
	SlippageBps        int
}

type AggregatorConfig struct {
	BaseURL string
}

type RfqConfig struct {
	BaseURL string
}

type OtcConfig struct {
	BaseURL  string
	PageSize int
}

// SwapConfig carries the coordinator's tuning knobs. Zero values are
// replaced with the defaults below so tests can construct configs sparsely.
type SwapConfig struct {
	MinSwapUsd           float64
	InputDebounce        time.Duration
	OutputDebounce       time.Duration
	RefreshToNative      time.Duration
	RefreshToSynthetic   time.Duration
	OrderPollInterval    time.Duration
	OptimalWaitTimeout   time.Duration
	OptimalWaitInterval  time.Duration
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// does not override env variables that already exist
	godotenv.Load(".env." + env)

	return &AppConfig{
		Environment: environments.Environment(env),
		ApiServer: ApiServerConfig{
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Postgres: DBConnection{
			Host:    os.Getenv("DB_HOST"),
			Port:    os.Getenv("DB_PORT"),
			User:    os.Getenv("DB_USER"),
			Name:    os.Getenv("DB_NAME"),
			Pass:    os.Getenv("DB_PASS"),
			SSLMode: os.Getenv("DB_SSL_MODE"),
		},
		Bitcoin: BitcoinConfig{
			Network:       envVarOrDefault("BTC_NETWORK", "mainnet"),
			EsploraAPIURL: os.Getenv("BTC_ESPLORA_API_URL"),
			MinSweepSats:  envVarAtoi64OrDefault("BTC_MIN_SWEEP_SATS", 546),
		},
		Ethereum: EthereumConfig{
			RPCEndpoint:        os.Getenv("ETH_RPC_ENDPOINT"),
			ChainID:            envVarAtoi64OrDefault("ETH_CHAIN_ID", 1),
			SyntheticAssetAddr: os.Getenv("ETH_SYNTHETIC_ASSET_ADDR"),
			SettlementAddr:     os.Getenv("ETH_SETTLEMENT_ADDR"),
			SignerPrivateKey:   os.Getenv("ETH_SIGNER_PRIVATE_KEY"),
			SlippageBps:        int(envVarAtoi64OrDefault("ETH_SLIPPAGE_BPS", 50)),
		},
		Aggregator: AggregatorConfig{
			BaseURL: os.Getenv("AGGREGATOR_BASE_URL"),
		},
		Rfq: RfqConfig{
			BaseURL: os.Getenv("RFQ_BASE_URL"),
		},
		Otc: OtcConfig{
			BaseURL:  os.Getenv("OTC_BASE_URL"),
			PageSize: int(envVarAtoi64OrDefault("OTC_PAGE_SIZE", 20)),
		},
		Swap: DefaultSwapConfig(),
	}
}

func DefaultSwapConfig() SwapConfig {
	return SwapConfig{
		MinSwapUsd:          10,
		InputDebounce:       125 * time.Millisecond,
		OutputDebounce:      75 * time.Millisecond,
		RefreshToNative:     10 * time.Second,
		RefreshToSynthetic:  15 * time.Second,
		OrderPollInterval:   10 * time.Second,
		OptimalWaitTimeout:  60 * time.Second,
		OptimalWaitInterval: 100 * time.Millisecond,
	}
}

func envVarOrDefault(envName, def string) string {
	value := os.Getenv(envName)
	if value == "" {
		return def
	}
	return value
}

func envVarAtoi64OrDefault(envName string, def int64) int64 {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return def
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		panic(err)
	}
	return value
}
