package store

import (
	"log"
	"math/big"
	"os"
	"path"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/ethereum/go-ethereum/common"
	homedir "github.com/mitchellh/go-homedir"
)

type Config struct {
	RootDir             string        `env:"ROOT" envDefault:"~/.aggregator"`
	Port                string        `env:"PORT" envDefault:"6688"`
	BasicAuthUsername   string        `env:"USERNAME" envDefault:"aggregator"`
	BasicAuthPassword   string        `env:"PASSWORD" envDefault:"p@ssword"`
	EthereumURL         string        `env:"ETHEREUM_URL" envDefault:"http://localhost:8545"`
	ChainID             int64         `env:"ETHEREUM_CHAIN_ID" envDefault:"0"`
	EthMinConfirmations uint64        `env:"ETH_MIN_CONFIRMATIONS" envDefault:"12"`
	EthGasBumpWei       *big.Int      `env:"ETH_GAS_BUMP_GWEI" envDefault:"5000000000"`
	EthGasPriceDefault  *big.Int      `env:"ETH_GAS_PRICE_DEFAULT" envDefault:"20000000000"`
	EthGasBumpThreshold uint64        `env:"ETH_GAS_BUMP_THRESHOLD" envDefault:"12"`
	DTOTokenAddress     string        `env:"DTO_TOKEN_ADDRESS" envDefault:"0x0000000000000000000000000000000000000000"`
	AggregatorAddress   string        `env:"AGGREGATOR_ADDRESS" envDefault:"0x0000000000000000000000000000000000000000"`
	OracleAddresses     string        `env:"ORACLE_ADDRESSES" envDefault:""`
	PaymentAmount       *big.Int      `env:"PAYMENT_AMOUNT" envDefault:"10"`
	RewardRateX10       int64         `env:"REWARD_RATE_X10" envDefault:"990"`
	MinSubmissionValue  *big.Int      `env:"MIN_SUBMISSION_VALUE" envDefault:"0"`
	MaxSubmissionValue  *big.Int      `env:"MAX_SUBMISSION_VALUE" envDefault:"0"`
	ValidatorURL        string        `env:"VALIDATOR_URL" envDefault:""`
	ValidatorTimeout    time.Duration `env:"VALIDATOR_TIMEOUT" envDefault:"2s"`
	FundsPollSchedule   string        `env:"FUNDS_POLL_SCHEDULE" envDefault:"0 * * * * *"`
	VestingPeriod       uint64        `env:"VESTING_PERIOD" envDefault:"2592000"`
}

func NewConfig() Config {
	config := Config{}
	env.Parse(&config)
	dir, err := homedir.Expand(config.RootDir)
	if err != nil {
		log.Fatal(err)
	}
	if err = os.MkdirAll(dir, os.FileMode(0700)); err != nil {
		log.Fatal(err)
	}
	config.RootDir = dir
	return config
}

func (c Config) KeysDir() string {
	return path.Join(c.RootDir, "keys")
}

func (c Config) DTOToken() common.Address {
	return common.HexToAddress(c.DTOTokenAddress)
}

func (c Config) Aggregator() common.Address {
	return common.HexToAddress(c.AggregatorAddress)
}

func (c Config) Oracles() []common.Address {
	var addresses []common.Address
	for _, s := range strings.Split(c.OracleAddresses, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		addresses = append(addresses, common.HexToAddress(s))
	}
	return addresses
}

func (c Config) EthereumSubscriptionURL() string {
	return c.EthereumURL
}
