package store

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"

	"PhoenixAggregator/goaggregator/core/logger"
	"PhoenixAggregator/goaggregator/core/store/models"
	"PhoenixAggregator/goaggregator/core/utils"
)

type Store struct {
	*models.ORM
	Config   Config
	KeyStore *KeyStore
	Eth      *Eth
	sigs     chan os.Signal
	Exiter   func(int)
}

func NewStore(config Config) *Store {
	err := os.MkdirAll(config.RootDir, os.FileMode(0700))
	if err != nil {
		logger.Fatal(err)
	}
	orm := models.NewORM(config.RootDir)
	ethrpc, err := rpc.Dial(config.EthereumURL)
	if err != nil {
		logger.Fatal(err)
	}
	subrpc, err := rpc.Dial(config.EthereumSubscriptionURL())
	if err != nil {
		logger.Fatal(err)
	}
	keyStore := NewKeyStore(config.KeysDir())
	store := &Store{
		ORM:      orm,
		Config:   config,
		KeyStore: keyStore,
		Exiter:   os.Exit,
		Eth: &Eth{
			Config:       config,
			EthClient:    &EthClient{ethrpc},
			KeyStore:     keyStore,
			ORM:          orm,
			Subscription: &EthClient{subrpc},
		},
	}
	store.initialize()
	return store
}

func (s *Store) initialize() {
	if err := models.InitializeGenesis(s.ORM, utils.NowUnix()); err != nil {
		logger.Fatal(err)
	}
	if err := s.seedOracles(); err != nil {
		logger.Fatal(err)
	}
}

// seedOracles registers configured roster addresses not already present.
// Roster administration beyond seeding lives outside the aggregation engine.
func (s *Store) seedOracles() error {
	for _, address := range s.Config.Oracles() {
		if _, err := models.GetOracle(s.ORM, address); err == nil {
			continue
		}
		oracle := models.Oracle{
			Address:     address,
			Enabled:     true,
			Admin:       address,
			EndingRound: models.MaxRoundID,
		}
		if err := s.Save(&oracle); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Start() {
	s.sigs = make(chan os.Signal, 1)
	signal.Notify(s.sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-s.sigs
		s.Close()
		s.Exiter(1)
	}()
}
