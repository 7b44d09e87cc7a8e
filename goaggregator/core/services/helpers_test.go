package services

import (
	"crypto/ecdsa"
	"io/ioutil"
	"math/big"
	"os"
	"testing"

	"github.com/asdine/storm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"

	"PhoenixAggregator/goaggregator/core/assets"
	"PhoenixAggregator/goaggregator/core/store"
	"PhoenixAggregator/goaggregator/core/store/models"
	"PhoenixAggregator/goaggregator/core/utils"
)

const testAggregatorAddress = "0x3000000000000000000000000000000000000003"

var testSubmitter = common.HexToAddress("0x2000000000000000000000000000000000000002")

func newTestStore(t *testing.T) (*store.Store, func()) {
	dir, err := ioutil.TempDir("", "aggregatorservices")
	assert.Nil(t, err)
	orm := models.NewORM(dir)
	assert.Nil(t, models.InitializeGenesis(orm, 1000))
	s := &store.Store{
		ORM: orm,
		Config: store.Config{
			AggregatorAddress:  testAggregatorAddress,
			PaymentAmount:      big.NewInt(10),
			RewardRateX10:      990,
			VestingPeriod:      2592000,
			MinSubmissionValue: big.NewInt(0),
			MaxSubmissionValue: big.NewInt(0),
		},
	}
	return s, func() {
		orm.Close()
		os.RemoveAll(dir)
	}
}

func newTestAggregator(t *testing.T) (*Aggregator, func()) {
	s, cleanup := newTestStore(t)
	checker := NewSubmissionChecker(s.Config.MinSubmissionValue, s.Config.MaxSubmissionValue)
	return NewAggregator(s, checker, nil, nil, s.Config.Aggregator()), cleanup
}

func enrollOracle(t *testing.T, db storm.Node) *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	assert.Nil(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey)
	oracle := models.Oracle{
		Address:     address,
		Enabled:     true,
		Admin:       address,
		EndingRound: models.MaxRoundID,
	}
	assert.Nil(t, db.Save(&oracle))
	return key
}

func enrollOracles(t *testing.T, db storm.Node, n int) []*ecdsa.PrivateKey {
	keys := make([]*ecdsa.PrivateKey, n)
	for i := range keys {
		keys[i] = enrollOracle(t, db)
	}
	return keys
}

// signedRequest builds a submission where each key signs the full price batch.
func signedRequest(t *testing.T, roundID uint32, prices []*big.Int, deadline uint64, keys ...*ecdsa.PrivateKey) SubmissionRequest {
	hash := utils.RoundMessageHash(roundID, common.HexToAddress(testAggregatorAddress), prices, deadline)
	req := SubmissionRequest{
		RoundID:   roundID,
		Prices:    prices,
		Deadline:  deadline,
		Submitter: testSubmitter,
	}
	for _, key := range keys {
		r, s, v, err := utils.SignRound(key, hash)
		assert.Nil(t, err)
		req.R = append(req.R, r)
		req.S = append(req.S, s)
		req.V = append(req.V, v)
	}
	return req
}

func fundPool(t *testing.T, a *Aggregator, amount int64) {
	assert.Nil(t, a.AddFunds(common.Address{}, assets.NewDTO(amount)))
}

func mustFunds(t *testing.T, a *Aggregator) models.Funds {
	funds, err := models.GetFunds(a.Store.ORM)
	assert.Nil(t, err)
	return funds
}

func prices(values ...int64) []*big.Int {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		out[i] = big.NewInt(v)
	}
	return out
}

func farDeadline() uint64 {
	return utils.NowUnix() + 3600
}
