package services

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gopkg.in/h2non/gock.v1"

	"PhoenixAggregator/goaggregator/core/assets"
	"PhoenixAggregator/goaggregator/core/store"
	"PhoenixAggregator/goaggregator/core/store/models"
)

func TestSubmitAggregatesAndPays(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	req := signedRequest(t, 1, prices(100, 200), farDeadline(), keys[0], keys[1])
	round, err := a.Submit(req)
	assert.Nil(t, err)

	assert.Equal(t, uint32(1), round.ID)
	assert.Equal(t, big.NewInt(150), round.Answer)
	assert.Equal(t, uint32(1), round.AnsweredInRound)
	assert.Len(t, round.Submissions, 2)
	assert.NotEmpty(t, round.AuditID)

	funds := mustFunds(t, a)
	assert.Equal(t, "980", funds.Available.String())
	assert.Equal(t, "20", funds.Allocated.String())

	stored, err := store.GetRoundInfo(a.Store.ORM, 1)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(150), stored.Answer)
}

func TestSubmitQuorumFailureLeavesNoTrace(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	req := signedRequest(t, 1, prices(100), farDeadline(), keys[0])
	_, err := a.Submit(req)
	assert.Equal(t, models.ErrQuorumNotMet, errors.Cause(err))

	state, err := models.GetReportingState(a.Store.ORM)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0), state.LastReportedRound)

	funds := mustFunds(t, a)
	assert.Equal(t, "1000", funds.Available.String())
	assert.Equal(t, "0", funds.Allocated.String())
}

func TestSubmitRejectsNonSequentialRound(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	req := signedRequest(t, 2, prices(100, 200), farDeadline(), keys[0], keys[1])
	_, err := a.Submit(req)
	assert.Equal(t, models.ErrNonSequentialRound, errors.Cause(err))
}

func TestSubmitRejectsExpiredDeadline(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	req := signedRequest(t, 1, prices(100, 200), 1, keys[0], keys[1])
	_, err := a.Submit(req)
	assert.Equal(t, models.ErrExpiredBatch, errors.Cause(err))
}

func TestSubmitUnknownSignerRollsBackEverything(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	stranger, err := crypto.GenerateKey()
	assert.Nil(t, err)

	// the enrolled signer is verified and paid before the stranger fails,
	// and that payment must not survive the rollback
	req := signedRequest(t, 1, prices(100, 200), farDeadline(), keys[0], stranger)
	_, err = a.Submit(req)
	assert.Equal(t, models.ErrUnauthorizedSubmitter, errors.Cause(err))

	funds := mustFunds(t, a)
	assert.Equal(t, "1000", funds.Available.String())
	assert.Equal(t, "0", funds.Allocated.String())

	state, err := models.GetReportingState(a.Store.ORM)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0), state.LastReportedRound)
}

func TestSubmitDisabledOracleIsUnauthorized(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	address := crypto.PubkeyToAddress(keys[1].PublicKey)
	oracle, err := models.GetOracle(a.Store.ORM, address)
	assert.Nil(t, err)
	oracle.EndingRound = 0
	assert.Nil(t, a.Store.Save(&oracle))

	req := signedRequest(t, 1, prices(100, 200), farDeadline(), keys[0], keys[1])
	_, err = a.Submit(req)
	assert.Equal(t, models.ErrUnauthorizedSubmitter, errors.Cause(err))
}

func TestSubmitDuplicateSignerIsPaidPerSignature(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	// the same key signing twice clears quorum sizing and collects twice
	req := signedRequest(t, 1, prices(100, 200), farDeadline(), keys[0], keys[0])
	_, err := a.Submit(req)
	assert.Nil(t, err)

	funds := mustFunds(t, a)
	assert.Equal(t, "980", funds.Available.String())
	assert.Equal(t, "20", funds.Allocated.String())
}

func TestSubmitInsufficientFundsAborts(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 15)

	req := signedRequest(t, 1, prices(100, 200), farDeadline(), keys[0], keys[1])
	_, err := a.Submit(req)
	assert.Equal(t, models.ErrInsufficientFunds, errors.Cause(err))

	funds := mustFunds(t, a)
	assert.Equal(t, "15", funds.Available.String())
	assert.Equal(t, "0", funds.Allocated.String())
}

func TestSubmitOutOfBoundsPrice(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()
	a.Checker = NewSubmissionChecker(big.NewInt(50), big.NewInt(150))

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	req := signedRequest(t, 1, prices(100, 200), farDeadline(), keys[0], keys[1])
	_, err := a.Submit(req)
	assert.Equal(t, models.ErrSubmissionOutOfBounds, errors.Cause(err))
}

func TestSubmitVestsSubmitterReward(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()
	a.Store.Config.PaymentAmount = big.NewInt(100)
	a.Store.Config.RewardRateX10 = 750

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	req := signedRequest(t, 1, prices(100, 200), farDeadline(), keys[0], keys[1])
	_, err := a.Submit(req)
	assert.Nil(t, err)

	// two oracle payments of 100 plus the 25 reward sit allocated
	funds := mustFunds(t, a)
	assert.Equal(t, "775", funds.Available.String())
	assert.Equal(t, "225", funds.Allocated.String())

	vesting, err := store.GetSubmitterVesting(a.Store.ORM, testSubmitter)
	assert.Nil(t, err)
	assert.Equal(t, "25", vesting.RemainVesting.String())

	paid, err := models.GetPaidRewards(a.Store.ORM, testSubmitter)
	assert.Nil(t, err)
	assert.Equal(t, "25", paid.Total.String())
}

func TestSubmitSequenceOfRounds(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	_, err := a.Submit(signedRequest(t, 1, prices(100, 200), farDeadline(), keys[0], keys[1]))
	assert.Nil(t, err)
	round2, err := a.Submit(signedRequest(t, 2, prices(300, 400, 500), farDeadline(), keys[0], keys[1], keys[2]))
	assert.Nil(t, err)

	assert.Equal(t, big.NewInt(400), round2.Answer)
	assert.Equal(t, uint32(2), round2.AnsweredInRound)

	latest, err := store.LatestRound(a.Store.ORM)
	assert.Nil(t, err)
	assert.Equal(t, uint32(2), latest.ID)
}

type stubToken struct {
	balance *big.Int
	err     error
}

func (s stubToken) BalanceOf(common.Address) (*big.Int, error) {
	return s.balance, s.err
}

func TestRefreshFundsReconcilesAgainstTokenBalance(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	a.Token = stubToken{balance: big.NewInt(500)}
	a.RefreshFunds()
	assert.Equal(t, "500", mustFunds(t, a).Available.String())
}

func TestRefreshFundsSkipsOnBalanceError(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	fundPool(t, a, 300)
	a.Token = stubToken{err: errors.New("rpc down")}
	a.RefreshFunds()
	assert.Equal(t, "300", mustFunds(t, a).Available.String())
}

func TestSubmitReconcilesFromCustodyBalance(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()
	a.Token = stubToken{balance: big.NewInt(1000)}

	keys := enrollOracles(t, a.Store.ORM, 3)

	// no AddFunds call; the pool comes entirely from the token balance
	_, err := a.Submit(signedRequest(t, 1, prices(100, 200), farDeadline(), keys[0], keys[1]))
	assert.Nil(t, err)

	funds := mustFunds(t, a)
	assert.Equal(t, "980", funds.Available.String())
	assert.Equal(t, "20", funds.Allocated.String())
}

func TestSubmitNotifiesValidatorAfterCommit(t *testing.T) {
	defer gock.Off()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	a.Validator = NewValidatorClient("http://validator.example/check", time.Second)
	gock.InterceptClient(a.Validator.Client)
	gock.New("http://validator.example").
		Post("/check").
		Reply(200).
		JSON(map[string]interface{}{"valid": true})

	keys := enrollOracles(t, a.Store.ORM, 3)
	fundPool(t, a, 1000)

	_, err := a.Submit(signedRequest(t, 1, prices(100, 200), farDeadline(), keys[0], keys[1]))
	assert.Nil(t, err)

	gomega.NewWithT(t).Eventually(gock.IsDone).Should(gomega.BeTrue())
}

type stubConfirmer struct {
	checked   []common.Hash
	confirmed bool
	err       error
}

func (s *stubConfirmer) EnsureTxConfirmed(hash common.Hash) (bool, error) {
	s.checked = append(s.checked, hash)
	return s.confirmed, s.err
}

func recordPayout(t *testing.T, a *Aggregator, nonce uint64) *models.Tx {
	txr, err := a.Store.CreateTx(testSubmitter, nonce, common.Address{}, []byte{}, big.NewInt(0), 500000)
	assert.Nil(t, err)
	_, err = a.Store.AddAttempt(txr, txr.EthTx(big.NewInt(1)), 1)
	assert.Nil(t, err)
	return txr
}

func TestConfirmPayoutsChecksOnlyPendingTransfers(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	open := recordPayout(t, a, 0)
	done := recordPayout(t, a, 1)
	attempts, err := a.Store.AttemptsFor(done.ID)
	assert.Nil(t, err)
	assert.Nil(t, a.Store.ConfirmTx(done, attempts[0]))

	confirmer := &stubConfirmer{confirmed: true}
	a.Confirmer = confirmer
	a.ConfirmPayouts()

	assert.Equal(t, []common.Hash{open.Hash}, confirmer.checked)
}

func TestConfirmPayoutsToleratesCheckFailures(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	recordPayout(t, a, 0)
	confirmer := &stubConfirmer{err: errors.New("rpc down")}
	a.Confirmer = confirmer

	// failures log and leave the transfer pending for the next pass
	a.ConfirmPayouts()
	a.ConfirmPayouts()
	assert.Len(t, confirmer.checked, 2)
}

func TestConfirmPayoutsWithoutConfirmerIsNoop(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()
	a.ConfirmPayouts()
}

func TestUnlockRewardsWithNoVesting(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	amount, err := a.UnlockRewards(testSubmitter)
	assert.Nil(t, err)
	assert.Equal(t, "0", amount.String())
}

func TestAddFundsCreditsAvailable(t *testing.T) {
	t.Parallel()
	a, cleanup := newTestAggregator(t)
	defer cleanup()

	assert.Nil(t, a.AddFunds(testSubmitter, assets.NewDTO(250)))
	assert.Nil(t, a.AddFunds(testSubmitter, assets.NewDTO(50)))

	funds := mustFunds(t, a)
	assert.Equal(t, "300", funds.Available.String())
	assert.Equal(t, "0", funds.Allocated.String())
}
