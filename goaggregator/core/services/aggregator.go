package services

import (
	"math/big"

	"github.com/asdine/storm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"PhoenixAggregator/goaggregator/core/assets"
	"PhoenixAggregator/goaggregator/core/logger"
	"PhoenixAggregator/goaggregator/core/store"
	"PhoenixAggregator/goaggregator/core/store/models"
	"PhoenixAggregator/goaggregator/core/utils"
)

// TokenBalance is the settlement-token read the funds refresh hook needs.
type TokenBalance interface {
	BalanceOf(addr common.Address) (*big.Int, error)
}

// TokenTransferor moves the settlement token in and out of custody.
type TokenTransferor interface {
	TransferOut(to common.Address, amount *big.Int) (*models.Tx, error)
	TransferIn(from common.Address, amount *big.Int) (*models.Tx, error)
}

// TxConfirmer follows up on broadcast transfers until they are safely mined.
type TxConfirmer interface {
	EnsureTxConfirmed(hash common.Hash) (bool, error)
}

// SubmissionRequest is one submit call: a price batch, its deadline, the
// signature arrays and the reward recipient who sent the batch in.
type SubmissionRequest struct {
	RoundID   uint32
	Prices    []*big.Int
	Deadline  uint64
	R         []common.Hash
	S         []common.Hash
	V         []byte
	Submitter common.Address
}

// Aggregator owns the round, funds and vesting ledgers for the duration of a
// submission. Everything runs in one transaction: the round fully advances
// with payments and an aggregated answer, or nothing happens at all.
type Aggregator struct {
	Store     *store.Store
	Checker   *SubmissionChecker
	Validator *ValidatorClient
	Token     TokenBalance
	Payouts   TokenTransferor
	Confirmer TxConfirmer
	Custody   common.Address
}

func NewAggregator(s *store.Store, checker *SubmissionChecker, validator *ValidatorClient, token TokenBalance, custody common.Address) *Aggregator {
	return &Aggregator{
		Store:     s,
		Checker:   checker,
		Validator: validator,
		Token:     token,
		Custody:   custody,
	}
}

// UnlockRewards releases a submitter's currently withdrawable vested reward
// and pays it out of custody. Callable on behalf of anyone; the reward always
// goes to the named submitter.
func (a *Aggregator) UnlockRewards(submitter common.Address) (*assets.DTO, error) {
	var amount *assets.DTO
	err := a.Store.Transact(func(tx storm.Node) error {
		released, err := store.UnlockSubmitterRewards(tx, submitter, utils.NowUnix(), a.Store.Config.VestingPeriod)
		amount = released
		return err
	})
	if err != nil {
		return nil, err
	}
	if amount.ToInt().Sign() > 0 && a.Payouts != nil {
		if _, err := a.Payouts.TransferOut(submitter, amount.ToInt()); err != nil {
			logger.Errorw("reward payout transfer failed", "submitter", submitter.Hex(), "error", err)
		}
	}
	return amount, nil
}

// AddFunds pulls a deposit into token custody and credits the available pool.
func (a *Aggregator) AddFunds(from common.Address, amount *assets.DTO) error {
	if a.Payouts != nil {
		if _, err := a.Payouts.TransferIn(from, amount.ToInt()); err != nil {
			return errors.Wrap(err, "token deposit transfer failed")
		}
	}
	return a.Store.Transact(func(tx storm.Node) error {
		return store.AddFunds(tx, amount)
	})
}

func (a *Aggregator) Submit(req SubmissionRequest) (*models.Round, error) {
	now := utils.NowUnix()
	balance := a.tokenBalance()

	var round *models.Round
	var prevAnswer *big.Int
	var prevAnsweredIn uint32

	err := a.Store.Transact(func(tx storm.Node) error {
		if balance != nil {
			if err := store.ReconcileAvailableFunds(tx, balance); err != nil {
				return err
			}
		}

		if err := ValidateBatch(tx, req.Prices, req.R, req.S, req.V, req.Deadline, now); err != nil {
			return err
		}
		if err := a.Checker.CheckAll(req.Prices); err != nil {
			return err
		}

		payment := (*assets.DTO)(a.Store.Config.PaymentAmount)
		created, err := store.CreateNewRound(tx, req.RoundID, payment, now)
		if err != nil {
			return err
		}
		round = created
		prevAnswer = round.Answer
		prevAnsweredIn = round.AnsweredInRound

		hash := utils.RoundMessageHash(req.RoundID, a.Store.Config.Aggregator(), req.Prices, req.Deadline)
		for i := range req.R {
			signer, err := utils.RecoverSigner(hash, req.R[i], req.S[i], req.V[i])
			if err != nil {
				return errors.Wrap(models.ErrUnauthorizedSubmitter, err.Error())
			}
			oracle, err := models.GetOracle(tx, signer)
			if err == storm.ErrNotFound || (err == nil && !oracle.EligibleForRound(req.RoundID)) {
				return errors.Wrapf(models.ErrUnauthorizedSubmitter, "signer %s", signer.Hex())
			}
			if err != nil {
				return err
			}
			if err := store.PayOracle(tx, round, signer); err != nil {
				return err
			}
		}

		reward := store.SubmitterReward(round.PaymentAmount, a.Store.Config.RewardRateX10)
		if err := store.AccumulatePaidRewards(tx, req.Submitter, reward); err != nil {
			return err
		}
		if balance != nil {
			if err := store.ReconcileAvailableFunds(tx, balance); err != nil {
				return err
			}
		}
		funds, err := models.GetFunds(tx)
		if err != nil {
			return err
		}
		logger.Infow("funds updated",
			"round", round.ID,
			"available", funds.Available.String(),
			"allocated", funds.Allocated.String(),
		)

		round.AuditID = uuid.NewV4().String()
		if err := store.UpdateRoundPrice(tx, round, req.Prices, now); err != nil {
			return err
		}

		return store.AppendSubmitterRewards(tx, req.Submitter, reward, now, a.Store.Config.VestingPeriod)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("submission received", "round", round.ID, "prices", len(req.Prices), "audit", round.AuditID)
	logger.Infow("answer updated",
		"round", round.ID,
		"answer", round.Answer.String(),
		"updatedAt", round.UpdatedAt,
	)

	if a.Validator != nil {
		go a.Validator.Validate(prevAnsweredIn, prevAnswer, round.ID, round.Answer)
	}
	return round, nil
}

func (a *Aggregator) tokenBalance() *big.Int {
	if a.Token == nil {
		return nil
	}
	balance, err := a.Token.BalanceOf(a.Custody)
	if err != nil {
		logger.Warnw("funds refresh skipped, token balance unavailable", "error", err)
		return nil
	}
	return balance
}

// ConfirmPayouts walks broadcast transfers that are not yet safely mined and
// re-checks each one; stuck attempts get their gas bumped and rebroadcast.
// Failures are logged and retried on the next scheduled pass.
func (a *Aggregator) ConfirmPayouts() {
	if a.Confirmer == nil {
		return
	}
	pending, err := a.Store.PendingTxs()
	if err != nil {
		logger.Errorw("cannot list pending payouts", "error", err)
		return
	}
	for _, tx := range pending {
		confirmed, err := a.Confirmer.EnsureTxConfirmed(tx.Hash)
		if err != nil {
			logger.Warnw("payout confirmation check failed", "tx", tx.ID, "error", err)
			continue
		}
		if confirmed {
			logger.Infow("payout confirmed", "tx", tx.ID, "hash", tx.Hash.Hex())
		}
	}
}

// RefreshFunds is the standalone funds bookkeeping hook used by the deposit
// listener and the reconciliation schedule.
func (a *Aggregator) RefreshFunds() {
	balance := a.tokenBalance()
	if balance == nil {
		return
	}
	err := a.Store.Transact(func(tx storm.Node) error {
		return store.ReconcileAvailableFunds(tx, balance)
	})
	if err != nil {
		logger.Errorw("funds reconciliation failed", "error", err)
	}
}
