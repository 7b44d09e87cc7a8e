package store

import (
	"math/big"

	"github.com/asdine/storm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"PhoenixAggregator/goaggregator/core/assets"
	"PhoenixAggregator/goaggregator/core/store/models"
)

// PayOracle moves one payment from available to allocated for a verified
// signer. Paid once per signature presented, not once per unique address;
// batch de-duplication belongs to the off-chain coordinator.
func PayOracle(tx storm.Node, round *models.Round, oracle common.Address) error {
	funds, err := models.GetFunds(tx)
	if err != nil {
		return err
	}
	if funds.Available.Cmp(round.PaymentAmount) < 0 {
		return errors.Wrapf(models.ErrInsufficientFunds,
			"paying oracle %s for round %d", oracle.Hex(), round.ID)
	}
	funds.Available = new(assets.DTO).Sub(funds.Available, round.PaymentAmount)
	funds.Allocated = new(assets.DTO).Add(funds.Allocated, round.PaymentAmount)
	return tx.Save(&funds)
}

// SubmitterReward computes the share of one payment vested to the submitting
// transaction sender, truncating toward zero.
func SubmitterReward(paymentAmount *assets.DTO, rewardRateX10 int64) *assets.DTO {
	share := new(big.Int).Sub(big.NewInt(1000), big.NewInt(rewardRateX10))
	reward := new(big.Int).Mul(paymentAmount.ToInt(), share)
	reward.Quo(reward, big.NewInt(1000))
	return (*assets.DTO)(reward)
}

// AccumulatePaidRewards tracks each submitter's running reward total for
// off-chain accounting; it moves no funds itself.
func AccumulatePaidRewards(tx storm.Node, submitter common.Address, reward *assets.DTO) error {
	paid, err := models.GetPaidRewards(tx, submitter)
	if err != nil {
		return err
	}
	paid.Total = new(assets.DTO).Add(paid.Total, reward)
	return tx.Save(&paid)
}

// AddFunds credits a deposit that has already been pulled into token custody.
func AddFunds(tx storm.Node, amount *assets.DTO) error {
	funds, err := models.GetFunds(tx)
	if err != nil {
		return err
	}
	funds.Available = new(assets.DTO).Add(funds.Available, amount)
	return tx.Save(&funds)
}

// ReconcileAvailableFunds refreshes available against the custody token
// balance: whatever is not allocated is spendable.
func ReconcileAvailableFunds(tx storm.Node, tokenBalance *big.Int) error {
	funds, err := models.GetFunds(tx)
	if err != nil {
		return err
	}
	available := new(big.Int).Sub(tokenBalance, funds.Allocated.ToInt())
	if available.Sign() < 0 {
		available.SetInt64(0)
	}
	funds.Available = (*assets.DTO)(available)
	return tx.Save(&funds)
}
