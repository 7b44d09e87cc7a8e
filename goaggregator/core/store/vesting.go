package store

import (
	"math/big"

	"github.com/asdine/storm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"PhoenixAggregator/goaggregator/core/assets"
	"PhoenixAggregator/goaggregator/core/store/models"
)

// updateSubmitterWithdrawnableRewards applies the lazy linear unlock: the
// slice of RemainVesting earned since LastUpdated moves to Releasable,
// truncating toward zero and capped at RemainVesting. LastUpdated is restamped
// even for zero balances so a later append starts from a fresh clock.
func updateSubmitterWithdrawnableRewards(tx storm.Node, submitter common.Address, now uint64, period uint64) (*models.SubmitterRewardsVesting, error) {
	vesting := models.SubmitterRewardsVesting{
		Submitter:     submitter,
		LastUpdated:   now,
		Releasable:    assets.NewDTO(0),
		RemainVesting: assets.NewDTO(0),
	}
	err := tx.One("Submitter", submitter, &vesting)
	if err != nil && err != storm.ErrNotFound {
		return nil, err
	}

	if vesting.RemainVesting.ToInt().Sign() > 0 && now > vesting.LastUpdated {
		// a zero period means no vesting delay at all
		unlockable := new(big.Int).Set(vesting.RemainVesting.ToInt())
		if period > 0 {
			elapsed := new(big.Int).SetUint64(now - vesting.LastUpdated)
			unlockable.Mul(elapsed, vesting.RemainVesting.ToInt())
			unlockable.Quo(unlockable, new(big.Int).SetUint64(period))
			if unlockable.Cmp(vesting.RemainVesting.ToInt()) > 0 {
				unlockable.Set(vesting.RemainVesting.ToInt())
			}
		}
		locked := (*assets.DTO)(unlockable)
		vesting.RemainVesting = new(assets.DTO).Sub(vesting.RemainVesting, locked)
		vesting.Releasable = new(assets.DTO).Add(vesting.Releasable, locked)
	}

	vesting.LastUpdated = now
	if err := tx.Save(&vesting); err != nil {
		return nil, err
	}
	return &vesting, nil
}

// AppendSubmitterRewards vests a fresh reward for submitter. The unlock step
// runs first so the new amount does not inherit the old amount's elapsed
// vesting time. The amount shifts available to allocated so the eventual
// withdrawal stays covered.
func AppendSubmitterRewards(tx storm.Node, submitter common.Address, amount *assets.DTO, now uint64, period uint64) error {
	if amount.ToInt().Sign() <= 0 {
		return nil
	}
	vesting, err := updateSubmitterWithdrawnableRewards(tx, submitter, now, period)
	if err != nil {
		return err
	}

	funds, err := models.GetFunds(tx)
	if err != nil {
		return err
	}
	if funds.Available.Cmp(amount) < 0 {
		return errors.Wrapf(models.ErrInsufficientFunds,
			"vesting reward for submitter %s", submitter.Hex())
	}
	funds.Available = new(assets.DTO).Sub(funds.Available, amount)
	funds.Allocated = new(assets.DTO).Add(funds.Allocated, amount)
	if err := tx.Save(&funds); err != nil {
		return err
	}

	vesting.RemainVesting = new(assets.DTO).Add(vesting.RemainVesting, amount)
	return tx.Save(vesting)
}

// UnlockSubmitterRewards runs the unlock step and releases whatever is
// withdrawable, returning the amount the caller must pay out to the submitter.
// Callable on behalf of anyone; the reward always belongs to the named
// submitter.
func UnlockSubmitterRewards(tx storm.Node, submitter common.Address, now uint64, period uint64) (*assets.DTO, error) {
	vesting, err := updateSubmitterWithdrawnableRewards(tx, submitter, now, period)
	if err != nil {
		return nil, err
	}
	if vesting.Releasable.ToInt().Sign() <= 0 {
		return assets.NewDTO(0), nil
	}

	amount := new(assets.DTO).Set(vesting.Releasable)
	funds, err := models.GetFunds(tx)
	if err != nil {
		return nil, err
	}
	funds.Allocated = new(assets.DTO).Sub(funds.Allocated, amount)
	if err := tx.Save(&funds); err != nil {
		return nil, err
	}

	vesting.Releasable = assets.NewDTO(0)
	if err := tx.Save(vesting); err != nil {
		return nil, err
	}
	return amount, nil
}

// GetSubmitterVesting reads a vesting record without mutating it.
func GetSubmitterVesting(db storm.Node, submitter common.Address) (models.SubmitterRewardsVesting, error) {
	var vesting models.SubmitterRewardsVesting
	err := db.One("Submitter", submitter, &vesting)
	if err == storm.ErrNotFound {
		return models.SubmitterRewardsVesting{
			Submitter:     submitter,
			Releasable:    assets.NewDTO(0),
			RemainVesting: assets.NewDTO(0),
		}, nil
	}
	return vesting, err
}
