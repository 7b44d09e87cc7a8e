package models

import (
	"github.com/asdine/storm"
	"github.com/ethereum/go-ethereum/common"

	"PhoenixAggregator/goaggregator/core/assets"
)

// SubmitterRewardsVesting is the per-submitter linearly vesting incentive
// record, created lazily on first append and never deleted. Releasable plus
// RemainVesting only grows on appends and only shrinks on withdrawals; the
// split between them shifts over time.
type SubmitterRewardsVesting struct {
	Submitter     common.Address `storm:"id"`
	LastUpdated   uint64
	Releasable    *assets.DTO
	RemainVesting *assets.DTO
}

func (v SubmitterRewardsVesting) Total() *assets.DTO {
	return new(assets.DTO).Add(v.Releasable, v.RemainVesting)
}

// PaidRewards is the running total of reward shares earmarked per submitting
// oracle. Off-chain accounting only; it moves no funds.
type PaidRewards struct {
	Submitter common.Address `storm:"id"`
	Total     *assets.DTO
}

func GetPaidRewards(db storm.Node, submitter common.Address) (PaidRewards, error) {
	var paid PaidRewards
	err := db.One("Submitter", submitter, &paid)
	if err == storm.ErrNotFound {
		return PaidRewards{Submitter: submitter, Total: assets.NewDTO(0)}, nil
	}
	return paid, err
}
