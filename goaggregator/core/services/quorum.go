package services

import (
	"math/big"

	"github.com/asdine/storm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"PhoenixAggregator/goaggregator/core/store/models"
)

// MinThresholdPercent is the minimum share of enabled oracles that must sign a
// batch. Integer division truncates toward zero, so 2 of 3 (66.67%) passes and
// 1 of 2 (50%) fails.
const MinThresholdPercent = 66

// ValidateBatch is the quorum gate. Sizing is optimistic: the declared batch
// size is measured against the roster before any signature is verified, and a
// bad signature discovered later still fails the entire submission.
func ValidateBatch(
	db storm.Node,
	prices []*big.Int,
	r []common.Hash,
	s []common.Hash,
	v []byte,
	deadline uint64,
	now uint64,
) error {
	if now > deadline {
		return errors.Wrapf(models.ErrExpiredBatch, "deadline %d, now %d", deadline, now)
	}
	if len(prices) == 0 || len(prices) != len(r) || len(r) != len(s) || len(s) != len(v) {
		return errors.Wrapf(models.ErrMalformedBatch,
			"prices=%d r=%d s=%d v=%d", len(prices), len(r), len(s), len(v))
	}

	total, err := models.EnabledOracleCount(db)
	if err != nil {
		return err
	}
	if total == 0 || len(r)*100/total < MinThresholdPercent {
		return errors.Wrapf(models.ErrQuorumNotMet,
			"%d signatures of %d oracles", len(r), total)
	}
	return nil
}

// SubmissionChecker bounds individual observations. Zero bounds disable it.
type SubmissionChecker struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func NewSubmissionChecker(min *big.Int, max *big.Int) *SubmissionChecker {
	return &SubmissionChecker{
		Min: decimal.NewFromBigInt(min, 0),
		Max: decimal.NewFromBigInt(max, 0),
	}
}

func (c *SubmissionChecker) Enabled() bool {
	return !(c.Min.IsZero() && c.Max.IsZero())
}

func (c *SubmissionChecker) IsValid(answer decimal.Decimal) bool {
	return answer.GreaterThanOrEqual(c.Min) && answer.LessThanOrEqual(c.Max)
}

func (c *SubmissionChecker) CheckAll(prices []*big.Int) error {
	if !c.Enabled() {
		return nil
	}
	for _, p := range prices {
		if !c.IsValid(decimal.NewFromBigInt(p, 0)) {
			return errors.Wrapf(models.ErrSubmissionOutOfBounds, "price %s", p)
		}
	}
	return nil
}
