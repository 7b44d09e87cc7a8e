package store

import (
	"math/big"

	"github.com/asdine/storm"
	"github.com/pkg/errors"

	"PhoenixAggregator/goaggregator/core/assets"
	"PhoenixAggregator/goaggregator/core/store/models"
	"PhoenixAggregator/goaggregator/core/utils"
)

// CreateNewRound opens round id as the strict successor of the last reported
// round, inheriting the previous answer and its answeredInRound so queries
// against the new id stay sane until aggregation overwrites them.
func CreateNewRound(tx storm.Node, id uint32, paymentAmount *assets.DTO, now uint64) (*models.Round, error) {
	state, err := models.GetReportingState(tx)
	if err != nil {
		return nil, err
	}
	if id != state.LastReportedRound+1 {
		return nil, errors.Wrapf(models.ErrNonSequentialRound,
			"got round %d, last reported %d", id, state.LastReportedRound)
	}

	prev, err := models.GetRound(tx, state.LastReportedRound)
	if err != nil {
		return nil, err
	}

	round := models.NewRound(id)
	round.Answer = prev.Answer
	round.AnsweredInRound = prev.AnsweredInRound
	round.UpdatedAt = now
	round.PaymentAmount = new(assets.DTO).Set(paymentAmount)
	if err := tx.Save(&round); err != nil {
		return nil, err
	}

	state.LastReportedRound = id
	if err := tx.Save(&state); err != nil {
		return nil, err
	}
	return &round, nil
}

// UpdateRoundPrice aggregates the submitted prices into the round's answer.
func UpdateRoundPrice(tx storm.Node, round *models.Round, prices []*big.Int, now uint64) error {
	round.Answer = utils.Median(prices)
	round.AnsweredInRound = round.ID
	round.Submissions = prices
	round.UpdatedAt = now
	return tx.Save(round)
}

// GetRoundInfo returns a fully answered round. Unanswered or out-of-range
// rounds report no data so partially initialized records are never exposed.
func GetRoundInfo(db storm.Node, id uint32) (*models.Round, error) {
	round, err := models.GetRound(db, id)
	if err == storm.ErrNotFound {
		return nil, models.ErrNoData
	}
	if err != nil {
		return nil, err
	}
	if !round.Answered() {
		return nil, models.ErrNoData
	}
	return &round, nil
}

func LatestRound(db storm.Node) (*models.Round, error) {
	state, err := models.GetReportingState(db)
	if err != nil {
		return nil, err
	}
	round, err := models.GetRound(db, state.LastReportedRound)
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetAnswerByRound returns a zero sentinel rather than failing for rounds that
// do not exist.
func GetAnswerByRound(db storm.Node, id uint32) *big.Int {
	round, err := models.GetRound(db, id)
	if err != nil || round.Answer == nil {
		return big.NewInt(0)
	}
	return round.Answer
}

func GetTimestampByRound(db storm.Node, id uint32) uint64 {
	round, err := models.GetRound(db, id)
	if err != nil {
		return 0
	}
	return round.UpdatedAt
}
