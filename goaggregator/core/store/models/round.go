package models

import (
	"math"
	"math/big"

	"github.com/asdine/storm"

	"PhoenixAggregator/goaggregator/core/assets"
)

// MaxRoundID bounds the representable round id space; queries past it report
// no data rather than wrapping.
const MaxRoundID = uint32(math.MaxUint32)

// Round is one aggregation cycle. Answer and AnsweredInRound are inherited
// from the previous round at creation so a freshly created round reads sanely
// before its own aggregation lands. AnsweredInRound stays 0 until a genuine
// answer exists somewhere in the round's history.
type Round struct {
	// Key is ID+1; the genesis round has id 0 and storm refuses zero ids.
	Key             uint64 `storm:"id"`
	ID              uint32
	Answer          *big.Int
	UpdatedAt       uint64
	AnsweredInRound uint32
	Submissions     []*big.Int
	PaymentAmount   *assets.DTO
	AuditID         string
}

func NewRound(id uint32) Round {
	return Round{Key: uint64(id) + 1, ID: id}
}

func (r Round) Answered() bool {
	return r.AnsweredInRound > 0
}

func GetRound(db storm.Node, id uint32) (Round, error) {
	var round Round
	err := db.One("Key", uint64(id)+1, &round)
	return round, err
}

// ReportingState is the singleton last-reported-round counter.
type ReportingState struct {
	ID                int `storm:"id"`
	LastReportedRound uint32
}

// Funds is the singleton two-field ledger. Available must never go negative;
// Available+Allocated is bounded by deposits minus withdrawals.
type Funds struct {
	ID        int `storm:"id"`
	Available *assets.DTO
	Allocated *assets.DTO
}
