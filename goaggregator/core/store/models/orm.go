package models

import (
	"math/big"
	"path"

	"github.com/asdine/storm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"PhoenixAggregator/goaggregator/core/assets"
	"PhoenixAggregator/goaggregator/core/logger"
	"PhoenixAggregator/goaggregator/core/utils"
)

const (
	singletonID = 1
	dbName      = "aggregator.bolt"
)

type ORM struct {
	*storm.DB
}

func NewORM(dir string) *ORM {
	db, err := storm.Open(path.Join(dir, dbName))
	if err != nil {
		logger.Fatal(err)
	}
	return &ORM{db}
}

// Transact runs fn inside one writable transaction. fn either fully applies
// or the transaction is discarded as if it never ran.
func (orm *ORM) Transact(fn func(tx storm.Node) error) error {
	tx, err := orm.Begin(true)
	if err != nil {
		return errors.Wrap(err, "cannot begin transaction")
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// InitializeGenesis seeds the synthetic round 0, the reporting counter and the
// empty funds ledger. Idempotent across restarts.
func InitializeGenesis(db storm.Node, now uint64) error {
	var state ReportingState
	err := db.One("ID", singletonID, &state)
	if err == nil {
		return nil
	}
	if err != storm.ErrNotFound {
		return err
	}

	genesis := NewRound(0)
	genesis.UpdatedAt = now
	if err := db.Save(&genesis); err != nil {
		return err
	}
	funds := Funds{ID: singletonID, Available: assets.NewDTO(0), Allocated: assets.NewDTO(0)}
	if err := db.Save(&funds); err != nil {
		return err
	}
	state = ReportingState{ID: singletonID, LastReportedRound: 0}
	return db.Save(&state)
}

func GetReportingState(db storm.Node) (ReportingState, error) {
	var state ReportingState
	err := db.One("ID", singletonID, &state)
	return state, err
}

func GetFunds(db storm.Node) (Funds, error) {
	var funds Funds
	err := db.One("ID", singletonID, &funds)
	return funds, err
}

// CreateTx records an outbound token transfer before any attempt goes out.
func (orm *ORM) CreateTx(
	from common.Address,
	nonce uint64,
	to common.Address,
	data []byte,
	value *big.Int,
	gasLimit uint64,
) (*Tx, error) {
	tx := Tx{
		From:     from,
		To:       to,
		Nonce:    nonce,
		Data:     data,
		Value:    value,
		GasLimit: gasLimit,
	}
	return &tx, orm.Save(&tx)
}

func (orm *ORM) AddAttempt(tx *Tx, etx *types.Transaction, blkNum uint64) (*TxAttempt, error) {
	hex, err := utils.EncodeTxToHex(etx)
	if err != nil {
		return nil, err
	}
	attempt := &TxAttempt{
		Hash:     etx.Hash(),
		GasPrice: etx.GasPrice(),
		Hex:      hex,
		TxID:     tx.ID,
		SentAt:   blkNum,
	}
	if !tx.Confirmed {
		tx.TxAttempt = *attempt
	}
	if err := orm.Save(attempt); err != nil {
		return nil, err
	}
	return attempt, orm.Save(tx)
}

// PendingTxs lists broadcast transfers still awaiting confirmation.
func (orm *ORM) PendingTxs() ([]*Tx, error) {
	var txs []*Tx
	if err := orm.All(&txs); err != nil && err != storm.ErrNotFound {
		return nil, err
	}
	pending := []*Tx{}
	for _, tx := range txs {
		if !tx.Confirmed {
			pending = append(pending, tx)
		}
	}
	return pending, nil
}

func (orm *ORM) AttemptsFor(id uint64) ([]*TxAttempt, error) {
	attempts := []*TxAttempt{}
	if err := orm.Find("TxID", id, &attempts); err != nil {
		return attempts, err
	}
	return attempts, nil
}

func (orm *ORM) ConfirmTx(tx *Tx, attempt *TxAttempt) error {
	attempt.Confirmed = true
	tx.TxAttempt = *attempt
	if err := orm.Save(attempt); err != nil {
		return err
	}
	return orm.Save(tx)
}
