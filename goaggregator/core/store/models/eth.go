package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Tx is one settlement-token transfer the node has committed to broadcasting,
// together with its latest attempt.
type Tx struct {
	ID       uint64 `storm:"id,increment,index"`
	From     common.Address
	To       common.Address
	Data     []byte
	Nonce    uint64
	Value    *big.Int
	GasLimit uint64
	TxAttempt
}

func (t *Tx) EthTx(gasPrice *big.Int) *types.Transaction {
	return types.NewTransaction(
		t.Nonce,
		t.To,
		t.Value,
		t.GasLimit,
		gasPrice,
		t.Data,
	)
}

type TxAttempt struct {
	Hash      common.Hash `storm:"id,index,unique"`
	TxID      uint64      `storm:"index"`
	GasPrice  *big.Int
	Confirmed bool
	Hex       string
	SentAt    uint64
}
