package models

import (
	"github.com/asdine/storm"
	"github.com/ethereum/go-ethereum/common"
)

// Oracle is a roster entry. The aggregation engine only reads it; enabling,
// disabling and admin reassignment happen elsewhere.
type Oracle struct {
	Address     common.Address `storm:"id"`
	Enabled     bool           `storm:"index"`
	Admin       common.Address
	EndingRound uint32
}

func (o Oracle) EligibleForRound(roundID uint32) bool {
	return o.Enabled && roundID <= o.EndingRound
}

func GetOracle(db storm.Node, address common.Address) (Oracle, error) {
	var oracle Oracle
	err := db.One("Address", address, &oracle)
	return oracle, err
}

func IsOracleEnabled(db storm.Node, address common.Address) (bool, error) {
	oracle, err := GetOracle(db, address)
	if err == storm.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return oracle.Enabled, nil
}

func EnabledOracleCount(db storm.Node) (int, error) {
	var enabled []Oracle
	err := db.Find("Enabled", true, &enabled)
	if err == storm.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(enabled), nil
}
