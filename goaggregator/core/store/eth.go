package store

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"PhoenixAggregator/goaggregator/core/store/models"
	"PhoenixAggregator/goaggregator/core/utils"
)

// Eth moves the settlement token: balance reads via eth_call, transfers as
// signed raw transactions with confirmation tracking and gas bumping.
type Eth struct {
	*EthClient
	Subscription *EthClient
	KeyStore     *KeyStore
	Config       Config
	ORM          *models.ORM
}

var (
	balanceOfSelector    = common.Hex2Bytes("70a08231")
	transferSelector     = common.Hex2Bytes("a9059cbb")
	transferFromSelector = common.Hex2Bytes("23b872dd")
)

func packAddress(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), 32)
}

func packAmount(amount *big.Int) []byte {
	return common.LeftPadBytes(amount.Bytes(), 32)
}

// BalanceOf reads the token balance held by addr.
func (eth *Eth) BalanceOf(addr common.Address) (*big.Int, error) {
	data := append(append([]byte{}, balanceOfSelector...), packAddress(addr)...)
	result, err := eth.CallContract(eth.Config.DTOToken(), data)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read token balance")
	}
	return utils.HexToBig(result), nil
}

// TransferOut sends amount of the token from the node's custody to recipient.
func (eth *Eth) TransferOut(to common.Address, amount *big.Int) (*models.Tx, error) {
	data := append(append([]byte{}, transferSelector...), packAddress(to)...)
	data = append(data, packAmount(amount)...)
	return eth.CreateTx(eth.Config.DTOToken(), data)
}

// TransferIn pulls amount of the token from depositor into custody. The
// depositor must have approved the custody address beforehand.
func (eth *Eth) TransferIn(from common.Address, amount *big.Int) (*models.Tx, error) {
	data := append(append([]byte{}, transferFromSelector...), packAddress(from)...)
	data = append(data, packAddress(eth.KeyStore.GetAccount().Address)...)
	data = append(data, packAmount(amount)...)
	return eth.CreateTx(eth.Config.DTOToken(), data)
}

func (eth *Eth) CreateTx(to common.Address, data []byte) (*models.Tx, error) {
	account := eth.KeyStore.GetAccount()
	nonce, err := eth.GetNonce(account)
	if err != nil {
		return nil, err
	}
	txr, err := eth.ORM.CreateTx(
		account.Address,
		nonce,
		to,
		data,
		big.NewInt(0),
		500000,
	)
	if err != nil {
		return nil, err
	}
	blkNum, err := eth.BlockNumber()
	if err != nil {
		return nil, err
	}
	gasPrice := eth.Config.EthGasPriceDefault
	_, err = eth.createAttempt(txr, gasPrice, blkNum)
	if err != nil {
		return txr, err
	}

	return txr, nil
}

func (eth *Eth) EnsureTxConfirmed(hash common.Hash) (bool, error) {
	blkNum, err := eth.BlockNumber()
	if err != nil {
		return false, err
	}
	attempts, err := eth.getAttempts(hash)
	if err != nil {
		return false, err
	}
	if len(attempts) == 0 {
		return false, errors.New("can only ensure transactions with attempts")
	}
	txr := models.Tx{}
	if err := eth.ORM.One("ID", attempts[0].TxID, &txr); err != nil {
		return false, err
	}

	for _, txat := range attempts {
		success, err := eth.checkAttempt(&txr, txat, blkNum)
		if success {
			return success, err
		}
	}
	return false, nil
}

func (eth *Eth) createAttempt(txr *models.Tx, gasPrice *big.Int, blkNum uint64) (*models.TxAttempt, error) {
	signable := txr.EthTx(gasPrice)
	signable, err := eth.KeyStore.SignTx(signable, eth.Config.ChainID)
	if err != nil {
		return nil, err
	}
	a, err := eth.ORM.AddAttempt(txr, signable, blkNum)
	if err != nil {
		return nil, err
	}
	return a, eth.sendTransaction(signable)
}

func (eth *Eth) sendTransaction(tx *types.Transaction) error {
	hex, err := utils.EncodeTxToHex(tx)
	if err != nil {
		return err
	}
	if _, err = eth.SendRawTx(hex); err != nil {
		return err
	}
	return nil
}

func (eth *Eth) getAttempts(hash common.Hash) ([]*models.TxAttempt, error) {
	attempt := &models.TxAttempt{}
	if err := eth.ORM.One("Hash", hash, attempt); err != nil {
		return []*models.TxAttempt{}, err
	}
	attempts, err := eth.ORM.AttemptsFor(attempt.TxID)
	if err != nil {
		return []*models.TxAttempt{}, err
	}
	return attempts, nil
}

func (eth *Eth) checkAttempt(txr *models.Tx, txat *models.TxAttempt, blkNum uint64) (bool, error) {
	receipt, err := eth.GetTxReceipt(txat.Hash)
	if err != nil {
		return false, err
	}

	if receipt.Unconfirmed() {
		return eth.handleUnconfirmed(txr, txat, blkNum)
	}
	return eth.handleConfirmed(txr, txat, receipt, blkNum)
}

func (eth *Eth) handleConfirmed(
	txr *models.Tx,
	txat *models.TxAttempt,
	rcpt *TxReceipt,
	blkNum uint64,
) (bool, error) {
	safeAt := rcpt.BlockNumber + eth.Config.EthMinConfirmations
	if blkNum < safeAt {
		return false, nil
	}

	if err := eth.ORM.ConfirmTx(txr, txat); err != nil {
		return false, err
	}
	return true, nil
}

func (eth *Eth) handleUnconfirmed(
	txr *models.Tx,
	txat *models.TxAttempt,
	blkNum uint64,
) (bool, error) {
	bumpable := txr.Hash == txat.Hash
	pastThreshold := blkNum >= txat.SentAt+eth.Config.EthGasBumpThreshold
	if bumpable && pastThreshold {
		return false, eth.bumpGas(txat, blkNum)
	}
	return false, nil
}

func (eth *Eth) bumpGas(txat *models.TxAttempt, blkNum uint64) error {
	txr := &models.Tx{}
	if err := eth.ORM.One("ID", txat.TxID, txr); err != nil {
		return err
	}
	gasPrice := new(big.Int).Add(txat.GasPrice, eth.Config.EthGasBumpWei)
	_, err := eth.createAttempt(txr, gasPrice, blkNum)
	if err != nil {
		return err
	}
	return eth.ORM.Save(txat)
}
