package store

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"PhoenixAggregator/goaggregator/core/utils"
)

type EthClient struct {
	CallerSubscriber
}

type CallerSubscriber interface {
	Call(result interface{}, method string, args ...interface{}) error
	EthSubscribe(context.Context, interface{}, ...interface{}) (*rpc.ClientSubscription, error)
}

func (ec *EthClient) GetNonce(account accounts.Account) (uint64, error) {
	var result string
	err := ec.Call(&result, "eth_getTransactionCount", account.Address.Hex(), "pending")
	if err != nil {
		return 0, err
	}
	return utils.HexToUint64(result)
}

func (ec *EthClient) SendRawTx(hex string) (common.Hash, error) {
	result := common.Hash{}
	err := ec.Call(&result, "eth_sendRawTransaction", hex)
	return result, err
}

func (ec *EthClient) GetTxReceipt(hash common.Hash) (*TxReceipt, error) {
	receipt := TxReceipt{}
	err := ec.Call(&receipt, "eth_getTransactionReceipt", hash)
	return &receipt, err
}

func (ec *EthClient) BlockNumber() (uint64, error) {
	result := ""
	if err := ec.Call(&result, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return utils.HexToUint64(result)
}

// CallContract issues a read-only eth_call against the latest block.
func (ec *EthClient) CallContract(to common.Address, data []byte) (string, error) {
	var result string
	args := map[string]string{
		"to":   to.Hex(),
		"data": utils.AddHexPrefix(common.Bytes2Hex(data)),
	}
	err := ec.Call(&result, "eth_call", args, "latest")
	return result, err
}

func (ec *EthClient) Subscribe(ctx context.Context, channel chan EventLog, args ...interface{}) (*rpc.ClientSubscription, error) {
	return ec.EthSubscribe(ctx, channel, append([]interface{}{"logs"}, args...)...)
}

type TxReceipt struct {
	BlockNumber uint64      `json:"blockNumber"`
	Hash        common.Hash `json:"transactionHash"`
}

func (tr *TxReceipt) UnmarshalJSON(b []byte) error {
	type Rcpt struct {
		BlockNumber string `json:"blockNumber"`
		Hash        string `json:"transactionHash"`
	}
	var rcpt Rcpt
	if err := json.Unmarshal(b, &rcpt); err != nil {
		return err
	}
	if len(rcpt.BlockNumber) > 2 {
		block, err := strconv.ParseUint(rcpt.BlockNumber[2:], 16, 64)
		if err != nil {
			return err
		}
		tr.BlockNumber = block
	}
	if rcpt.Hash != "" {
		hash, err := utils.StringToHash(rcpt.Hash)
		if err != nil {
			return err
		}
		tr.Hash = hash
	}
	return nil
}

func (tr *TxReceipt) Unconfirmed() bool {
	return tr.Hash.String() == emptyHash
}

var emptyHash = common.Hash{}.String()

type EventLog struct {
	Address   common.Address `json:"address"`
	BlockHash common.Hash    `json:"blockHash"`
	Topics    []common.Hash  `json:"topics"`
	Data      string         `json:"data"`
}
