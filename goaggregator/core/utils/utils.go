package utils

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

func Uint64ToHex(i uint64) string {
	return fmt.Sprintf("0x%x", i)
}

func HexToUint64(hex string) (uint64, error) {
	return strconv.ParseUint(RemoveHexPrefix(hex), 16, 64)
}

func HexToBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(RemoveHexPrefix(s), 16)
	if !ok {
		return big.NewInt(0)
	}
	return n
}

func RemoveHexPrefix(str string) string {
	if HasHexPrefix(str) {
		return str[2:]
	}
	return str
}

func HasHexPrefix(str string) bool {
	return len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X')
}

func AddHexPrefix(str string) string {
	if !HasHexPrefix(str) {
		return "0x" + str
	}
	return str
}

func StringToHash(s string) (common.Hash, error) {
	s = RemoveHexPrefix(s)
	if len(s) != common.HashLength*2 {
		return common.Hash{}, fmt.Errorf("invalid hash length: %s", s)
	}
	return common.HexToHash(s), nil
}

func EncodeTxToHex(tx *types.Transaction) (string, error) {
	rlp, err := rlp.EncodeToBytes(tx)
	if err != nil {
		return "", err
	}
	return AddHexPrefix(common.Bytes2Hex(rlp)), nil
}

func IsEmptyAddress(addr common.Address) bool {
	return addr == common.Address{}
}

func ParseAddress(addressString string) (common.Address, error) {
	if !common.IsHexAddress(addressString) {
		return common.Address{}, fmt.Errorf("not a valid Ethereum address: %s", addressString)
	}
	return common.HexToAddress(addressString), nil
}

func ISO8601UTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func NowUnix() uint64 {
	return uint64(time.Now().Unix())
}

func ParseBigInts(strs []string) ([]*big.Int, error) {
	vals := make([]*big.Int, len(strs))
	for i, s := range strs {
		n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
		if !ok {
			return nil, fmt.Errorf("cannot parse %q as integer", s)
		}
		vals[i] = n
	}
	return vals, nil
}
