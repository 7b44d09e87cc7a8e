package utils

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// RoundDescription is mixed into every round message so signatures cannot be
// replayed against a different aggregator deployment.
const RoundDescription = "DTO price aggregation round"

const personalPrefix = "\x19Ethereum Signed Message:\n32"

// RoundMessageHash computes the canonical digest a reporter signs for one
// round: round id, aggregator identity, the full price list, the deadline and
// the fixed description, tight-packed and keccak hashed.
func RoundMessageHash(roundID uint32, aggregator common.Address, prices []*big.Int, deadline uint64) common.Hash {
	buf := make([]byte, 0, 4+common.AddressLength+32*(len(prices)+1)+len(RoundDescription))
	buf = append(buf, byte(roundID>>24), byte(roundID>>16), byte(roundID>>8), byte(roundID))
	buf = append(buf, aggregator.Bytes()...)
	for _, p := range prices {
		buf = append(buf, math.U256Bytes(new(big.Int).Set(p))...)
	}
	buf = append(buf, math.U256Bytes(new(big.Int).SetUint64(deadline))...)
	buf = append(buf, []byte(RoundDescription)...)
	return crypto.Keccak256Hash(buf)
}

// PersonalMessageHash wraps a digest with the standard personal-message prefix.
func PersonalMessageHash(hash common.Hash) common.Hash {
	return crypto.Keccak256Hash([]byte(personalPrefix), hash.Bytes())
}

// RecoverSigner returns the address that produced the (r, s, v) signature over
// the prefixed digest. Pure; any malformed signature surfaces as an error and
// never as a zero address.
func RecoverSigner(hash common.Hash, r common.Hash, s common.Hash, v byte) (common.Address, error) {
	if v != 27 && v != 28 {
		return common.Address{}, errors.Errorf("invalid recovery id %d", v)
	}
	sig := make([]byte, 65)
	copy(sig[:32], r.Bytes())
	copy(sig[32:64], s.Bytes())
	sig[64] = v - 27

	digest := PersonalMessageHash(hash)
	pubkey, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "cannot recover signer")
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}

// RoundStateChallengeHash is the digest an oracle signs to prove it holds its
// key directly when requesting its round-state snapshot.
func RoundStateChallengeHash(timestamp uint64) common.Hash {
	buf := append([]byte("roundstate"), math.U256Bytes(new(big.Int).SetUint64(timestamp))...)
	return crypto.Keccak256Hash(buf)
}

// SignRound is the reporter-side helper: it signs the canonical round message
// with a raw secp256k1 key and returns the (r, s, v) triple submitters batch up.
func SignRound(key *ecdsa.PrivateKey, hash common.Hash) (common.Hash, common.Hash, byte, error) {
	digest := PersonalMessageHash(hash)
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return common.Hash{}, common.Hash{}, 0, errors.Wrap(err, "cannot sign round message")
	}
	return common.BytesToHash(sig[:32]), common.BytesToHash(sig[32:64]), sig[64] + 27, nil
}
