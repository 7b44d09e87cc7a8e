package store

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// KeyStore holds the node account that signs settlement-token transfers.
type KeyStore struct {
	*keystore.KeyStore
}

func NewKeyStore(dir string) *KeyStore {
	ks := keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)
	return &KeyStore{ks}
}

func (ks *KeyStore) HasAccounts() bool {
	return len(ks.Accounts()) > 0
}

func (ks *KeyStore) Unlock(phrase string) error {
	for _, account := range ks.Accounts() {
		if err := ks.KeyStore.Unlock(account, phrase); err != nil {
			return errors.Wrapf(err, "cannot unlock account %s", account.Address.Hex())
		}
	}
	return nil
}

func (ks *KeyStore) NewAccount(passphrase string) (accounts.Account, error) {
	account, err := ks.KeyStore.NewAccount(passphrase)
	if err != nil {
		return account, err
	}
	return account, ks.KeyStore.Unlock(account, passphrase)
}

func (ks *KeyStore) GetAccount() accounts.Account {
	return ks.Accounts()[0]
}

func (ks *KeyStore) SignTx(tx *types.Transaction, chainID int64) (*types.Transaction, error) {
	return ks.KeyStore.SignTx(ks.GetAccount(), tx, big.NewInt(chainID))
}
