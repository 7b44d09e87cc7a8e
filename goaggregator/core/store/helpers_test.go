package store

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"PhoenixAggregator/goaggregator/core/assets"
	"PhoenixAggregator/goaggregator/core/store/models"
)

const testGenesisTime = uint64(1000)

func newTestORM(t *testing.T) (*models.ORM, func()) {
	dir, err := ioutil.TempDir("", "aggregatortest")
	assert.Nil(t, err)
	orm := models.NewORM(dir)
	assert.Nil(t, models.InitializeGenesis(orm, testGenesisTime))
	return orm, func() {
		orm.Close()
		os.RemoveAll(dir)
	}
}

func fundPool(t *testing.T, orm *models.ORM, amount int64) {
	assert.Nil(t, AddFunds(orm, assets.NewDTO(amount)))
}

func mustFunds(t *testing.T, orm *models.ORM) models.Funds {
	funds, err := models.GetFunds(orm)
	assert.Nil(t, err)
	return funds
}
