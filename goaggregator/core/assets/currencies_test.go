package assets_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"PhoenixAggregator/goaggregator/core/assets"
)

func TestDTOString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0", assets.NewDTO(0).String())
	assert.Equal(t, "1500000000000000000", assets.NewDTO(1500000000000000000).String())
	var nilDTO *assets.DTO
	assert.Equal(t, "0", nilDTO.String())
}

func TestDTOWholeTokenFormatting(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1.500000000000000000", assets.NewDTO(1500000000000000000).DTO())

	parsed, err := assets.NewDTOS("1.5")
	assert.Nil(t, err)
	assert.Equal(t, "1500000000000000000", parsed.String())

	_, err = assets.NewDTOS("not a number")
	assert.NotNil(t, err)
}

func TestDTOArithmetic(t *testing.T) {
	t.Parallel()
	sum := new(assets.DTO).Add(assets.NewDTO(7), assets.NewDTO(3))
	assert.Equal(t, "10", sum.String())
	diff := new(assets.DTO).Sub(assets.NewDTO(7), assets.NewDTO(3))
	assert.Equal(t, "4", diff.String())
	assert.Equal(t, 1, assets.NewDTO(7).Cmp(assets.NewDTO(3)))
	assert.True(t, assets.NewDTO(0).IsZero())
}

func TestDTOJSONRoundtrip(t *testing.T) {
	t.Parallel()
	raw, err := json.Marshal(assets.NewDTO(42))
	assert.Nil(t, err)
	assert.Equal(t, `"42"`, string(raw))

	var back assets.DTO
	assert.Nil(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "42", back.String())

	assert.Equal(t, assets.ErrNoQuotesForCurrency, json.Unmarshal([]byte(`42`), &back))
}
