package assets

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrNoQuotesForCurrency = errors.New("cannot unmarshal json.Number into currency")

// returns 10**precision.
func getDenominator(precision int) *big.Int {
	x := big.NewInt(10)
	return new(big.Int).Exp(x, big.NewInt(int64(precision)), nil)
}

func format(i *big.Int, precision int) string {
	r := big.NewRat(1, 1).SetFrac(i, getDenominator(precision))
	return fmt.Sprintf("%v", r.FloatString(precision))
}

// represent the smallest units of DTO
type DTO big.Int

func NewDTO(w int64) *DTO {
	return (*DTO)(big.NewInt(w))
}

// NewDTOS parses a whole-token decimal string into smallest units.
func NewDTOS(s string) (*DTO, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "assets: cannot parse %q as DTO", s)
	}
	w := d.Mul(decimal.RequireFromString("10").Pow(decimal.RequireFromString("18")))
	return (*DTO)(w.BigInt()), nil
}

func (d *DTO) String() string {
	if d == nil {
		return "0"
	}
	return fmt.Sprintf("%v", (*big.Int)(d))
}

func (d *DTO) DTO() string {
	if d == nil {
		return "0"
	}
	return format((*big.Int)(d), 18)
}

func (d *DTO) SetInt64(w int64) *DTO {
	return (*DTO)((*big.Int)(d).SetInt64(w))
}

func (d *DTO) ToInt() *big.Int {
	return (*big.Int)(d)
}

func (d *DTO) ToHash() common.Hash {
	return common.BigToHash((*big.Int)(d))
}

func (d *DTO) Set(x *DTO) *DTO {
	id := (*big.Int)(d)
	ix := (*big.Int)(x)

	w := id.Set(ix)
	return (*DTO)(w)
}

func (d *DTO) SetString(s string, base int) (*DTO, bool) {
	w, ok := (*big.Int)(d).SetString(s, base)
	return (*DTO)(w), ok
}

func (d *DTO) Cmp(y *DTO) int {
	return (*big.Int)(d).Cmp((*big.Int)(y))
}

func (d *DTO) Add(x, y *DTO) *DTO {
	id := (*big.Int)(d)
	ix := (*big.Int)(x)
	iy := (*big.Int)(y)

	return (*DTO)(id.Add(ix, iy))
}

func (d *DTO) Sub(x, y *DTO) *DTO {
	id := (*big.Int)(d)
	ix := (*big.Int)(x)
	iy := (*big.Int)(y)

	return (*DTO)(id.Sub(ix, iy))
}

func (d *DTO) Text(base int) string {
	return (*big.Int)(d).Text(base)
}

func (d *DTO) MarshalText() ([]byte, error) {
	return (*big.Int)(d).MarshalText()
}

func (d DTO) MarshalJSON() ([]byte, error) {
	value, err := d.MarshalText()
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf(`"%s"`, value)), nil
}

func (d *DTO) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		return d.UnmarshalText(data[1 : len(data)-1])
	}
	return ErrNoQuotesForCurrency
}

func (d *DTO) UnmarshalText(text []byte) error {
	if _, ok := d.SetString(string(text), 10); !ok {
		return fmt.Errorf("assets: cannot unmarshal %q into a *assets.DTO", text)
	}
	return nil
}

func (d *DTO) IsZero() bool {
	zero := big.NewInt(0)
	return (*big.Int)(d).Cmp(zero) == 0
}

func (*DTO) Symbol() string {
	return "DTO"
}
