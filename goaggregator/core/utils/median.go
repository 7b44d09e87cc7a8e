package utils

import (
	"math/big"
	"sort"
)

// Median reduces a list of observations to one value. For an even count the
// two central elements are averaged with division truncating toward zero.
func Median(vals []*big.Int) *big.Int {
	if len(vals) == 0 {
		return nil
	}
	sorted := make([]*big.Int, len(vals))
	copy(sorted, vals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Cmp(sorted[j]) < 0
	})

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return new(big.Int).Set(sorted[mid])
	}
	sum := new(big.Int).Add(sorted[mid-1], sorted[mid])
	return sum.Quo(sum, big.NewInt(2))
}
