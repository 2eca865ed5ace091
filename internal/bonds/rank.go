package bonds

import (
	"github.com/dshills/dsbmap/pkg/types"
)

// Rank weights. The two partial overlap weights differ so that crossing
// bonds never land on the same height.
const (
	WeightContained    = 1.0
	WeightOverlapLeft  = 0.55
	WeightOverlapRight = 0.75
)

// Rank computes the stacking multiplier of every bond, in input order.
//
//	rank(i) = 1 + sum over j != i of weight(i, j)
//
// where weight is WeightContained when j strictly contains i,
// WeightOverlapLeft when i starts first and ends inside j, WeightOverlapRight
// when j starts first and i ends past it, and 0 otherwise. The relation is
// asymmetric and the cost is quadratic in the number of bonds.
//
// Bonds must satisfy Low < High; otherwise a FormatError naming the index is
// returned and no ranks are produced.
func Rank(all []types.Bond) ([]types.BondRank, error) {
	for i, b := range all {
		if !b.Valid() {
			return nil, bondError(i, "bond %s does not satisfy low < high", b)
		}
	}

	ranks := make([]types.BondRank, len(all))
	for i, bi := range all {
		rank := 1.0
		for j, bj := range all {
			if i == j {
				continue
			}
			rank += weight(bi, bj)
		}
		ranks[i] = types.BondRank(rank)
	}
	return ranks, nil
}

// weight is the contribution of j to the rank of i
func weight(i, j types.Bond) float64 {
	switch {
	case j.Low < i.Low && j.High > i.High:
		return WeightContained
	case i.Low < j.Low && j.Low < i.High && i.High < j.High:
		return WeightOverlapLeft
	case j.Low < i.Low && i.Low < j.High && j.High < i.High:
		return WeightOverlapRight
	default:
		return 0
	}
}
