// Package bonds parses disulfide bonds, classifies them against the outside
// domains of a record, and ranks them for vertical stacking.
//
// # Domain Classification
//
// ClassifyDomains only looks at Outside segments. Membership is inclusive on
// both ends, and a bond that fits in one segment is intra even if a touching
// segment would also claim one of its endpoints:
//
//	outside: [0,40] [60,120]
//	(10,30)  intra
//	(30,80)  inter
//	(45,80)  neither, low endpoint is inside
//
// # Ranking
//
// Rank returns one multiplier per bond, at least 1. A renderer multiplies its
// base arc height by the rank so that nested bonds are drawn above the bonds
// that contain them:
//
//	ranks, err := bonds.Rank(record.Bonds())
//	if err != nil {
//	    return err
//	}
//	for i, b := range record.Bonds() {
//	    height := base + step*float64(ranks[i])
//	    ...
//	}
//
// Ranks are recomputed for every render and never stored on the record.
package bonds
