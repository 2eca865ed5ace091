package types

import (
	"fmt"
	"slices"
)

// Position is a 1-based residue index. Domain boundaries may also use 0 and
// the sequence length.
type Position int

// Interval is a closed range of positions with Start <= End
type Interval struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Len returns End - Start
func (iv Interval) Len() int {
	return int(iv.End - iv.Start)
}

// Contains reports whether p lies within the closed interval
func (iv Interval) Contains(p Position) bool {
	return iv.Start <= p && p <= iv.End
}

// Side tags a domain segment with its membrane orientation
type Side string

const (
	SideInside  Side = "inside"
	SideOutside Side = "outside"
)

// Marker returns the topology code character for the side
func (s Side) Marker() byte {
	if s == SideInside {
		return 'i'
	}
	return 'o'
}

// DomainSegment is a contiguous residue range on one side of the membrane
type DomainSegment struct {
	Interval
	Side Side `json:"side"`
}

// String returns a compact representation, e.g. "outside[0,10]"
func (d DomainSegment) String() string {
	return fmt.Sprintf("%s[%d,%d]", d.Side, d.Start, d.End)
}

// Bond is a disulfide linkage between two cysteine positions, Low < High
type Bond struct {
	Low  Position `json:"low"`
	High Position `json:"high"`
}

// NewBond normalizes the endpoint order. Equal endpoints are rejected.
func NewBond(a, b Position) (Bond, error) {
	if a == b {
		return Bond{}, NewFormatError("disulfideBonds", "bond endpoints must differ, got %d twice", a)
	}
	if a > b {
		a, b = b, a
	}
	return Bond{Low: a, High: b}, nil
}

// Valid reports whether Low < High
func (b Bond) Valid() bool {
	return b.Low < b.High
}

// String returns the "low high" form used by raw records
func (b Bond) String() string {
	return fmt.Sprintf("%d %d", b.Low, b.High)
}

// SiteSet is an ordered sequence of distinct positions
type SiteSet []Position

// NewSiteSet keeps the first occurrence of every position, preserving order
func NewSiteSet(positions []Position) SiteSet {
	seen := make(map[Position]struct{}, len(positions))
	set := make(SiteSet, 0, len(positions))
	for _, p := range positions {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		set = append(set, p)
	}
	return set
}

// Contains reports exact membership
func (s SiteSet) Contains(p Position) bool {
	return slices.Contains(s, p)
}

// BondRank is the stacking height multiplier of a bond, always >= 1
type BondRank float64
