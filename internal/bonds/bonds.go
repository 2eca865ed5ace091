package bonds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/dsbmap/pkg/types"
)

// Field is the raw record field holding bond pairs
const Field = "disulfideBonds"

// ParseBonds parses "low high" pairs. Reversed pairs are normalized, blank
// entries skipped. A pair that does not hold exactly two integers, or whose
// endpoints are equal or not positive, is a FormatError.
func ParseBonds(raw []string) ([]types.Bond, error) {
	return ParseBondsWithin(raw, 0)
}

// ParseBondsWithin is ParseBonds for a sequence of the given length: an
// endpoint past length is also a FormatError. length <= 0 disables the check.
func ParseBondsWithin(raw []string, length int) ([]types.Bond, error) {
	out := make([]types.Bond, 0, len(raw))
	for i, entry := range raw {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, bondError(i, "expected \"low high\", got %q", entry)
		}

		var ends [2]types.Position
		for k, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, bondError(i, "endpoint %q is not an integer", f)
			}
			if n < 1 {
				return nil, bondError(i, "endpoint %d is not a position", n)
			}
			if length > 0 && n > length {
				return nil, bondError(i, "endpoint %d is past sequence length %d", n, length)
			}
			ends[k] = types.Position(n)
		}

		b, err := types.NewBond(ends[0], ends[1])
		if err != nil {
			return nil, bondError(i, "endpoints must differ, got %q", entry)
		}
		out = append(out, b)
	}
	return out, nil
}

// ClassifyDomains splits bonds by their Outside segments. A bond is intra when
// one segment contains both endpoints and inter when the endpoints fall in two
// different segments. Bonds touching no Outside segment, or only one, are in
// neither list. Input order is kept.
func ClassifyDomains(all []types.Bond, outside []types.DomainSegment) (intra, inter []types.Bond) {
	intra = make([]types.Bond, 0)
	inter = make([]types.Bond, 0)

	for _, b := range all {
		lowSeg := segmentOf(b.Low, outside)
		if lowSeg < 0 {
			continue
		}

		if containsBoth(b, outside) {
			intra = append(intra, b)
			continue
		}

		highSeg := segmentOf(b.High, outside)
		if highSeg >= 0 && highSeg != lowSeg {
			inter = append(inter, b)
		}
	}
	return intra, inter
}

// containsBoth reports whether any segment holds both endpoints. Segments are
// closed, so a bond ending on a shared boundary is intra.
func containsBoth(b types.Bond, segments []types.DomainSegment) bool {
	for _, s := range segments {
		if s.Contains(b.Low) && s.Contains(b.High) {
			return true
		}
	}
	return false
}

// segmentOf returns the index of the first segment containing p, or -1
func segmentOf(p types.Position, segments []types.DomainSegment) int {
	for i, s := range segments {
		if s.Contains(p) {
			return i
		}
	}
	return -1
}

func bondError(index int, format string, args ...any) *types.FormatError {
	return &types.FormatError{
		Field:  Field,
		Index:  index,
		Offset: -1,
		Msg:    fmt.Sprintf(format, args...),
	}
}
