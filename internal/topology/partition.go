package topology

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/dshills/dsbmap/pkg/types"
)

// Merge returns both segment lists in a single slice sorted by start
func Merge(outside, inside []types.DomainSegment) []types.DomainSegment {
	all := make([]types.DomainSegment, 0, len(outside)+len(inside))
	all = append(all, outside...)
	all = append(all, inside...)
	slices.SortStableFunc(all, func(a, b types.DomainSegment) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return all
}

// CheckPartition verifies that the segments tile [0, length] exactly: the
// first starts at 0, each starts where the previous ended, and the last ends
// at length. The first violation is returned as a *types.FormatError.
func CheckPartition(outside, inside []types.DomainSegment, length int) error {
	all := Merge(outside, inside)
	if len(all) == 0 {
		return types.NewFormatError(field, "no domain segments")
	}

	var cursor types.Position
	total := 0
	for _, seg := range all {
		switch {
		case seg.Start > cursor:
			return types.NewFormatError(field, "gap between %d and %d", cursor, seg.Start)
		case seg.Start < cursor:
			return types.NewFormatError(field, "segment %s overlaps position %d", seg, cursor)
		}
		cursor = seg.End
		total += seg.Len()
	}

	if int(cursor) != length {
		return types.NewFormatError(field, "segments end at %d, sequence length is %d", cursor, length)
	}
	if total != length {
		return types.NewFormatError(field, "segment lengths sum to %d, sequence length is %d", total, length)
	}
	return nil
}

// Encode renders segments back into a topology code. The last segment is
// written in terminal form and must end at length.
func Encode(segments []types.DomainSegment, length int) (string, error) {
	if len(segments) == 0 {
		return "", types.NewFormatError(field, "no domain segments to encode")
	}

	sorted := slices.Clone(segments)
	slices.SortStableFunc(sorted, func(a, b types.DomainSegment) int {
		return cmp.Compare(a.Start, b.Start)
	})

	last := sorted[len(sorted)-1]
	if int(last.End) != length {
		return "", types.NewFormatError(field, "last segment %s must end at length %d", last, length)
	}

	var b strings.Builder
	for i, seg := range sorted {
		b.WriteString(strconv.Itoa(int(seg.Start)))
		b.WriteByte(seg.Side.Marker())
		if i == len(sorted)-1 {
			break
		}
		b.WriteString(strconv.Itoa(int(seg.End)))
		b.WriteByte(Delimiter)
	}
	return b.String(), nil
}
