package sites

import (
	"strconv"
	"strings"

	"github.com/dshills/dsbmap/pkg/types"
)

// Field names reported in FormatError
const (
	FieldGlycosylation = "glycosylationSites"
	FieldSequons       = "sequonSites"
	FieldCysteines     = "cysteinePositions"
)

// Free returns the positions of total that do not appear in used, in the
// order of total. Matching is exact integer equality.
func Free(total types.SiteSet, used []types.Position) types.SiteSet {
	taken := make(map[types.Position]struct{}, len(used))
	for _, p := range used {
		taken[p] = struct{}{}
	}

	free := make(types.SiteSet, 0, len(total))
	for _, p := range total {
		if _, ok := taken[p]; ok {
			continue
		}
		free = append(free, p)
	}
	return free
}

// BondEndpoints flattens bonds into the list of both endpoints
func BondEndpoints(bonds []types.Bond) []types.Position {
	out := make([]types.Position, 0, 2*len(bonds))
	for _, b := range bonds {
		out = append(out, b.Low, b.High)
	}
	return out
}

// NormalizeCysteines shifts 0-based cysteine offsets onto the 1-based
// numbering used by every other list. It must run before Free.
func NormalizeCysteines(raw []types.Position) []types.Position {
	out := make([]types.Position, len(raw))
	for i, p := range raw {
		out[i] = p + 1
	}
	return out
}

// ParsePositions parses 1-based decimal positions. Blank entries are skipped;
// anything else that is not a positive integer is a FormatError carrying the
// field name and entry index.
func ParsePositions(field string, raw []string) ([]types.Position, error) {
	return parse(field, raw, 1, 0)
}

// ParsePositionsWithin also rejects positions past length
func ParsePositionsWithin(field string, raw []string, length int) ([]types.Position, error) {
	return parse(field, raw, 1, length)
}

// ParseOffsets parses 0-based decimal offsets such as raw cysteine positions
func ParseOffsets(field string, raw []string) ([]types.Position, error) {
	return parse(field, raw, 0, 0)
}

// ParseOffsetsWithin also rejects offsets that land past length once
// normalized, i.e. offsets >= length
func ParseOffsetsWithin(field string, raw []string, length int) ([]types.Position, error) {
	return parse(field, raw, 0, length-1)
}

// parse reads integers in [lowest, highest]; highest < lowest means no upper
// bound
func parse(field string, raw []string, lowest, highest int) ([]types.Position, error) {
	out := make([]types.Position, 0, len(raw))
	for i, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &types.FormatError{
				Field:  field,
				Index:  i,
				Offset: -1,
				Msg:    "not an integer: " + strconv.Quote(s),
			}
		}
		if n < lowest {
			return nil, &types.FormatError{
				Field:  field,
				Index:  i,
				Offset: -1,
				Msg:    "position " + s + " below " + strconv.Itoa(lowest),
			}
		}
		if highest >= lowest && n > highest {
			return nil, &types.FormatError{
				Field:  field,
				Index:  i,
				Offset: -1,
				Msg:    "position " + s + " above " + strconv.Itoa(highest),
			}
		}
		out = append(out, types.Position(n))
	}
	return out, nil
}
