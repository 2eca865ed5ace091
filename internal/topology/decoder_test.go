package topology

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/dshills/dsbmap/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(side types.Side, start, end int) types.DomainSegment {
	return types.DomainSegment{
		Interval: types.Interval{Start: types.Position(start), End: types.Position(end)},
		Side:     side,
	}
}

func out(start, end int) types.DomainSegment { return seg(types.SideOutside, start, end) }
func in(start, end int) types.DomainSegment  { return seg(types.SideInside, start, end) }

func TestDecode_Valid(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		length      int
		wantOutside []types.DomainSegment
		wantInside  []types.DomainSegment
	}{
		{
			name:        "two segments closed by terminal marker",
			code:        "0o10-10i",
			length:      25,
			wantOutside: []types.DomainSegment{out(0, 10)},
			wantInside:  []types.DomainSegment{in(10, 25)},
		},
		{
			name:        "terminal start taken from buffer",
			code:        "0o10-25i",
			length:      25,
			wantOutside: []types.DomainSegment{out(0, 10)},
			wantInside:  []types.DomainSegment{in(25, 25)},
		},
		{
			name:        "empty start defaults to zero",
			code:        "o40-40i",
			length:      100,
			wantOutside: []types.DomainSegment{out(0, 40)},
			wantInside:  []types.DomainSegment{in(40, 100)},
		},
		{
			name:       "single terminal marker covers the sequence",
			code:       "i",
			length:     30,
			wantInside: []types.DomainSegment{in(0, 30)},
		},
		{
			name:        "alternating sides",
			code:        "0i20-20o45-45i60-60o",
			length:      90,
			wantOutside: []types.DomainSegment{out(20, 45), out(60, 90)},
			wantInside:  []types.DomainSegment{in(0, 20), in(45, 60)},
		},
		{
			name:        "surrounding whitespace is ignored",
			code:        "  0o5-5i\n",
			length:      8,
			wantOutside: []types.DomainSegment{out(0, 5)},
			wantInside:  []types.DomainSegment{in(5, 8)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outside, inside, err := Decode(tt.code, tt.length)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutside, outside)
			assert.Equal(t, tt.wantInside, inside)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		length     int
		wantOffset int
	}{
		{name: "truncated after digits", code: "0o10-10i20", length: 40, wantOffset: 9},
		{name: "ends with delimiter", code: "0o10-", length: 40, wantOffset: 4},
		{name: "digits only", code: "25", length: 40, wantOffset: 1},
		{name: "delimiter before marker", code: "10-20o", length: 40, wantOffset: 2},
		{name: "two markers in a row", code: "0oi", length: 40, wantOffset: 2},
		{name: "empty end buffer", code: "0o-5i", length: 40, wantOffset: 2},
		{name: "unknown character", code: "0x10-10i", length: 40, wantOffset: 1},
		{name: "end beyond length", code: "0o50-50i", length: 40, wantOffset: 4},
		{name: "start after end", code: "20o10-10i", length: 40, wantOffset: 5},
		{name: "overlapping segments", code: "0o20-10i", length: 40, wantOffset: 7},
		{name: "number overflow", code: "0o99999999999999999999-1i", length: 40, wantOffset: 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outside, inside, err := Decode(tt.code, tt.length)
			require.Error(t, err)
			assert.Nil(t, outside)
			assert.Nil(t, inside)
			assert.True(t, errors.Is(err, types.ErrFormat))

			var fe *types.FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "topologyCode", fe.Field)
			assert.Equal(t, tt.wantOffset, fe.Offset)
		})
	}
}

func TestDecode_InvalidLength(t *testing.T) {
	_, _, err := Decode("0o", 0)
	require.Error(t, err)

	var fe *types.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "length", fe.Field)
}

func TestDecode_Empty(t *testing.T) {
	_, _, err := Decode("   ", 10)
	assert.ErrorIs(t, err, types.ErrFormat)
}

func TestDecode_ReturnsFreshSlices(t *testing.T) {
	outside1, _, err := Decode("0o10-10i", 25)
	require.NoError(t, err)
	outside1[0].End = 99

	outside2, _, err := Decode("0o10-10i", 25)
	require.NoError(t, err)
	assert.Equal(t, types.Position(10), outside2[0].End)
}

func TestCheckPartition(t *testing.T) {
	t.Run("exact tiling", func(t *testing.T) {
		outside, inside, err := Decode("0o10-10i", 25)
		require.NoError(t, err)
		assert.NoError(t, CheckPartition(outside, inside, 25))
	})

	t.Run("gap between segments", func(t *testing.T) {
		outside, inside, err := Decode("0o10-15i", 25)
		require.NoError(t, err)
		err = CheckPartition(outside, inside, 25)
		assert.ErrorIs(t, err, types.ErrFormat)
		assert.Contains(t, err.Error(), "gap")
	})

	t.Run("does not start at zero", func(t *testing.T) {
		err := CheckPartition([]types.DomainSegment{out(5, 25)}, nil, 25)
		assert.ErrorIs(t, err, types.ErrFormat)
	})

	t.Run("overlap", func(t *testing.T) {
		err := CheckPartition([]types.DomainSegment{out(0, 15)}, []types.DomainSegment{in(10, 25)}, 25)
		assert.ErrorIs(t, err, types.ErrFormat)
		assert.Contains(t, err.Error(), "overlaps")
	})

	t.Run("short of length", func(t *testing.T) {
		err := CheckPartition([]types.DomainSegment{out(0, 20)}, nil, 25)
		assert.ErrorIs(t, err, types.ErrFormat)
	})

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, CheckPartition(nil, nil, 25), types.ErrFormat)
	})
}

func TestEncode(t *testing.T) {
	code, err := Encode([]types.DomainSegment{in(10, 25), out(0, 10)}, 25)
	require.NoError(t, err)
	assert.Equal(t, "0o10-10i", code)

	_, err = Encode([]types.DomainSegment{out(0, 10)}, 25)
	assert.ErrorIs(t, err, types.ErrFormat)

	_, err = Encode(nil, 25)
	assert.ErrorIs(t, err, types.ErrFormat)
}

// randomTiling cuts [0, length] into alternating segments at random points
func randomTiling(r *rand.Rand, length int) []types.DomainSegment {
	cuts := r.Intn(8)
	points := []int{0}
	for i := 0; i < cuts; i++ {
		last := points[len(points)-1]
		if last >= length {
			break
		}
		points = append(points, last+1+r.Intn(length-last))
	}
	if points[len(points)-1] != length {
		points = append(points, length)
	}

	side := types.SideOutside
	if r.Intn(2) == 0 {
		side = types.SideInside
	}

	segments := make([]types.DomainSegment, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		segments = append(segments, seg(side, points[i], points[i+1]))
		if side == types.SideOutside {
			side = types.SideInside
		} else {
			side = types.SideOutside
		}
	}
	return segments
}

func TestDecode_PartitionProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		length := 1 + r.Intn(2000)
		segments := randomTiling(r, length)

		code, err := Encode(segments, length)
		require.NoError(t, err)

		outside, inside, err := Decode(code, length)
		require.NoError(t, err, "code %q", code)
		require.NoError(t, CheckPartition(outside, inside, length), "code %q", code)

		merged := Merge(outside, inside)
		assert.Equal(t, segments, merged, "code %q", code)

		total := 0
		for _, s := range merged {
			total += s.Len()
		}
		assert.Equal(t, length, total)
	}
}
