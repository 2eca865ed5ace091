package sites

import (
	"errors"
	"testing"

	"github.com/dshills/dsbmap/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFree(t *testing.T) {
	tests := []struct {
		name  string
		total types.SiteSet
		used  []types.Position
		want  types.SiteSet
	}{
		{
			name:  "removes used positions and keeps order",
			total: types.SiteSet{40, 12, 88, 5},
			used:  []types.Position{88, 12},
			want:  types.SiteSet{40, 5},
		},
		{
			name:  "nothing used",
			total: types.SiteSet{3, 9},
			want:  types.SiteSet{3, 9},
		},
		{
			name:  "everything used",
			total: types.SiteSet{3, 9},
			used:  []types.Position{9, 3, 3},
			want:  types.SiteSet{},
		},
		{
			name:  "used positions not in total are ignored",
			total: types.SiteSet{7},
			used:  []types.Position{6, 8},
			want:  types.SiteSet{7},
		},
		{
			name: "empty total",
			used: []types.Position{1},
			want: types.SiteSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Free(tt.total, tt.used)
			assert.Equal(t, tt.want, got)

			for _, p := range got {
				assert.True(t, tt.total.Contains(p), "free site %d not in total", p)
			}
		})
	}
}

func TestBondEndpoints(t *testing.T) {
	bonds := []types.Bond{{Low: 10, High: 50}, {Low: 20, High: 30}}
	assert.Equal(t, []types.Position{10, 50, 20, 30}, BondEndpoints(bonds))
	assert.Empty(t, BondEndpoints(nil))
}

func TestNormalizeCysteines_ShiftsBeforeClassification(t *testing.T) {
	offsets, err := ParseOffsets(FieldCysteines, []string{"99", "0"})
	require.NoError(t, err)

	normalized := NormalizeCysteines(offsets)
	assert.Equal(t, []types.Position{100, 1}, normalized)

	// Cysteine 99 (0-based) is residue 100, which is bonded
	bonds := []types.Bond{{Low: 50, High: 100}}
	free := Free(types.NewSiteSet(normalized), BondEndpoints(bonds))
	assert.Equal(t, types.SiteSet{1}, free)

	// Input is not modified
	assert.Equal(t, []types.Position{99, 0}, offsets)
}

func TestParsePositions(t *testing.T) {
	got, err := ParsePositions(FieldSequons, []string{"12", " 40 ", "", "7"})
	require.NoError(t, err)
	assert.Equal(t, []types.Position{12, 40, 7}, got)

	got, err = ParsePositions(FieldSequons, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParsePositions_Errors(t *testing.T) {
	tests := []struct {
		name      string
		raw       []string
		wantIndex int
	}{
		{name: "not a number", raw: []string{"12", "N40"}, wantIndex: 1},
		{name: "zero", raw: []string{"0"}, wantIndex: 0},
		{name: "negative", raw: []string{"5", "6", "-3"}, wantIndex: 2},
		{name: "decimal", raw: []string{"4.5"}, wantIndex: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePositions(FieldGlycosylation, tt.raw)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, types.ErrFormat))

			var fe *types.FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, FieldGlycosylation, fe.Field)
			assert.Equal(t, tt.wantIndex, fe.Index)
		})
	}
}

func TestParseOffsets_AcceptsZero(t *testing.T) {
	got, err := ParseOffsets(FieldCysteines, []string{"0", "15"})
	require.NoError(t, err)
	assert.Equal(t, []types.Position{0, 15}, got)

	_, err = ParseOffsets(FieldCysteines, []string{"-1"})
	assert.ErrorIs(t, err, types.ErrFormat)
}

func TestParseWithin(t *testing.T) {
	got, err := ParsePositionsWithin(FieldSequons, []string{"1", "100"}, 100)
	require.NoError(t, err)
	assert.Equal(t, []types.Position{1, 100}, got)

	_, err = ParsePositionsWithin(FieldSequons, []string{"12", "101"}, 100)
	var fe *types.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldSequons, fe.Field)
	assert.Equal(t, 1, fe.Index)

	// Offset 99 becomes position 100 once normalized
	got, err = ParseOffsetsWithin(FieldCysteines, []string{"0", "99"}, 100)
	require.NoError(t, err)
	assert.Equal(t, []types.Position{0, 99}, got)

	_, err = ParseOffsetsWithin(FieldCysteines, []string{"100"}, 100)
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldCysteines, fe.Field)
	assert.Equal(t, 0, fe.Index)
}
