package catalog

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dshills/dsbmap/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetCSV = `Entry,Entry name,Protein names,Disulfide bond,Glycosylation,Length,New_Length,Orientation,topology,Sequon list,Cysteine positions
P06213,INSR_HUMAN,Insulin receptor,"['10 30', '30 80']",['12'],118,120,0o40-40i60-60o,0o38-38i,"['12', '70']","['9', '29', '79']"
Q00001,EMPTY_HUMAN,No annotations,[],[],50,50,o,o,[],[]

BAD001,BAD_HUMAN,Broken,['10 30',[],50,50,o,o,[],[]
BAD002,BAD_HUMAN,Broken length,[],[],50,fifty,o,o,[],[]
`

const topologyCSV = "\ufeffName,Protein name,Orientation,Length\n" +
	"P00533,Epidermal growth factor receptor,0o645-645i,1210\n" +
	"P00534,Something,0i10-10o,20.0\n"

func TestReader_Dataset(t *testing.T) {
	r, err := NewReader(strings.NewReader(datasetCSV), LayoutAuto)
	require.NoError(t, err)
	assert.Equal(t, LayoutDataset, r.Layout())

	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	first := rows[0]
	require.NoError(t, first.Err)
	assert.Equal(t, 2, first.Line)
	assert.True(t, first.Complete)
	assert.Equal(t, types.RawRecord{
		ID:                 "P06213",
		EntryName:          "INSR_HUMAN",
		Description:        "Insulin receptor",
		Length:             120,
		TopologyCode:       "0o40-40i60-60o",
		DisulfideBonds:     []string{"10 30", "30 80"},
		GlycosylationSites: []string{"12"},
		SequonSites:        []string{"12", "70"},
		CysteinePositions:  []string{"9", "29", "79"},
	}, first.Raw)
	assert.Equal(t, 118, first.OldLength)
	assert.Equal(t, "0o38-38i", first.OldTopology)

	empty := rows[1]
	require.NoError(t, empty.Err)
	assert.Empty(t, empty.Raw.DisulfideBonds)
	assert.NotNil(t, empty.Raw.DisulfideBonds)

	// Blank line skipped, so the bad rows keep their file line numbers
	assert.Equal(t, 5, rows[2].Line)
	assert.Error(t, rows[2].Err)
	assert.True(t, errors.Is(rows[3].Err, types.ErrFormat))
	assert.Contains(t, rows[3].Err.Error(), "line 6")
}

func TestReader_Topology(t *testing.T) {
	r, err := NewReader(strings.NewReader(topologyCSV), "")
	require.NoError(t, err)
	assert.Equal(t, LayoutTopology, r.Layout())

	row, err := r.Next()
	require.NoError(t, err)
	require.NoError(t, row.Err)
	assert.False(t, row.Complete)
	assert.Equal(t, "P00533", row.Raw.ID)
	assert.Equal(t, "Epidermal growth factor receptor", row.Raw.Description)
	assert.Equal(t, 1210, row.Raw.Length)
	assert.Equal(t, "0o645-645i", row.Raw.TopologyCode)

	row, err = r.Next()
	require.NoError(t, err)
	require.NoError(t, row.Err)
	assert.Equal(t, 20, row.Raw.Length)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestNewReader_Errors(t *testing.T) {
	_, err := NewReader(strings.NewReader("a,b,c\n1,2,3\n"), LayoutAuto)
	assert.ErrorIs(t, err, ErrUnknownLayout)

	_, err = NewReader(strings.NewReader(topologyCSV), LayoutDataset)
	assert.Error(t, err)

	_, err = NewReader(strings.NewReader(""), LayoutAuto)
	assert.Error(t, err)

	_, err = NewReader(strings.NewReader(topologyCSV), Layout("xml"))
	assert.ErrorIs(t, err, ErrUnknownLayout)
}

func TestParseListCell(t *testing.T) {
	tests := []struct {
		cell    string
		want    []string
		wantErr bool
	}{
		{cell: "['10 30', '45 80']", want: []string{"10 30", "45 80"}},
		{cell: "[12, 40]", want: []string{"12", "40"}},
		{cell: "['7']", want: []string{"7"}},
		{cell: "[]", want: []string{}},
		{cell: "", want: []string{}},
		{cell: "nan", want: []string{}},
		{cell: "['1',", wantErr: true},
		{cell: "[[1]]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, err := ParseListCell(tt.cell)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
