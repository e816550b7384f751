package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows(t *testing.T) {
	idx := buildSample(t)
	rows := Rows(idx)

	// Blank line 2 is skipped; line 1 has code so it stays
	assert.Equal(t, 1, rows[0].LineNumber)
	assert.Equal(t, -1, rows[0].ChainIndex)
	assert.Equal(t, 3, rows[1].LineNumber)

	var line5 []int
	for i, r := range rows {
		if r.LineNumber == 5 {
			line5 = append(line5, i)
		}
	}
	require.Len(t, line5, 2)

	primary, parent := rows[line5[0]], rows[line5[1]]
	assert.False(t, primary.IsParent)
	assert.Equal(t, "soc.dtsi", primary.File)
	assert.Equal(t, 1, primary.ChainIndex)
	assert.Equal(t, "\tcpus {", primary.Code)

	assert.True(t, parent.IsParent)
	assert.Equal(t, "board.dts", parent.File)
	assert.Equal(t, 0, parent.ChainIndex)
	assert.Empty(t, parent.Code)
}

func TestRowsSuppressedParents(t *testing.T) {
	idx := buildSample(t)

	count := 0
	for _, r := range Rows(idx) {
		if r.LineNumber == 10 {
			count++
			assert.True(t, r.Deleted)
		}
	}
	assert.Equal(t, 1, count)
}
