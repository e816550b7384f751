package annotation

import (
	"strings"

	"dtv/internal/model"
)

// Rows flattens the index into display rows: one row per output line carrying
// its immediate origin, followed by one row per parent reference. Blank lines
// without provenance are left out.
func Rows(idx *Index) []model.Row {
	rows := make([]model.Row, 0, idx.Len())

	for _, line := range idx.lines {
		if !line.HasProvenance() && !line.Deleted && strings.TrimSpace(line.Code) == "" {
			continue
		}

		origin, ok := line.Origin()
		row := model.Row{
			LineNumber: line.LineNumber,
			Code:       line.Code,
			ChainIndex: -1,
			Deleted:    line.Deleted,
		}
		if ok {
			row.Ref = origin
			row.File = origin.Base()
			row.ChainIndex = len(line.Chain) - 1
		}
		rows = append(rows, row)

		for i, parent := range line.Parents() {
			rows = append(rows, model.Row{
				LineNumber: line.LineNumber,
				File:       parent.Base(),
				Ref:        parent,
				ChainIndex: i,
				IsParent:   true,
				Deleted:    line.Deleted,
			})
		}
	}
	return rows
}
