package annotation

import (
	"fmt"
	"sort"
	"strings"

	"dtv/internal/model"
)

// FileStat counts how many output lines a source file is the immediate origin of.
type FileStat struct {
	Path     string `json:"path"`
	Lines    int    `json:"lines"`
	Deleted  int    `json:"deleted"`
	GroupKey int    `json:"groupKey"`
}

// Summary aggregates an index for reports.
type Summary struct {
	Source      string             `json:"source"`
	Lines       int                `json:"lines"`
	WithOrigin  int                `json:"withOrigin"`
	Deleted     int                `json:"deleted"`
	Files       []FileStat         `json:"files"`
	Diagnostics []model.Diagnostic `json:"diagnostics"`
}

// Summarize counts origins per file. Files are ordered by descending line
// count, then by path.
func Summarize(idx *Index) Summary {
	s := Summary{
		Source:      idx.Source(),
		Lines:       idx.Len(),
		Diagnostics: idx.Diagnostics(),
	}

	stats := make(map[string]*FileStat)
	for _, path := range idx.files {
		stats[path] = &FileStat{Path: path, GroupKey: GroupKey(path)}
	}

	for _, line := range idx.lines {
		if line.Deleted {
			s.Deleted++
		}
		origin, ok := line.Origin()
		if !ok {
			continue
		}
		s.WithOrigin++
		st := stats[origin.Path]
		st.Lines++
		if line.Deleted {
			st.Deleted++
		}
	}

	for _, st := range stats {
		s.Files = append(s.Files, *st)
	}
	sort.Slice(s.Files, func(i, j int) bool {
		if s.Files[i].Lines != s.Files[j].Lines {
			return s.Files[i].Lines > s.Files[j].Lines
		}
		return s.Files[i].Path < s.Files[j].Path
	})
	return s
}

// GenerateReport renders a plain-text provenance report. verbose adds one
// line per output line with its full chain.
func GenerateReport(idx *Index, verbose bool) string {
	s := Summarize(idx)

	var b strings.Builder
	b.WriteString("DTV Provenance Report\n")
	b.WriteString("=====================\n\n")
	fmt.Fprintf(&b, "Source:       %s\n", s.Source)
	fmt.Fprintf(&b, "Output lines: %d\n", s.Lines)
	fmt.Fprintf(&b, "With origin:  %d\n", s.WithOrigin)
	fmt.Fprintf(&b, "Deleted:      %d\n", s.Deleted)

	fmt.Fprintf(&b, "\nSource files (%d)\n", len(s.Files))
	b.WriteString("-----------------\n")
	for _, st := range s.Files {
		fmt.Fprintf(&b, "  %5d  grp %2d  %s", st.Lines, st.GroupKey, st.Path)
		if st.Deleted > 0 {
			fmt.Fprintf(&b, "  (%d deleted)", st.Deleted)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nDiagnostics (%d)\n", len(s.Diagnostics))
	b.WriteString("----------------\n")
	if len(s.Diagnostics) == 0 {
		b.WriteString("  No malformed references.\n")
	}
	for _, d := range s.Diagnostics {
		fmt.Fprintf(&b, "  %s\n", d)
	}

	if verbose {
		b.WriteString("\nLines\n")
		b.WriteString("-----\n")
		for _, line := range idx.lines {
			marker := model.IconOK
			if line.Deleted {
				marker = model.IconDeleted
			}
			chain := make([]string, 0, len(line.Chain))
			for _, ref := range line.Chain {
				if !ref.IsEmpty() {
					chain = append(chain, ref.Short())
				}
			}
			fmt.Fprintf(&b, "%5d %s %-50s", line.LineNumber, marker, line.Code)
			if len(chain) > 0 {
				fmt.Fprintf(&b, "  <- %s", strings.Join(chain, " "+model.IconBreadcrumb+" "))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
