package annotation

import (
	"crypto/sha1"
	"io"
	"os"
	"path/filepath"

	log "github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"dtv/internal/model"
)

// GroupCount is the number of distinct grouping keys.
const GroupCount = 64

// Index holds every line of one annotated file with its provenance. It is
// immutable once built.
type Index struct {
	source      string
	lines       []model.OutputLine
	files       []string
	diagnostics []model.Diagnostic
}

// BuildFile reads an annotated file from disk and indexes it.
func BuildFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrIOFailure, "open %s: %v", path, err)
	}
	defer f.Close()

	return Build(f, path)
}

// Build reads annotated text from r and indexes every line in order. source
// names the input for reports and reloads. Malformed chain entries are logged
// and recorded as diagnostics; only read errors fail the build.
func Build(r io.Reader, source string) (*Index, error) {
	idx := &Index{source: source}
	seen := make(map[string]bool)

	lineNum := 0
	err := model.EachLine(r, func(text string) {
		lineNum++

		split := SplitLine(text)
		chain := ParseChain(split)

		for _, p := range chain.Problems {
			log.Warn("Dropping malformed reference", "source", source, "line", lineNum, "piece", p.Piece, "err", p.Err)
			idx.diagnostics = append(idx.diagnostics, model.Diagnostic{
				Line:    lineNum,
				Piece:   p.Piece,
				Message: p.Err.Error(),
			})
		}

		for _, ref := range chain.Refs {
			if !ref.IsEmpty() && !seen[ref.Path] {
				seen[ref.Path] = true
				idx.files = append(idx.files, ref.Path)
			}
		}

		idx.lines = append(idx.lines, model.OutputLine{
			LineNumber:              lineNum,
			Code:                    split.Code,
			Chain:                   chain.Refs,
			Deleted:                 chain.Deleted,
			SuppressParentExpansion: chain.SuppressParentExpansion,
		})
	})
	if err != nil {
		return nil, errors.Wrapf(ErrIOFailure, "read %s: %v", source, err)
	}

	log.Debug("Indexed annotated output", "source", source, "lines", len(idx.lines), "files", len(idx.files))
	return idx, nil
}

// Source returns the name the index was built from.
func (idx *Index) Source() string {
	return idx.source
}

// Len returns the number of output lines.
func (idx *Index) Len() int {
	return len(idx.lines)
}

// Get returns output line n (1-based).
func (idx *Index) Get(n int) (model.OutputLine, error) {
	if n < 1 || n > len(idx.lines) {
		return model.OutputLine{}, errors.Wrapf(ErrOutOfRange, "line %d (index has %d lines)", n, len(idx.lines))
	}
	return idx.lines[n-1], nil
}

// Lines returns a copy of all output lines.
func (idx *Index) Lines() []model.OutputLine {
	lines := make([]model.OutputLine, len(idx.lines))
	copy(lines, idx.lines)
	return lines
}

// Files returns every referenced source path in first-seen order.
func (idx *Index) Files() []string {
	files := make([]string, len(idx.files))
	copy(files, idx.files)
	return files
}

// Diagnostics returns the malformed-reference warnings collected while building.
func (idx *Index) Diagnostics() []model.Diagnostic {
	diags := make([]model.Diagnostic, len(idx.diagnostics))
	copy(diags, idx.diagnostics)
	return diags
}

// ParentReferences returns the chain of line n without its immediate origin,
// or nothing when parent expansion is suppressed for that line.
func (idx *Index) ParentReferences(n int) ([]model.SourceReference, error) {
	line, err := idx.Get(n)
	if err != nil {
		return nil, err
	}
	return line.Parents(), nil
}

// Origin returns the immediate origin of line n. ok is false when the line has
// no provenance.
func (idx *Index) Origin(n int) (ref model.SourceReference, ok bool, err error) {
	line, err := idx.Get(n)
	if err != nil {
		return model.SourceReference{}, false, err
	}
	ref, ok = line.Origin()
	return ref, ok, nil
}

// GroupKey is a shorthand for the package level GroupKey.
func (idx *Index) GroupKey(path string) int {
	return GroupKey(path)
}

// GroupKey maps a source path to a stable key in [0, GroupCount). Files with
// the same base name share a key.
func GroupKey(path string) int {
	sum := sha1.Sum([]byte(filepath.Base(path)))
	return int(sum[0]) % GroupCount
}
