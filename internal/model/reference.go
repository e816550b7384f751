package model

import (
	"fmt"
	"path/filepath"
)

// Version of the dtv tool.
const Version = "0.3.0"

// SourceReference points at the place in an original source file that
// produced (part of) an output line.
type SourceReference struct {
	Path        string `json:"path"`        // Canonical path of the source file, empty for "no provenance"
	StartLine   int    `json:"startLine"`   // First line of the range (1-based)
	StartColumn int    `json:"startColumn"` // Column on StartLine, 0 when the producer gave a bare line
	EndLine     int    `json:"endLine"`     // Last line of the range (inclusive)
	EndColumn   int    `json:"endColumn"`   // Column on EndLine
	Deleted     bool   `json:"deleted"`     // Node was removed by an overlay at this origin
	Raw         string `json:"raw,omitempty"`
}

// IsEmpty reports whether the reference is the "no provenance" placeholder.
func (r SourceReference) IsEmpty() bool {
	return r.Path == ""
}

// Base returns the file name part of the path.
func (r SourceReference) Base() string {
	if r.IsEmpty() {
		return ""
	}
	return filepath.Base(r.Path)
}

func (r SourceReference) String() string {
	if r.IsEmpty() {
		return ""
	}
	return fmt.Sprintf("%s:%d.%d-%d.%d", r.Path, r.StartLine, r.StartColumn, r.EndLine, r.EndColumn)
}

// Short renders the reference with the base name only, e.g. "board.dtsi:12-14".
func (r SourceReference) Short() string {
	if r.IsEmpty() {
		return ""
	}
	if r.StartLine == r.EndLine {
		return fmt.Sprintf("%s:%d", r.Base(), r.StartLine)
	}
	return fmt.Sprintf("%s:%d-%d", r.Base(), r.StartLine, r.EndLine)
}

// OutputLine is one line of annotated output together with its provenance chain.
type OutputLine struct {
	LineNumber int               `json:"lineNumber"`
	Code       string            `json:"code"`
	Chain      []SourceReference `json:"chain"`
	Deleted    bool              `json:"deleted"`

	// SuppressParentExpansion is set on the closing line of a deleted node so
	// that its include chain is not listed again.
	SuppressParentExpansion bool `json:"suppressParentExpansion"`
}

// Origin returns the immediate origin (last chain entry). ok is false when the
// chain is empty or holds only the "no provenance" placeholder.
func (l OutputLine) Origin() (SourceReference, bool) {
	if len(l.Chain) == 0 {
		return SourceReference{}, false
	}
	last := l.Chain[len(l.Chain)-1]
	return last, !last.IsEmpty()
}

// Parents returns the outer include/macro context of the line, outermost first.
func (l OutputLine) Parents() []SourceReference {
	if l.SuppressParentExpansion || len(l.Chain) < 2 {
		return []SourceReference{}
	}
	parents := make([]SourceReference, len(l.Chain)-1)
	copy(parents, l.Chain[:len(l.Chain)-1])
	return parents
}

// HasProvenance reports whether any chain entry names a file.
func (l OutputLine) HasProvenance() bool {
	for _, ref := range l.Chain {
		if !ref.IsEmpty() {
			return true
		}
	}
	return false
}

// Row is one display row: either the primary row of an output line or one of
// its parent references.
type Row struct {
	LineNumber int             `json:"lineNumber"`
	Code       string          `json:"code"`
	File       string          `json:"file"` // Base name of Ref.Path
	Ref        SourceReference `json:"ref"`
	ChainIndex int             `json:"chainIndex"` // Position of Ref in the chain, -1 if none
	IsParent   bool            `json:"isParent"`
	Deleted    bool            `json:"deleted"`
}

// Diagnostic records a chain entry that could not be parsed.
type Diagnostic struct {
	Line    int    `json:"line"`
	Piece   string `json:"piece"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %q: %s", d.Line, d.Piece, d.Message)
}
