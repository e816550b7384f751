package annotation

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"dtv/internal/model"
)

// DeletedTag is the placeholder dtc writes in place of a chain entry for a
// node that an overlay deleted.
const DeletedTag = "__[|>*DELETED*<|]__"

const closingBracket = "};"

// Chain is the parsed provenance of one output line.
type Chain struct {
	Refs                    []model.SourceReference
	Deleted                 bool
	SuppressParentExpansion bool
	Problems                []Problem // Entries dropped as malformed
}

// Problem describes a dropped chain entry.
type Problem struct {
	Piece string
	Err   error
}

// ParseChain turns a split line into its provenance chain. It never fails:
// entries that do not parse are dropped and reported in Problems.
func ParseChain(split Split) Chain {
	if !split.HasComment {
		return Chain{Refs: []model.SourceReference{{}}}
	}

	chain := Chain{Refs: []model.SourceReference{}}
	for _, piece := range strings.Split(split.Comment, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if strings.Contains(piece, DeletedTag) {
			chain.Deleted = true
			continue
		}

		ref, err := ParseReference(piece)
		if err != nil {
			chain.Problems = append(chain.Problems, Problem{Piece: piece, Err: err})
			continue
		}
		chain.Refs = append(chain.Refs, ref)
	}

	if chain.Deleted {
		for i := range chain.Refs {
			chain.Refs[i].Deleted = true
		}
		chain.SuppressParentExpansion = strings.TrimSpace(split.Code) == closingBracket
	}
	return chain
}

// ParseReference parses one "<path>:<position>" chain entry. The path is
// everything before the last colon and is canonicalized.
func ParseReference(piece string) (model.SourceReference, error) {
	colon := strings.LastIndexByte(piece, ':')
	if colon < 0 {
		return model.SourceReference{}, errors.Wrap(ErrMalformedReference, "missing position")
	}

	path := strings.TrimSpace(piece[:colon])
	if path == "" {
		return model.SourceReference{}, errors.Wrap(ErrMalformedReference, "empty path")
	}

	pos, err := parsePosition(strings.TrimSpace(piece[colon+1:]))
	if err != nil {
		return model.SourceReference{}, err
	}

	return model.SourceReference{
		Path:        canonicalPath(path),
		StartLine:   pos.startLine,
		StartColumn: pos.startCol,
		EndLine:     pos.endLine,
		EndColumn:   pos.endCol,
		Raw:         piece,
	}, nil
}

type position struct {
	startLine, startCol int
	endLine, endCol     int
}

// parsePosition accepts exactly
//
//	line
//	line "." col "-" line "." col
func parsePosition(spec string) (position, error) {
	malformed := func(reason string) (position, error) {
		return position{}, errors.Wrapf(ErrMalformedReference, "position %q: %s", spec, reason)
	}

	startLine, rest, ok := leadingNumber(spec)
	if !ok {
		return malformed("expected line number")
	}
	if rest == "" {
		return position{startLine: startLine, endLine: startLine}, nil
	}

	rest, ok = expect(rest, '.')
	if !ok {
		return malformed("expected '.' after start line")
	}
	startCol, rest, ok := leadingNumber(rest)
	if !ok {
		return malformed("expected start column")
	}
	rest, ok = expect(rest, '-')
	if !ok {
		return malformed("expected '-' after start column")
	}
	endLine, rest, ok := leadingNumber(rest)
	if !ok {
		return malformed("expected end line")
	}
	rest, ok = expect(rest, '.')
	if !ok {
		return malformed("expected '.' after end line")
	}
	endCol, rest, ok := leadingNumber(rest)
	if !ok {
		return malformed("expected end column")
	}
	if rest != "" {
		return malformed("trailing characters")
	}
	if endLine < startLine {
		return malformed("range ends before it starts")
	}

	return position{startLine: startLine, startCol: startCol, endLine: endLine, endCol: endCol}, nil
}

func leadingNumber(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}

func expect(s string, c byte) (string, bool) {
	if s == "" || s[0] != c {
		return s, false
	}
	return s[1:], true
}

// canonicalPath makes p absolute and resolves symlinks when the file exists.
func canonicalPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
