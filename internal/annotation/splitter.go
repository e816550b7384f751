package annotation

import (
	"strings"
	"unicode"
)

const (
	commentOpen  = "/*"
	commentClose = "*/"

	// NoFileSentinel is what the producer writes for lines without an origin.
	NoFileSentinel = "<no-file>:<no-line>"
)

// Split is one annotated line separated into its code and comment parts.
type Split struct {
	Code       string // Text before the first "/*", trailing whitespace trimmed
	Comment    string // Trimmed text between "/*" and "*/"
	HasComment bool
}

// SplitLine separates an annotated line into code and provenance comment.
// An unterminated comment, an empty comment and the no-file sentinel all count
// as "no comment".
func SplitLine(line string) Split {
	open := strings.Index(line, commentOpen)
	if open < 0 {
		return Split{Code: trimRight(line)}
	}

	split := Split{Code: trimRight(line[:open])}

	body := line[open+len(commentOpen):]
	end := strings.Index(body, commentClose)
	if end < 0 {
		return split
	}

	comment := strings.TrimSpace(body[:end])
	if comment == "" || comment == NoFileSentinel {
		return split
	}

	split.Comment = comment
	split.HasComment = true
	return split
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
