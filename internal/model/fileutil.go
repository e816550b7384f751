package model

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a referenced source file cannot be read.
	ErrNotFound = errors.New("source file not found")
	// ErrRangeError is returned when a line range does not fit the source file.
	ErrRangeError = errors.New("line range out of bounds")
)

// ContextLine is one numbered line of a LineContext.
type ContextLine struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Target bool   `json:"target"` // Part of the requested range
}

// LineContext represents a line range from a file with surrounding context
type LineContext struct {
	Path     string        `json:"path"`
	Lines    []ContextLine `json:"lines"`
	ErrorMsg string        `json:"error,omitempty"` // Error message if file couldn't be read
}

// Resolve returns the literal text of lines ref.StartLine..ref.EndLine of
// ref.Path, joined with "\n". Columns are ignored.
func Resolve(ref SourceReference) (string, error) {
	if ref.IsEmpty() {
		return "", errors.Wrap(ErrNotFound, "reference has no file")
	}

	lines, err := readLines(ref.Path)
	if err != nil {
		return "", errors.Wrapf(ErrNotFound, "%s: %v", ref.Path, err)
	}

	if err := checkRange(ref.StartLine, ref.EndLine, len(lines)); err != nil {
		return "", errors.Wrap(err, ref.Path)
	}

	return strings.Join(lines[ref.StartLine-1:ref.EndLine], "\n"), nil
}

// GetLineContext reads a file and returns lines start..end plus up to radius
// lines on either side. Failures are reported through ErrorMsg.
func GetLineContext(filePath string, start, end, radius int) LineContext {
	result := LineContext{Path: filePath}

	lines, err := readLines(filePath)
	if err != nil {
		result.ErrorMsg = errors.Wrapf(ErrNotFound, "%s: %v", filePath, err).Error()
		return result
	}

	if err := checkRange(start, end, len(lines)); err != nil {
		result.ErrorMsg = err.Error()
		return result
	}

	if radius < 0 {
		radius = 0
	}
	from := max(start-radius, 1)
	to := min(end+radius, len(lines))

	for n := from; n <= to; n++ {
		result.Lines = append(result.Lines, ContextLine{
			Number: n,
			Text:   lines[n-1],
			Target: n >= start && n <= end,
		})
	}
	return result
}

func checkRange(start, end, count int) error {
	switch {
	case start < 1:
		return errors.Wrapf(ErrRangeError, "start line %d", start)
	case start > end:
		return errors.Wrapf(ErrRangeError, "start line %d after end line %d", start, end)
	case end > count:
		return errors.Wrapf(ErrRangeError, "line %d out of range (file has %d lines)", end, count)
	}
	return nil
}

func readLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	err = EachLine(file, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// EachLine calls fn for every line of r with the "\n" or "\r\n" terminator
// removed. Lines have no length limit. A final line without terminator is
// still reported.
func EachLine(r io.Reader, fn func(line string)) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			fn(line)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
