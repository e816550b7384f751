package annotation

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDTS = `/dts-v1/; /* <no-file>:<no-line> */

/ { /* /src/board.dts:3.1-20.3 */
	model = "Acme"; /* /src/board.dts:4.2-4.17 */
	cpus { /* /src/board.dts:3.1-20.3, /src/soc.dtsi:10.2-15.4 */
		cpu@0 { /* /src/board.dts:3.1-20.3, /src/soc.dtsi:11.3-14.5 */
		}; /* /src/board.dts:3.1-20.3, /src/soc.dtsi:11.3-14.5 */
	}; /* /src/board.dts:3.1-20.3, /src/soc.dtsi:10.2-15.4 */
	uart { /* /src/soc.dtsi:20.2-22.4, __[|>*DELETED*<|]__ */
	}; /* /src/board.dts:3.1-20.3, /src/soc.dtsi:20.2-22.4, __[|>*DELETED*<|]__ */
	bad = <1>; /* /src/board.dts:oops, /src/board.dts:9.2-9.12 */
}; /* /src/board.dts:3.1-20.3 */`

func buildSample(t *testing.T) *Index {
	t.Helper()
	idx, err := Build(strings.NewReader(sampleDTS), "sample.dts.annotated")
	require.NoError(t, err)
	return idx
}

func TestBuildNumbersEveryLine(t *testing.T) {
	idx := buildSample(t)

	n := len(strings.Split(sampleDTS, "\n"))
	require.Equal(t, n, idx.Len())
	for k := 1; k <= n; k++ {
		line, err := idx.Get(k)
		require.NoError(t, err)
		assert.Equal(t, k, line.LineNumber)
	}
	assert.Equal(t, "sample.dts.annotated", idx.Source())
}

func TestGetOutOfRange(t *testing.T) {
	idx := buildSample(t)

	for _, n := range []int{0, -1, idx.Len() + 1} {
		_, err := idx.Get(n)
		assert.True(t, errors.Is(err, ErrOutOfRange), "line %d: %v", n, err)
	}
	_, err := idx.ParentReferences(idx.Len() + 1)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, _, err = idx.Origin(0)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestLinesWithoutCommentHavePlaceholderChain(t *testing.T) {
	idx := buildSample(t)

	for _, n := range []int{1, 2} {
		line, err := idx.Get(n)
		require.NoError(t, err)
		require.Len(t, line.Chain, 1)
		assert.True(t, line.Chain[0].IsEmpty())
	}

	line, _ := idx.Get(1)
	assert.Equal(t, "/dts-v1/;", line.Code)
	line, _ = idx.Get(2)
	assert.Equal(t, "", line.Code)
}

func TestParentReferencesAndOrigin(t *testing.T) {
	idx := buildSample(t)

	parents, err := idx.ParentReferences(5)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, "/src/board.dts", parents[0].Path)
	assert.Equal(t, 3, parents[0].StartLine)

	origin, ok, err := idx.Origin(5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/src/soc.dtsi", origin.Path)
	assert.Equal(t, 10, origin.StartLine)
	assert.Equal(t, 15, origin.EndLine)

	_, ok, err = idx.Origin(1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletedNodes(t *testing.T) {
	idx := buildSample(t)

	open, _ := idx.Get(9)
	assert.True(t, open.Deleted)
	assert.False(t, open.SuppressParentExpansion)
	require.Len(t, open.Chain, 1)
	assert.True(t, open.Chain[0].Deleted)

	closing, _ := idx.Get(10)
	assert.True(t, closing.Deleted)
	assert.True(t, closing.SuppressParentExpansion)
	require.Len(t, closing.Chain, 2)

	parents, err := idx.ParentReferences(10)
	require.NoError(t, err)
	assert.Empty(t, parents)
}

func TestMalformedReferenceDoesNotStopParsing(t *testing.T) {
	idx := buildSample(t)

	line, _ := idx.Get(11)
	require.Len(t, line.Chain, 1)
	assert.Equal(t, 9, line.Chain[0].StartLine)

	diags := idx.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, 11, diags[0].Line)
	assert.Equal(t, "/src/board.dts:oops", diags[0].Piece)

	last, err := idx.Get(12)
	require.NoError(t, err)
	assert.Equal(t, "};", last.Code)
}

func TestFilesInFirstSeenOrder(t *testing.T) {
	idx := buildSample(t)
	assert.Equal(t, []string{"/src/board.dts", "/src/soc.dtsi"}, idx.Files())
}

func TestIndexAccessorsReturnCopies(t *testing.T) {
	idx := buildSample(t)

	lines := idx.Lines()
	lines[0].Code = "changed"
	line, _ := idx.Get(1)
	assert.Equal(t, "/dts-v1/;", line.Code)
}

func TestBuildCRLF(t *testing.T) {
	idx, err := Build(strings.NewReader("a; /* /src/a.dts:1 */\r\nb;\r\n"), "crlf")
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())
	line, _ := idx.Get(2)
	assert.Equal(t, "b;", line.Code)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestBuildReadFailure(t *testing.T) {
	_, err := Build(failingReader{}, "broken")
	assert.True(t, errors.Is(err, ErrIOFailure))

	_, err = BuildFile(filepath.Join(t.TempDir(), "missing.annotated"))
	assert.True(t, errors.Is(err, ErrIOFailure))
}

func TestGroupKey(t *testing.T) {
	for _, path := range []string{"/src/board.dts", "/src/soc.dtsi", "", "x"} {
		k := GroupKey(path)
		assert.Equal(t, k, GroupKey(path))
		assert.GreaterOrEqual(t, k, 0)
		assert.Less(t, k, GroupCount)
	}
	assert.Equal(t, GroupKey("/a/soc.dtsi"), GroupKey("/b/soc.dtsi"))

	idx := buildSample(t)
	assert.Equal(t, GroupKey("/src/soc.dtsi"), idx.GroupKey("/src/soc.dtsi"))
}

func TestBuildAcceptsVeryLongLines(t *testing.T) {
	blob := "data = [" + strings.Repeat("a", 11<<20) + "]; /* /src/blob.dts:2.2-2.30 */"
	input := "x; /* /src/blob.dts:1 */\r\n" + blob + "\ny;"

	idx, err := Build(strings.NewReader(input), "long")
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	first, err := idx.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "x;", first.Code)

	long, err := idx.Get(2)
	require.NoError(t, err)
	assert.Len(t, long.Code, len("data = [];")+11<<20)
	origin, ok := long.Origin()
	require.True(t, ok)
	assert.Equal(t, 2, origin.StartLine)

	last, err := idx.Get(3)
	require.NoError(t, err)
	assert.Equal(t, "y;", last.Code)
}
