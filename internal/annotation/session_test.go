package annotation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLoadAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dts.annotated")
	require.NoError(t, os.WriteFile(path, []byte("a;\nb;\n"), 0o644))

	s := NewSession()
	assert.Nil(t, s.Current())

	first, err := s.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, s.Current())
	assert.Equal(t, 2, first.Len())

	require.NoError(t, os.WriteFile(path, []byte("a;\nb;\nc;\n"), 0o644))
	second, err := s.Reload()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Current().Len())

	// The index held by a reader is never modified by a later load
	assert.Equal(t, 2, first.Len())
	assert.NotSame(t, first, second)
}

func TestSessionFailedLoadKeepsPreviousIndex(t *testing.T) {
	s := NewSession()
	good, err := s.LoadReader(strings.NewReader("a;\n"), "good")
	require.NoError(t, err)

	_, err = s.Load(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, ErrIOFailure))
	assert.Same(t, good, s.Current())

	_, err = s.LoadReader(failingReader{}, "broken")
	assert.True(t, errors.Is(err, ErrIOFailure))
	assert.Same(t, good, s.Current())
}

func TestSessionReloadStdin(t *testing.T) {
	s := NewSession()
	_, err := s.Reload()
	assert.True(t, errors.Is(err, ErrNotReloadable))

	_, err = s.LoadReader(strings.NewReader("a;\n"), StdinSource)
	require.NoError(t, err)
	_, err = s.Reload()
	assert.True(t, errors.Is(err, ErrNotReloadable))
}
