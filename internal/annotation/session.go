package annotation

import (
	"io"
	"sync/atomic"

	log "github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// StdinSource is the source name used for indexes read from standard input.
const StdinSource = "-"

// Session owns the index of the currently loaded file. A new index is only
// published once it has been built completely; a failed load keeps the
// previous one. Safe for concurrent use.
type Session struct {
	current atomic.Pointer[Index]
}

func NewSession() *Session {
	return &Session{}
}

// Current returns the loaded index, or nil before the first successful load.
func (s *Session) Current() *Index {
	return s.current.Load()
}

// Load builds an index from the file at path and publishes it.
func (s *Session) Load(path string) (*Index, error) {
	idx, err := BuildFile(path)
	if err != nil {
		log.Error("Load failed, keeping previous index", "source", path, "err", err)
		return nil, err
	}
	s.current.Store(idx)
	return idx, nil
}

// LoadReader builds an index from r and publishes it.
func (s *Session) LoadReader(r io.Reader, source string) (*Index, error) {
	idx, err := Build(r, source)
	if err != nil {
		log.Error("Load failed, keeping previous index", "source", source, "err", err)
		return nil, err
	}
	s.current.Store(idx)
	return idx, nil
}

// Reload re-reads the source of the current index.
func (s *Session) Reload() (*Index, error) {
	idx := s.Current()
	if idx == nil {
		return nil, errors.Wrap(ErrNotReloadable, "nothing loaded")
	}
	if idx.Source() == StdinSource || idx.Source() == "" {
		return nil, errors.Wrap(ErrNotReloadable, "index was read from a stream")
	}
	return s.Load(idx.Source())
}
