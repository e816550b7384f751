package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	log "github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"dtv/internal/annotation"
	"dtv/internal/model"
)

// Server exposes the session's current index over a small JSON API.
type Server struct {
	session *annotation.Session
}

// NewHandler returns the API routes for session.
func NewHandler(session *annotation.Session) http.Handler {
	s := &Server{session: session}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/lines", s.handleLines)
	mux.HandleFunc("/api/rows", s.handleRows)
	mux.HandleFunc("/api/line", s.handleLine)
	mux.HandleFunc("/api/resolve", s.handleResolve)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/reload", s.handleReload)
	mux.HandleFunc("/api/version", handleVersion)
	return mux
}

// StartServer serves the API on addr until the listener fails.
func StartServer(addr string, session *annotation.Session) error {
	fmt.Printf("Starting dtv web server at http://%s\n", addr)
	log.Info("Serving", "addr", addr, "source", session.Current().Source())

	if err := http.ListenAndServe(addr, NewHandler(session)); err != nil {
		return errors.Wrap(err, "web server")
	}
	return nil
}

// index returns the current index or writes 503 when nothing is loaded.
func (s *Server) index(w http.ResponseWriter) (*annotation.Index, bool) {
	idx := s.session.Current()
	if idx == nil {
		http.Error(w, "no annotated file loaded", http.StatusServiceUnavailable)
		return nil, false
	}
	return idx, true
}

func (s *Server) handleLines(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.index(w)
	if !ok {
		return
	}
	writeJSON(w, struct {
		Source string             `json:"source"`
		Count  int                `json:"count"`
		Lines  []model.OutputLine `json:"lines"`
	}{idx.Source(), idx.Len(), idx.Lines()})
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.index(w)
	if !ok {
		return
	}
	writeJSON(w, annotation.Rows(idx))
}

type lineResponse struct {
	model.OutputLine
	Parents  []model.SourceReference `json:"parents"`
	Origin   *model.SourceReference  `json:"origin,omitempty"`
	GroupKey *int                    `json:"groupKey,omitempty"`
}

func (s *Server) handleLine(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.index(w)
	if !ok {
		return
	}
	n, ok := intParam(w, r, "n", -1)
	if !ok {
		return
	}

	line, err := idx.Get(n)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := lineResponse{OutputLine: line, Parents: line.Parents()}
	if origin, ok := line.Origin(); ok {
		key := idx.GroupKey(origin.Path)
		resp.Origin = &origin
		resp.GroupKey = &key
	}
	writeJSON(w, resp)
}

// handleResolve returns the source text of chain entry i of line n. i
// defaults to the immediate origin.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.index(w)
	if !ok {
		return
	}
	n, ok := intParam(w, r, "n", -1)
	if !ok {
		return
	}
	line, err := idx.Get(n)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(line.Chain) == 0 {
		http.Error(w, fmt.Sprintf("line %d has no provenance", n), http.StatusNotFound)
		return
	}

	i, ok := intParam(w, r, "i", len(line.Chain)-1)
	if !ok {
		return
	}
	if i < 0 || i >= len(line.Chain) {
		http.Error(w, fmt.Sprintf("chain index %d out of range", i), http.StatusBadRequest)
		return
	}

	ref := line.Chain[i]
	text, err := model.Resolve(ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, struct {
		Ref  model.SourceReference `json:"ref"`
		Text string                `json:"text"`
	}{ref, text})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.index(w)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	nav := annotation.NewNavigator(idx)
	nav.SetQuery(query)
	writeJSON(w, struct {
		Query   string `json:"query"`
		Matches []int  `json:"matches"`
	}{query, nav.Matches()})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.index(w)
	if !ok {
		return
	}
	verbose := r.URL.Query().Get("verbose") == "true"

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(annotation.GenerateReport(idx, verbose)))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "use POST", http.StatusMethodNotAllowed)
		return
	}

	idx, err := s.session.Reload()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, annotation.Summarize(idx))
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		Version string `json:"version"`
	}{model.Version})
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if def < 0 {
			http.Error(w, name+" is required", http.StatusBadRequest)
			return 0, false
		}
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid %s: %q", name, raw), http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

// writeError maps package errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, annotation.ErrOutOfRange), errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrRangeError):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, annotation.ErrNotReloadable):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to encode response", "err", err)
	}
}
