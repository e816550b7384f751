package annotation

import "strings"

// Navigator keeps cyclic find-next/find-previous state over the code of an
// index. A Navigator is bound to one index; build a new one after a reload.
type Navigator struct {
	idx     *Index
	query   string
	matches []int
	cursor  int
}

func NewNavigator(idx *Index) *Navigator {
	return &Navigator{idx: idx}
}

// SetQuery starts a new search. It reports whether the query changed; an
// unchanged query leaves matches and cursor alone so the caller can Advance.
func (n *Navigator) SetQuery(q string) bool {
	if q == n.query {
		return false
	}

	n.query = q
	n.matches = nil
	n.cursor = 0

	if q == "" || n.idx == nil {
		return true
	}
	for _, line := range n.idx.lines {
		if strings.Contains(line.Code, q) {
			n.matches = append(n.matches, line.LineNumber)
		}
	}
	return true
}

// Query returns the active query, empty when no search is active.
func (n *Navigator) Query() string {
	return n.query
}

// Matches returns the matching line numbers in ascending order.
func (n *Navigator) Matches() []int {
	matches := make([]int, len(n.matches))
	copy(matches, n.matches)
	return matches
}

// Position returns the 0-based cursor and the match count.
func (n *Navigator) Position() (int, int) {
	return n.cursor, len(n.matches)
}

// Current returns the match under the cursor.
func (n *Navigator) Current() (int, bool) {
	if len(n.matches) == 0 {
		return 0, false
	}
	return n.matches[n.cursor], true
}

// Advance moves to the next match, wrapping to the first.
func (n *Navigator) Advance() (int, bool) {
	return n.move(1)
}

// Retreat moves to the previous match, wrapping to the last.
func (n *Navigator) Retreat() (int, bool) {
	return n.move(-1)
}

// Reset clears the query.
func (n *Navigator) Reset() {
	n.SetQuery("")
}

func (n *Navigator) move(step int) (int, bool) {
	count := len(n.matches)
	if count == 0 {
		return 0, false
	}
	n.cursor = ((n.cursor+step)%count + count) % count
	return n.matches[n.cursor], true
}
