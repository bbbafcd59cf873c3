package document

import "sort"

// ─────────────────────────────────────────────────────────────
// Selection — always a subset of the element keys. Ids that do
// not resolve are filtered on write and on read, never an error.
// ─────────────────────────────────────────────────────────────

// SelectedIDs returns the selection in paint order.
func (s *Store) SelectedIDs() []string {
	var out []string
	for _, id := range s.order {
		if s.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// IsSelected reports whether an element is in the selection.
func (s *Store) IsSelected(id string) bool {
	return s.selected[id]
}

// SetSelection replaces the selection with the given ids. Unknown ids are
// dropped silently.
func (s *Store) SetSelection(ids []string) {
	s.setSelection(ids)
	s.notifyIfIdle()
}

// ToggleSelection flips one element in or out of the selection. This is the
// canonical additive-selection path: modifier-click handlers call this, and
// nothing else decides additive semantics.
func (s *Store) ToggleSelection(id string) {
	if _, ok := s.elements[id]; !ok {
		return
	}
	next := s.SelectedIDs()
	if s.selected[id] {
		kept := next[:0]
		for _, other := range next {
			if other != id {
				kept = append(kept, other)
			}
		}
		next = kept
	} else {
		next = append(next, id)
	}
	s.setSelection(next)
	s.notifyIfIdle()
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.setSelection(nil)
	s.notifyIfIdle()
}

// SelectAll selects every element.
func (s *Store) SelectAll() {
	s.setSelection(s.ElementOrder())
	s.notifyIfIdle()
}

// setSelection applies a selection change and records it when a batch is
// open, so element creation can bundle auto-selection into the same undo
// step. Standalone selection changes produce no history.
func (s *Store) setSelection(ids []string) {
	before := s.SelectedIDs()
	next := make(map[string]bool)
	for _, id := range ids {
		if _, ok := s.elements[id]; ok {
			next[id] = true
		}
	}
	if sameIDSet(before, keys(next)) {
		return
	}
	s.selected = next
	s.record(op{kind: opSelection, selBefore: before, selAfter: s.SelectedIDs()})
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
