package document

import "whiteboard/internal/domain"

// ─────────────────────────────────────────────────────────────
// History — a log of named, atomic batches. Nesting is depth
// counted: only the outermost boundary yields one undo step.
// ─────────────────────────────────────────────────────────────

// maxHistory bounds the undo log; the oldest batches are pruned.
const maxHistory = 40

type opKind int

const (
	opAdd opKind = iota
	opRemove
	opUpdate
	opReorder
	opSelection
)

// op is one reversible store mutation. Each variant carries exactly the
// state needed to play it forward or backward.
type op struct {
	kind opKind
	id   string

	element     *domain.Element // add/remove: the element as it was
	orderIndex  int             // remove: where in the paint order it sat
	wasSelected bool            // remove: restore selection on undo

	patch   domain.Patch // update: forward
	inverse domain.Patch // update: backward

	orderBefore []string // reorder
	orderAfter  []string

	selBefore []string // selection change inside a batch
	selAfter  []string
}

// batch is one undo step.
type batch struct {
	label string
	ops   []op
}

type historyLog struct {
	undo     []*batch
	redo     []*batch
	current  *batch
	depth    int
	suppress int // >0 while applying undo/redo or unrecorded mutations
}

func newHistoryLog() *historyLog {
	return &historyLog{}
}

// record appends an op to the open batch. Ops recorded outside any batch or
// while suppressed are dropped: the mutation happens, no history is written.
func (s *Store) record(o op) {
	h := s.history
	if h.suppress > 0 || h.current == nil {
		return
	}
	h.current.ops = append(h.current.ops, o)
}

// BeginBatch opens a named batch. Nested calls only bump the depth counter;
// the label of the outermost batch wins.
func (s *Store) BeginBatch(label string) {
	h := s.history
	h.depth++
	if h.depth == 1 {
		h.current = &batch{label: label}
	}
}

// EndBatch closes the innermost boundary. When the outermost boundary closes
// with commit, the batch becomes one undo step (empty batches are dropped).
// Closing with commit=false rolls every recorded op back and discards the
// batch — nothing reaches the log.
func (s *Store) EndBatch(commit bool) {
	h := s.history
	if h.depth == 0 {
		return
	}
	h.depth--
	if h.depth > 0 {
		return
	}
	b := h.current
	h.current = nil
	if b == nil {
		return
	}
	if !commit {
		s.playBackward(b)
	} else if len(b.ops) > 0 {
		h.undo = append(h.undo, b)
		h.redo = nil
		if len(h.undo) > maxHistory {
			h.undo = h.undo[len(h.undo)-maxHistory:]
		}
	}
	s.notify()
}

// WithUndo wraps fn in one named batch.
func (s *Store) WithUndo(label string, fn func()) {
	s.BeginBatch(label)
	fn()
	s.EndBatch(true)
}

// CanUndo reports whether an undo step exists.
func (s *Store) CanUndo() bool { return len(s.history.undo) > 0 }

// CanRedo reports whether a redo step exists.
func (s *Store) CanRedo() bool { return len(s.history.redo) > 0 }

// UndoLabels returns the labels of pending undo steps, oldest first.
func (s *Store) UndoLabels() []string {
	labels := make([]string, len(s.history.undo))
	for i, b := range s.history.undo {
		labels[i] = b.label
	}
	return labels
}

// Undo reverts the most recent batch as a single step and returns its label.
func (s *Store) Undo() (string, bool) {
	h := s.history
	if len(h.undo) == 0 {
		return "", false
	}
	b := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	s.playBackward(b)
	h.redo = append(h.redo, b)
	s.notify()
	return b.label, true
}

// Redo re-applies the most recently undone batch.
func (s *Store) Redo() (string, bool) {
	h := s.history
	if len(h.redo) == 0 {
		return "", false
	}
	b := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	s.playForward(b)
	h.undo = append(h.undo, b)
	s.notify()
	return b.label, true
}

func (s *Store) playBackward(b *batch) {
	s.history.suppress++
	defer func() { s.history.suppress-- }()
	for i := len(b.ops) - 1; i >= 0; i-- {
		s.revertOp(b.ops[i])
	}
}

func (s *Store) playForward(b *batch) {
	s.history.suppress++
	defer func() { s.history.suppress-- }()
	for _, o := range b.ops {
		s.applyOp(o)
	}
}

func (s *Store) revertOp(o op) {
	switch o.kind {
	case opAdd:
		if _, ok := s.elements[o.id]; !ok {
			return
		}
		delete(s.elements, o.id)
		if idx := s.orderIndex(o.id); idx >= 0 {
			s.order = append(s.order[:idx], s.order[idx+1:]...)
		}
		delete(s.selected, o.id)
	case opRemove:
		el := o.element.Clone()
		s.elements[el.ID] = el
		idx := o.orderIndex
		if idx < 0 || idx > len(s.order) {
			idx = len(s.order)
		}
		s.order = append(s.order[:idx], append([]string{el.ID}, s.order[idx:]...)...)
		if o.wasSelected {
			s.selected[el.ID] = true
		}
	case opUpdate:
		if el, ok := s.elements[o.id]; ok {
			o.inverse.Apply(el)
		}
	case opReorder:
		s.order = append([]string(nil), o.orderBefore...)
	case opSelection:
		s.replaceSelection(o.selBefore)
	}
}

func (s *Store) applyOp(o op) {
	switch o.kind {
	case opAdd:
		el := o.element.Clone()
		if _, ok := s.elements[el.ID]; ok {
			return
		}
		s.elements[el.ID] = el
		s.order = append(s.order, el.ID)
	case opRemove:
		delete(s.elements, o.id)
		if idx := s.orderIndex(o.id); idx >= 0 {
			s.order = append(s.order[:idx], s.order[idx+1:]...)
		}
		delete(s.selected, o.id)
	case opUpdate:
		if el, ok := s.elements[o.id]; ok {
			o.patch.Apply(el)
		}
	case opReorder:
		s.order = append([]string(nil), o.orderAfter...)
	case opSelection:
		s.replaceSelection(o.selAfter)
	}
}

// replaceSelection swaps the selection set, filtering ids that no longer
// exist so the subset invariant holds even across pruned history.
func (s *Store) replaceSelection(ids []string) {
	s.selected = make(map[string]bool)
	for _, id := range ids {
		if _, ok := s.elements[id]; ok {
			s.selected[id] = true
		}
	}
}
