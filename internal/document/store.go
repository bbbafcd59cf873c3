package document

import (
	"time"

	"github.com/google/uuid"

	"whiteboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Document Store — canonical element map, z-order, selection,
// history and viewport. No rendering knowledge.
// ─────────────────────────────────────────────────────────────

// Store is the single source of truth for a board. It is not goroutine-safe:
// all mutation happens on the UI event goroutine, and every write goes through
// this API. Scene nodes are derived, disposable projections of this state.
type Store struct {
	elements    map[string]*domain.Element
	order       []string // paint order, always a permutation of elements keys
	selected    map[string]bool
	viewport    Viewport
	history     *historyLog
	subscribers map[int]*subscription
	nextSubID   int
}

// Viewport is the shared pan/zoom state consumed by store and scene alike.
type Viewport struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// AddOptions controls AddElement behavior.
type AddOptions struct {
	Select      bool
	PushHistory bool
}

// UpdateOptions controls UpdateElement behavior.
type UpdateOptions struct {
	PushHistory bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		elements:    make(map[string]*domain.Element),
		selected:    make(map[string]bool),
		viewport:    Viewport{Scale: 1},
		history:     newHistoryLog(),
		subscribers: make(map[int]*subscription),
	}
}

// ── Read access ────────────────────────────────────────────

// Element returns a copy of the element, or nil if the id is unknown.
func (s *Store) Element(id string) *domain.Element {
	el, ok := s.elements[id]
	if !ok {
		return nil
	}
	return el.Clone()
}

// Has reports whether an element exists.
func (s *Store) Has(id string) bool {
	_, ok := s.elements[id]
	return ok
}

// Bounds returns the live bounding box of an element. Connector endpoint
// resolution depends on this being current geometry, never a cached value.
func (s *Store) Bounds(id string) (domain.Rect, bool) {
	el, ok := s.elements[id]
	if !ok {
		return domain.Rect{}, false
	}
	return el.Bounds(), true
}

// ElementsOfType returns copies of every element of the given type, in paint
// order. This is the selector renderer modules subscribe with.
func (s *Store) ElementsOfType(t domain.ElementType) []*domain.Element {
	var out []*domain.Element
	for _, id := range s.order {
		if el := s.elements[id]; el != nil && el.Type == t {
			out = append(out, el.Clone())
		}
	}
	return out
}

// ElementOrder returns a copy of the paint order.
func (s *Store) ElementOrder() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of elements.
func (s *Store) Len() int {
	return len(s.elements)
}

// Viewport returns the current pan/zoom state.
func (s *Store) Viewport() Viewport {
	return s.viewport
}

// ── Mutation ───────────────────────────────────────────────

// AddElement inserts an element at the top of the paint order. A missing id
// is generated. Creation runs inside one batch so auto-selection undoes with
// it as a single step.
func (s *Store) AddElement(el *domain.Element, opts AddOptions) string {
	if el.ID == "" {
		el.ID = uuid.NewString()
	}
	if _, exists := s.elements[el.ID]; exists {
		return el.ID
	}
	now := time.Now()
	el.CreatedAt = now
	el.UpdatedAt = now
	el.Width = domain.ClampSize(el.Width)
	el.Height = domain.ClampSize(el.Height)

	s.withImplicitBatch("Add "+el.Type.DisplayName(), opts.PushHistory, func() {
		s.elements[el.ID] = el
		s.order = append(s.order, el.ID)
		s.record(op{kind: opAdd, id: el.ID, element: el.Clone()})
		if opts.Select {
			s.setSelection([]string{el.ID})
		}
	})
	return el.ID
}

// UpdateElement applies a partial update. An unknown id is a silent no-op:
// the element may have been removed by a batched undo mid-gesture.
func (s *Store) UpdateElement(id string, patch domain.Patch, opts UpdateOptions) {
	el, ok := s.elements[id]
	if !ok {
		return
	}
	s.withImplicitBatch("Edit "+el.Type.DisplayName(), opts.PushHistory, func() {
		inverse := patch.Apply(el)
		el.UpdatedAt = time.Now()
		s.record(op{kind: opUpdate, id: id, patch: patch, inverse: inverse})
	})
}

// RemoveElements deletes elements, their paint-order entries and their
// selection entries in one atomic batch. Unknown ids are skipped.
func (s *Store) RemoveElements(ids []string) {
	var present []string
	for _, id := range ids {
		if _, ok := s.elements[id]; ok {
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return
	}
	s.withImplicitBatch("Delete", true, func() {
		for _, id := range present {
			s.removeOne(id)
		}
	})
}

func (s *Store) removeOne(id string) {
	el := s.elements[id]
	idx := s.orderIndex(id)
	s.record(op{
		kind:        opRemove,
		id:          id,
		element:     el.Clone(),
		orderIndex:  idx,
		wasSelected: s.selected[id],
	})
	delete(s.elements, id)
	if idx >= 0 {
		s.order = append(s.order[:idx], s.order[idx+1:]...)
	}
	delete(s.selected, id)
}

// Duplicate copies an element, offset by a fixed pixel delta, selects the
// copy and returns its id. Unknown id returns "".
func (s *Store) Duplicate(id string) string {
	src, ok := s.elements[id]
	if !ok {
		return ""
	}
	dup := src.Clone()
	dup.ID = uuid.NewString()
	dup.X += domain.DuplicateOffset
	dup.Y += domain.DuplicateOffset
	s.WithUndo("Duplicate "+src.Type.DisplayName(), func() {
		s.AddElement(dup, AddOptions{Select: true, PushHistory: true})
	})
	return dup.ID
}

// BringToFront moves the element to the end of the paint order. Relative
// order of the rest is preserved; selection is untouched.
func (s *Store) BringToFront(id string) {
	s.reorder(id, "Bring to front", func(rest []string) []string {
		return append(rest, id)
	})
}

// SendToBack moves the element to the start of the paint order.
func (s *Store) SendToBack(id string) {
	s.reorder(id, "Send to back", func(rest []string) []string {
		return append([]string{id}, rest...)
	})
}

func (s *Store) reorder(id, label string, place func(rest []string) []string) {
	idx := s.orderIndex(id)
	if idx < 0 {
		return
	}
	before := append([]string(nil), s.order...)
	rest := make([]string, 0, len(s.order)-1)
	for _, other := range s.order {
		if other != id {
			rest = append(rest, other)
		}
	}
	after := place(rest)
	s.withImplicitBatch(label, true, func() {
		s.order = after
		s.record(op{kind: opReorder, orderBefore: before, orderAfter: append([]string(nil), after...)})
	})
}

func (s *Store) orderIndex(id string) int {
	for i, other := range s.order {
		if other == id {
			return i
		}
	}
	return -1
}

// SetViewport replaces the pan/zoom state. Viewport changes are not undoable.
func (s *Store) SetViewport(v Viewport) {
	if v.Scale <= 0 {
		v.Scale = 1
	}
	s.viewport = v
	s.notifyIfIdle()
}

// SetPan updates the pan offset.
func (s *Store) SetPan(x, y float64) {
	v := s.viewport
	v.X, v.Y = x, y
	s.SetViewport(v)
}

// SetScale updates the zoom factor.
func (s *Store) SetScale(scale float64) {
	v := s.viewport
	v.Scale = scale
	s.SetViewport(v)
}

// withImplicitBatch runs fn inside the open batch, or wraps it in its own
// single-step batch when none is open. When push is false the mutation is
// applied without recording (live, uncommitted updates during a gesture).
func (s *Store) withImplicitBatch(label string, push bool, fn func()) {
	if !push {
		s.history.suppress++
		fn()
		s.history.suppress--
		s.notifyIfIdle()
		return
	}
	s.BeginBatch(label)
	fn()
	s.EndBatch(true)
}

func (s *Store) notifyIfIdle() {
	if s.history.depth == 0 {
		s.notify()
	}
}
