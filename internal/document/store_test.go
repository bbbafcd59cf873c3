package document_test

import (
	"reflect"
	"testing"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Store tests — elements, paint order, selection, snapshots
// ─────────────────────────────────────────────────────────────

func newShape(id string, x, y, w, h float64) *domain.Element {
	return &domain.Element{
		ID: id, Type: domain.ElementShape,
		X: x, Y: y, Width: w, Height: h,
		Shape: &domain.ShapePayload{Kind: domain.ShapeRectangle},
	}
}

func newSticky(id string, x, y float64) *domain.Element {
	return &domain.Element{
		ID: id, Type: domain.ElementSticky,
		X: x, Y: y, Width: 180, Height: 180,
		Sticky: &domain.StickyPayload{Text: "note"},
	}
}

func TestAddElement_GeneratesID(t *testing.T) {
	s := document.NewStore()
	el := newShape("", 0, 0, 100, 80)
	id := s.AddElement(el, document.AddOptions{PushHistory: true})
	if id == "" {
		t.Fatal("expected a generated id")
	}
	if !s.Has(id) {
		t.Fatal("expected element to exist")
	}
}

func TestAddElement_AutoSelect(t *testing.T) {
	s := document.NewStore()
	id := s.AddElement(newShape("a", 0, 0, 100, 80), document.AddOptions{Select: true, PushHistory: true})
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{id}) {
		t.Fatalf("expected selection [%s], got %v", id, got)
	}
}

func TestAddElement_ClampsSize(t *testing.T) {
	s := document.NewStore()
	id := s.AddElement(newShape("a", 0, 0, 2, 99999), document.AddOptions{PushHistory: true})
	el := s.Element(id)
	if el.Width != domain.MinElementSize {
		t.Errorf("expected width clamped to %v, got %v", domain.MinElementSize, el.Width)
	}
	if el.Height != domain.MaxElementSize {
		t.Errorf("expected height clamped to %v, got %v", domain.MaxElementSize, el.Height)
	}
}

func TestUpdateElement_UnknownIDIsNoop(t *testing.T) {
	s := document.NewStore()
	s.UpdateElement("ghost", domain.MovePatch(10, 10), document.UpdateOptions{PushHistory: true})
	if s.CanUndo() {
		t.Fatal("update of unknown id must not create history")
	}
}

func TestElement_ReturnsClone(t *testing.T) {
	s := document.NewStore()
	id := s.AddElement(newShape("a", 0, 0, 100, 80), document.AddOptions{PushHistory: true})

	clone := s.Element(id)
	clone.X = 999
	if s.Element(id).X != 0 {
		t.Fatal("mutating the returned element must not affect the store")
	}
}

func TestElementsOfType_PaintOrder(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.AddElement(newSticky("b", 0, 0), document.AddOptions{PushHistory: true})
	s.AddElement(newShape("c", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.SendToBack("c")

	shapes := s.ElementsOfType(domain.ElementShape)
	if len(shapes) != 2 || shapes[0].ID != "c" || shapes[1].ID != "a" {
		t.Fatalf("expected shapes in paint order [c a], got %v", []string{shapes[0].ID, shapes[1].ID})
	}
}

func TestRemoveElements_PurgesOrderAndSelection(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.AddElement(newShape("b", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.SetSelection([]string{"a", "b"})

	s.RemoveElements([]string{"a"})

	if s.Has("a") {
		t.Fatal("element a should be gone")
	}
	if got := s.ElementOrder(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("expected order [b], got %v", got)
	}
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("expected selection [b], got %v", got)
	}
}

func TestRemoveElements_UndoRestoresAllState(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.AddElement(newShape("b", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.AddElement(newShape("c", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.SetSelection([]string{"b"})

	s.RemoveElements([]string{"b"})
	if _, ok := s.Undo(); !ok {
		t.Fatal("expected an undo step")
	}

	if !s.Has("b") {
		t.Fatal("element b should be restored")
	}
	if got := s.ElementOrder(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected order [a b c], got %v", got)
	}
	if !s.IsSelected("b") {
		t.Fatal("selection membership should be restored")
	}
}

func TestDuplicate_OffsetsAndSelectsCopy(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newSticky("a", 100, 100), document.AddOptions{PushHistory: true})

	dupID := s.Duplicate("a")
	if dupID == "" || dupID == "a" {
		t.Fatalf("expected fresh id, got %q", dupID)
	}
	dup := s.Element(dupID)
	if dup.X != 100+domain.DuplicateOffset || dup.Y != 100+domain.DuplicateOffset {
		t.Errorf("expected copy offset by %v, got (%v, %v)", domain.DuplicateOffset, dup.X, dup.Y)
	}
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{dupID}) {
		t.Fatalf("expected copy selected, got %v", got)
	}
	if dup.Sticky == nil || dup.Sticky.Text != "note" {
		t.Error("payload should be deep-copied")
	}
}

func TestBringToFront_PreservesRelativeOrder(t *testing.T) {
	s := document.NewStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		s.AddElement(newShape(id, 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	}

	s.BringToFront("b")
	if got := s.ElementOrder(); !reflect.DeepEqual(got, []string{"a", "c", "d", "b"}) {
		t.Fatalf("expected [a c d b], got %v", got)
	}

	s.SendToBack("d")
	if got := s.ElementOrder(); !reflect.DeepEqual(got, []string{"d", "a", "c", "b"}) {
		t.Fatalf("expected [d a c b], got %v", got)
	}
}

// ─────────────────────────────────────────────────────────────
// Selection
// ─────────────────────────────────────────────────────────────

func TestSetSelection_DropsUnknownIDs(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})

	s.SetSelection([]string{"a", "ghost"})
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("expected [a], got %v", got)
	}
}

func TestToggleSelection(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.AddElement(newShape("b", 0, 0, 10, 10), document.AddOptions{PushHistory: true})

	s.ToggleSelection("a")
	s.ToggleSelection("b")
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("expected [a b], got %v", got)
	}

	s.ToggleSelection("a")
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("expected [b], got %v", got)
	}
}

func TestSelectedIDs_PaintOrder(t *testing.T) {
	s := document.NewStore()
	for _, id := range []string{"a", "b", "c"} {
		s.AddElement(newShape(id, 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	}
	s.SetSelection([]string{"c", "a"})

	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("expected paint order [a c], got %v", got)
	}
}

// ─────────────────────────────────────────────────────────────
// Viewport
// ─────────────────────────────────────────────────────────────

func TestViewport_NotUndoable(t *testing.T) {
	s := document.NewStore()
	s.SetViewport(document.Viewport{X: 50, Y: 60, Scale: 2})
	if s.CanUndo() {
		t.Fatal("viewport changes must not create history")
	}
	if v := s.Viewport(); v.X != 50 || v.Y != 60 || v.Scale != 2 {
		t.Fatalf("unexpected viewport %+v", v)
	}
}

func TestSetViewport_RejectsNonPositiveScale(t *testing.T) {
	s := document.NewStore()
	s.SetViewport(document.Viewport{Scale: 0})
	if s.Viewport().Scale != 1 {
		t.Fatalf("expected scale reset to 1, got %v", s.Viewport().Scale)
	}
}

// ─────────────────────────────────────────────────────────────
// Snapshots
// ─────────────────────────────────────────────────────────────

func TestSnapshot_RoundTrip(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newSticky("a", 10, 20), document.AddOptions{Select: true, PushHistory: true})
	s.SetViewport(document.Viewport{X: 5, Y: 6, Scale: 1.5})

	data, err := document.MarshalSnapshot(s.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	snap, err := document.UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := document.NewStore()
	restored.Restore(snap)

	el := restored.Element("a")
	if el == nil || el.Sticky == nil || el.Sticky.Text != "note" {
		t.Fatal("element did not survive the round trip")
	}
	if !restored.IsSelected("a") {
		t.Error("selection did not survive the round trip")
	}
	if v := restored.Viewport(); v.Scale != 1.5 {
		t.Errorf("viewport did not survive the round trip: %+v", v)
	}
}

func TestRestore_RepairsCorruptSnapshot(t *testing.T) {
	s := document.NewStore()
	s.Restore(document.Snapshot{
		Elements: map[string]*domain.Element{
			"a": newShape("a", 0, 0, 10, 10),
			"b": newShape("b", 0, 0, 10, 10),
		},
		// "a" is missing from the order, "ghost" does not exist, "b" repeats
		ElementOrder:       []string{"b", "ghost", "b"},
		SelectedElementIDs: []string{"a", "ghost"},
	})

	order := s.ElementOrder()
	if len(order) != 2 || order[0] != "b" {
		t.Fatalf("expected repaired order of 2 starting with b, got %v", order)
	}
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("expected selection repaired to [a], got %v", got)
	}
}

func TestRestore_ClearsHistory(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	if !s.CanUndo() {
		t.Fatal("precondition: history exists")
	}

	s.Restore(document.Snapshot{})
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("restore must clear history")
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d elements", s.Len())
	}
}

// ─────────────────────────────────────────────────────────────
// Subscriptions
// ─────────────────────────────────────────────────────────────

func TestSubscribe_FireImmediately(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})

	fired := 0
	s.Subscribe(
		func(st *document.Store) any { return st.ElementOrder() },
		func(any) { fired++ },
		document.SubscribeOptions{FireImmediately: true},
	)
	if fired != 1 {
		t.Fatalf("expected immediate fire, got %d", fired)
	}
}

func TestSubscribe_SkipsUnchangedSlices(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})

	fired := 0
	s.Subscribe(
		func(st *document.Store) any { return st.ElementsOfType(domain.ElementSticky) },
		func(any) { fired++ },
		document.SubscribeOptions{},
	)

	// Shape mutations leave the sticky slice untouched
	s.UpdateElement("a", domain.MovePatch(5, 5), document.UpdateOptions{PushHistory: true})
	if fired != 0 {
		t.Fatalf("expected no callbacks for an unchanged slice, got %d", fired)
	}

	s.AddElement(newSticky("b", 0, 0), document.AddOptions{PushHistory: true})
	if fired != 1 {
		t.Fatalf("expected one callback after a sticky was added, got %d", fired)
	}
}

func TestSubscribe_DetectsInPlaceMutation(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})

	fired := 0
	s.Subscribe(
		func(st *document.Store) any { return st.ElementsOfType(domain.ElementShape) },
		func(any) { fired++ },
		document.SubscribeOptions{},
	)

	s.UpdateElement("a", domain.MovePatch(50, 50), document.UpdateOptions{PushHistory: true})
	if fired != 1 {
		t.Fatalf("expected the moved shape to notify, got %d callbacks", fired)
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s := document.NewStore()

	fired := 0
	unsub := s.Subscribe(
		func(st *document.Store) any { return st.ElementOrder() },
		func(any) { fired++ },
		document.SubscribeOptions{},
	)
	unsub()

	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	if fired != 0 {
		t.Fatalf("expected no callbacks after unsubscribe, got %d", fired)
	}
}
