package document_test

import (
	"fmt"
	"reflect"
	"testing"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// History tests — batches, undo/redo, rollback, pruning
// ─────────────────────────────────────────────────────────────

func TestUndoRedo_AddElement(t *testing.T) {
	s := document.NewStore()
	id := s.AddElement(newShape("", 10, 10, 100, 80), document.AddOptions{Select: true, PushHistory: true})

	label, ok := s.Undo()
	if !ok {
		t.Fatal("expected an undo step")
	}
	if label != "Add shape" {
		t.Errorf("expected label 'Add shape', got %q", label)
	}
	if s.Has(id) {
		t.Fatal("undo should remove the element")
	}
	if len(s.SelectedIDs()) != 0 {
		t.Fatal("undo should clear the auto-selection")
	}

	if _, ok := s.Redo(); !ok {
		t.Fatal("expected a redo step")
	}
	if !s.Has(id) {
		t.Fatal("redo should restore the element")
	}
}

func TestUpdate_UndoAppliesInversePatch(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 10, 20, 100, 80), document.AddOptions{PushHistory: true})

	s.UpdateElement("a", domain.MovePatch(110, 120), document.UpdateOptions{PushHistory: true})
	s.Undo()

	el := s.Element("a")
	if el.X != 10 || el.Y != 20 {
		t.Fatalf("expected position restored to (10, 20), got (%v, %v)", el.X, el.Y)
	}
}

func TestWithUndo_BatchIsOneStep(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.AddElement(newShape("b", 0, 0, 10, 10), document.AddOptions{PushHistory: true})

	s.WithUndo("Move 2 elements", func() {
		s.UpdateElement("a", domain.MovePatch(50, 50), document.UpdateOptions{PushHistory: true})
		s.UpdateElement("b", domain.MovePatch(60, 60), document.UpdateOptions{PushHistory: true})
	})

	label, _ := s.Undo()
	if label != "Move 2 elements" {
		t.Errorf("expected batch label, got %q", label)
	}
	if s.Element("a").X != 0 || s.Element("b").X != 0 {
		t.Fatal("one undo must revert the whole batch")
	}
}

func TestNestedBatches_OuterLabelWins(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})

	s.WithUndo("Outer", func() {
		s.WithUndo("Inner", func() {
			s.UpdateElement("a", domain.MovePatch(5, 5), document.UpdateOptions{PushHistory: true})
		})
	})

	if got := s.UndoLabels(); got[len(got)-1] != "Outer" {
		t.Fatalf("expected outermost label to win, got %q", got[len(got)-1])
	}
}

func TestEndBatch_RollbackRevertsAndDiscards(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 10, 10, 100, 80), document.AddOptions{PushHistory: true})
	stepsBefore := len(s.UndoLabels())

	s.BeginBatch("Doomed gesture")
	s.UpdateElement("a", domain.MovePatch(500, 500), document.UpdateOptions{PushHistory: true})
	s.AddElement(newShape("b", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.EndBatch(false)

	if el := s.Element("a"); el.X != 10 {
		t.Fatalf("rollback should revert the move, got x=%v", el.X)
	}
	if s.Has("b") {
		t.Fatal("rollback should remove the added element")
	}
	if len(s.UndoLabels()) != stepsBefore {
		t.Fatal("a rolled-back batch must not reach the log")
	}
}

func TestEmptyBatch_IsDropped(t *testing.T) {
	s := document.NewStore()
	s.WithUndo("Nothing", func() {})
	if s.CanUndo() {
		t.Fatal("an empty batch must not become an undo step")
	}
}

func TestNewBatch_ClearsRedo(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("precondition: redo exists")
	}

	s.AddElement(newShape("b", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	if s.CanRedo() {
		t.Fatal("a new batch must clear the redo stack")
	}
}

func TestHistory_PrunesOldestBatches(t *testing.T) {
	s := document.NewStore()
	for i := 0; i < 45; i++ {
		s.AddElement(newShape(fmt.Sprintf("el-%d", i), 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	}

	labels := s.UndoLabels()
	if len(labels) != 40 {
		t.Fatalf("expected history capped at 40, got %d", len(labels))
	}

	// All elements survive pruning; only their undo steps are gone
	if s.Len() != 45 {
		t.Fatalf("expected all 45 elements present, got %d", s.Len())
	}
}

func TestLiveUpdates_NotRecorded(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	stepsBefore := len(s.UndoLabels())

	// Interactive gestures stream uncommitted patches
	s.UpdateElement("a", domain.MovePatch(5, 5), document.UpdateOptions{})
	s.UpdateElement("a", domain.MovePatch(9, 9), document.UpdateOptions{})

	if len(s.UndoLabels()) != stepsBefore {
		t.Fatal("live updates must not create history")
	}
	if s.Element("a").X != 9 {
		t.Fatal("live updates must still mutate the element")
	}
}

func TestSelection_RecordedOnlyInsideBatches(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	steps := len(s.UndoLabels())

	// Standalone selection changes are not undoable
	s.SetSelection([]string{"a"})
	s.ClearSelection()
	if len(s.UndoLabels()) != steps {
		t.Fatal("standalone selection changes must not create history")
	}

	// Inside a batch the selection op rides along
	s.WithUndo("Select inside", func() {
		s.SetSelection([]string{"a"})
		s.UpdateElement("a", domain.MovePatch(1, 1), document.UpdateOptions{PushHistory: true})
	})
	s.Undo()
	if len(s.SelectedIDs()) != 0 {
		t.Fatal("undoing the batch should revert the selection change")
	}
}

func TestUndoLabels_OldestFirst(t *testing.T) {
	s := document.NewStore()
	s.AddElement(newShape("a", 0, 0, 10, 10), document.AddOptions{PushHistory: true})
	s.AddElement(newSticky("b", 0, 0), document.AddOptions{PushHistory: true})

	want := []string{"Add shape", "Add sticky note"}
	if got := s.UndoLabels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
