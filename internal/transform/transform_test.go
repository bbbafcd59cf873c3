package transform_test

import (
	"testing"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/render"
	"whiteboard/internal/scene"
	"whiteboard/internal/transform"
)

// ─────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────

func newEnv(t *testing.T) (*document.Store, *scene.Stage, *render.Context, *transform.Controller) {
	t.Helper()
	store := document.NewStore()
	stage := scene.NewStage(1200, 800)
	orch := render.NewOrchestrator(store, stage, render.Options{Images: render.SyncImageLoader{}})
	t.Cleanup(orch.Mount(render.DefaultModules()...))
	ctrl := transform.NewController(orch.Context())
	t.Cleanup(ctrl.Close)
	return store, stage, orch.Context(), ctrl
}

func addShape(store *document.Store, id string, x, y, w, h float64) {
	store.AddElement(&domain.Element{
		ID: id, Type: domain.ElementShape, X: x, Y: y, Width: w, Height: h,
		Shape: &domain.ShapePayload{Kind: domain.ShapeRectangle},
	}, document.AddOptions{})
}

func addSticky(store *document.Store, id string, x, y, w, h float64) {
	store.AddElement(&domain.Element{
		ID: id, Type: domain.ElementSticky, X: x, Y: y, Width: w, Height: h,
		Sticky: &domain.StickyPayload{Text: "note"},
	}, document.AddOptions{})
}

// ─────────────────────────────────────────────────────────────
// Constraint table
// ─────────────────────────────────────────────────────────────

func TestConstraints_CoverEveryElementType(t *testing.T) {
	for _, et := range domain.ElementTypes {
		if _, ok := transform.Constraints[et]; !ok {
			t.Errorf("no constraint registered for %q", et)
		}
	}
}

func TestConstraints_LineLikeTypesNotResizable(t *testing.T) {
	for _, et := range []domain.ElementType{domain.ElementConnector, domain.ElementMindmapEdge} {
		if transform.ConstraintFor(et).Resizable {
			t.Errorf("%q must not be resizable", et)
		}
	}
}

func TestConstraints_StickyUsesCornerGripsWithAspectLock(t *testing.T) {
	c := transform.ConstraintFor(domain.ElementSticky)
	if len(c.Anchors) != 4 {
		t.Fatalf("expected corner grips only, got %v", c.Anchors)
	}
	if c.BoundBox == nil {
		t.Fatal("sticky notes must carry the aspect-lock bound")
	}
}

func TestConstraintFor_UnknownTypeDefaults(t *testing.T) {
	c := transform.ConstraintFor("bogus")
	if !c.Resizable || !c.Rotatable || len(c.Anchors) != len(transform.AllAnchors) {
		t.Fatalf("unexpected default constraint: %+v", c)
	}
}

func TestAspectLockBound_DominantAxisWins(t *testing.T) {
	old := domain.Rect{Width: 200, Height: 100}

	got := transform.AspectLockBound(old, domain.Rect{Width: 300, Height: 100})
	if got.Width != 300 || got.Height != 150 {
		t.Fatalf("expected 300x150 from a width change, got %vx%v", got.Width, got.Height)
	}

	got = transform.AspectLockBound(old, domain.Rect{Width: 200, Height: 300})
	if got.Width != 600 || got.Height != 300 {
		t.Fatalf("expected 600x300 from a height change, got %vx%v", got.Width, got.Height)
	}
}

func TestAspectLockBound_ClampsToMinimum(t *testing.T) {
	old := domain.Rect{Width: 200, Height: 100}
	got := transform.AspectLockBound(old, domain.Rect{Width: 4, Height: 2})
	if got.Height != domain.MinElementSize || got.Width != domain.MinElementSize*2 {
		t.Fatalf("expected the ratio held at the minimum size, got %vx%v", got.Width, got.Height)
	}
}

// ─────────────────────────────────────────────────────────────
// Attachment lifecycle
// ─────────────────────────────────────────────────────────────

func TestAttach_FollowsStoreSelection(t *testing.T) {
	store, _, ctx, ctrl := newEnv(t)
	addShape(store, "a", 10, 10, 100, 100)

	store.SetSelection([]string{"a"})
	if got := ctrl.AttachedIDs(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected the handle attached to a, got %v", got)
	}
	if len(ctx.Layers.Overlay.Nodes()) == 0 {
		t.Fatal("expected the handle on the overlay layer")
	}

	store.ClearSelection()
	if got := ctrl.AttachedIDs(); len(got) != 0 {
		t.Fatalf("expected no attachment after clearing, got %v", got)
	}
	if len(ctx.Layers.Overlay.Nodes()) != 0 {
		t.Fatal("expected the overlay cleared after detaching")
	}
}

func TestAttach_SkipsIDsWithoutNodes(t *testing.T) {
	store, _, _, ctrl := newEnv(t)
	addShape(store, "a", 10, 10, 100, 100)

	ctrl.Attach([]string{"a", "ghost"})
	if got := ctrl.AttachedIDs(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected only reconciled ids attached, got %v", got)
	}
}

// ─────────────────────────────────────────────────────────────
// Move gestures through the handle
// ─────────────────────────────────────────────────────────────

func TestHandleMove_CommitsOneLabeledBatch(t *testing.T) {
	store, stage, ctx, _ := newEnv(t)
	addShape(store, "a", 10, 10, 100, 100)
	store.SetSelection([]string{"a"})

	// the outline sits above the element on the overlay layer
	stage.PointerDown(domain.Point{X: 60, Y: 60}, false)
	stage.PointerMove(domain.Point{X: 160, Y: 160})
	stage.PointerUp(domain.Point{X: 160, Y: 160}, false, nil)

	el := store.Element("a")
	if el.X != 110 || el.Y != 110 {
		t.Fatalf("expected committed position (110, 110), got (%v, %v)", el.X, el.Y)
	}
	labels := store.UndoLabels()
	if len(labels) != 1 || labels[0] != "Move shape" {
		t.Fatalf("expected one \"Move shape\" entry, got %v", labels)
	}
	node := ctx.Index.Lookup("a")
	if node.X != 110 || node.Y != 110 {
		t.Fatalf("expected node at (110, 110), got (%v, %v)", node.X, node.Y)
	}
}

func TestHandleMove_MultiSelectionLabelAndUndo(t *testing.T) {
	store, stage, _, _ := newEnv(t)
	addShape(store, "a", 0, 0, 100, 100)
	addShape(store, "b", 200, 0, 100, 100)
	store.SetSelection([]string{"a", "b"})

	stage.PointerDown(domain.Point{X: 150, Y: 50}, false)
	stage.PointerMove(domain.Point{X: 150, Y: 150})
	stage.PointerUp(domain.Point{X: 150, Y: 150}, false, nil)

	if store.Element("a").Y != 100 || store.Element("b").Y != 100 {
		t.Fatal("both selected elements must move together")
	}
	labels := store.UndoLabels()
	if len(labels) != 1 || labels[0] != "Move 2 elements" {
		t.Fatalf("expected \"Move 2 elements\", got %v", labels)
	}

	store.Undo()
	if store.Element("a").Y != 0 || store.Element("b").Y != 0 {
		t.Fatal("one undo must restore both elements")
	}
}

func TestHandleMove_SubPixelReleaseIsNoop(t *testing.T) {
	store, stage, ctx, _ := newEnv(t)
	addShape(store, "a", 10, 10, 100, 100)
	store.SetSelection([]string{"a"})

	stage.PointerDown(domain.Point{X: 60, Y: 60}, false)
	stage.PointerMove(domain.Point{X: 70, Y: 60})
	stage.PointerMove(domain.Point{X: 60.5, Y: 60})
	stage.PointerUp(domain.Point{X: 60.5, Y: 60}, false, nil)

	if store.CanUndo() {
		t.Fatal("a sub-pixel release must not touch the history")
	}
	node := ctx.Index.Lookup("a")
	if node.X != 10 || node.Y != 10 {
		t.Fatalf("expected node back at (10, 10), got (%v, %v)", node.X, node.Y)
	}
}

func TestHandleMove_CancelRollsBack(t *testing.T) {
	store, stage, ctx, ctrl := newEnv(t)
	addShape(store, "a", 10, 10, 100, 100)
	store.SetSelection([]string{"a"})

	stage.PointerDown(domain.Point{X: 60, Y: 60}, false)
	stage.PointerMove(domain.Point{X: 160, Y: 160})
	stage.CancelDrag()
	ctrl.Cancel()

	node := ctx.Index.Lookup("a")
	if node.X != 10 || node.Y != 10 {
		t.Fatalf("expected node restored to (10, 10), got (%v, %v)", node.X, node.Y)
	}
	el := store.Element("a")
	if el.X != 10 || el.Y != 10 {
		t.Fatal("the document must be untouched by a cancelled gesture")
	}
	if store.CanUndo() {
		t.Fatal("a cancelled gesture must leave no history entry")
	}
}

// ─────────────────────────────────────────────────────────────
// Resize gestures
// ─────────────────────────────────────────────────────────────

func TestHandleResize_TwoPhaseCommit(t *testing.T) {
	store, stage, ctx, _ := newEnv(t)
	addShape(store, "a", 0, 0, 100, 100)
	store.SetSelection([]string{"a"})

	// bottom-right grip extends past the outline corner
	stage.PointerDown(domain.Point{X: 102, Y: 102}, false)
	stage.PointerMove(domain.Point{X: 202, Y: 152})

	node := ctx.Index.Lookup("a")
	if node.ScaleX != 2 || node.ScaleY != 1.5 {
		t.Fatalf("expected transient scale (2, 1.5), got (%v, %v)", node.ScaleX, node.ScaleY)
	}
	if el := store.Element("a"); el.Width != 100 {
		t.Fatal("the document must stay untouched during the interactive phase")
	}

	stage.PointerUp(domain.Point{X: 202, Y: 152}, false, nil)

	el := store.Element("a")
	if el.Width != 200 || el.Height != 150 {
		t.Fatalf("expected committed size 200x150, got %vx%v", el.Width, el.Height)
	}
	if node.ScaleX != 1 || node.ScaleY != 1 {
		t.Fatalf("expected scale reset to 1 after commit, got (%v, %v)", node.ScaleX, node.ScaleY)
	}
	labels := store.UndoLabels()
	if len(labels) != 1 || labels[0] != "Resize shape" {
		t.Fatalf("expected one \"Resize shape\" entry, got %v", labels)
	}
}

func TestHandleResize_AspectLockedSticky(t *testing.T) {
	store, stage, _, _ := newEnv(t)
	addSticky(store, "s", 0, 0, 200, 100)
	store.SetSelection([]string{"s"})

	stage.PointerDown(domain.Point{X: 200, Y: 100}, false)
	stage.PointerMove(domain.Point{X: 300, Y: 100})
	stage.PointerUp(domain.Point{X: 300, Y: 100}, false, nil)

	el := store.Element("s")
	if el.Width != 300 || el.Height != 150 {
		t.Fatalf("expected the 2:1 ratio held at 300x150, got %vx%v", el.Width, el.Height)
	}
}

// ─────────────────────────────────────────────────────────────
// Rotate gestures
// ─────────────────────────────────────────────────────────────

func TestHandleRotate_CommitsRoundedAngle(t *testing.T) {
	store, stage, ctx, _ := newEnv(t)
	addShape(store, "a", 0, 0, 100, 100)
	store.SetSelection([]string{"a"})

	// the rotater floats above the top edge
	stage.PointerDown(domain.Point{X: 50, Y: -20}, false)
	stage.PointerMove(domain.Point{X: 100, Y: 50})
	stage.PointerUp(domain.Point{X: 100, Y: 50}, false, nil)

	el := store.Element("a")
	if el.Rotation != 90 {
		t.Fatalf("expected rotation 90, got %v", el.Rotation)
	}
	labels := store.UndoLabels()
	if len(labels) != 1 || labels[0] != "Rotate shape" {
		t.Fatalf("expected one \"Rotate shape\" entry, got %v", labels)
	}
	if node := ctx.Index.Lookup("a"); node.Rotation != 90 {
		t.Fatalf("expected node rotation 90, got %v", node.Rotation)
	}
}
