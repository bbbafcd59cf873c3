package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/service"
	"whiteboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Fixtures — a real sqlite database in a temp directory
// ─────────────────────────────────────────────────────────────

func newService(t *testing.T) (*service.BoardService, *service.MockEmitter) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), dir)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	emitter := &service.MockEmitter{}
	svc := service.NewBoardService(storage.NewBoardStore(db), storage.NewHistoryStore(db), dir, emitter)
	return svc, emitter
}

func storeWithSticky(text string) *document.Store {
	store := document.NewStore()
	store.AddElement(&domain.Element{
		ID: "s1", Type: domain.ElementSticky, X: 10, Y: 20, Width: 180, Height: 180,
		Sticky: &domain.StickyPayload{Text: text},
	}, document.AddOptions{})
	return store
}

func hasEvent(emitter *service.MockEmitter, name string) bool {
	for _, ev := range emitter.Events {
		if ev.Event == name {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────
// Boards
// ─────────────────────────────────────────────────────────────

func TestCreateAndListBoards(t *testing.T) {
	svc, _ := newService(t)

	first, err := svc.CreateBoard("Sprint planning")
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected a generated board id")
	}
	if first.ViewportScale != 1.0 {
		t.Fatalf("expected default scale 1.0, got %v", first.ViewportScale)
	}
	if _, err := svc.CreateBoard("Retro"); err != nil {
		t.Fatalf("create second board: %v", err)
	}

	boards, err := svc.ListBoards()
	if err != nil {
		t.Fatalf("list boards: %v", err)
	}
	if len(boards) != 2 {
		t.Fatalf("expected 2 boards, got %d", len(boards))
	}
	if boards[0].Name != "Sprint planning" {
		t.Fatalf("expected creation order, got %q first", boards[0].Name)
	}
}

func TestRenameBoard(t *testing.T) {
	svc, _ := newService(t)
	b, err := svc.CreateBoard("Old name")
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	if err := svc.RenameBoard(b.ID, "New name"); err != nil {
		t.Fatalf("rename board: %v", err)
	}

	boards, _ := svc.ListBoards()
	if len(boards) != 1 || boards[0].Name != "New name" {
		t.Fatalf("expected renamed board, got %+v", boards)
	}
}

func TestDeleteBoard_RemovesMirrorFile(t *testing.T) {
	svc, _ := newService(t)
	b, _ := svc.CreateBoard("Doomed")
	store := storeWithSticky("bye")

	if err := svc.SaveBoard(context.Background(), b.ID, store); err != nil {
		t.Fatalf("save board: %v", err)
	}
	if _, err := os.Stat(svc.BoardFilePath(b.ID)); err != nil {
		t.Fatalf("expected a mirror file after save: %v", err)
	}

	if err := svc.DeleteBoard(b.ID); err != nil {
		t.Fatalf("delete board: %v", err)
	}
	if _, err := os.Stat(svc.BoardFilePath(b.ID)); !os.IsNotExist(err) {
		t.Fatal("expected the mirror file removed with the board")
	}
	boards, _ := svc.ListBoards()
	if len(boards) != 0 {
		t.Fatalf("expected no boards left, got %d", len(boards))
	}
}

// ─────────────────────────────────────────────────────────────
// Snapshots
// ─────────────────────────────────────────────────────────────

func TestSaveAndLoadBoard_RoundTrip(t *testing.T) {
	svc, emitter := newService(t)
	b, _ := svc.CreateBoard("Round trip")

	store := storeWithSticky("hello")
	store.SetViewport(document.Viewport{X: 120, Y: -40, Scale: 1.5})

	if err := svc.SaveBoard(context.Background(), b.ID, store); err != nil {
		t.Fatalf("save board: %v", err)
	}
	if !hasEvent(emitter, service.EventBoardSaved) {
		t.Fatal("expected a board:saved event")
	}

	fresh := document.NewStore()
	if err := svc.LoadBoard(context.Background(), b.ID, fresh); err != nil {
		t.Fatalf("load board: %v", err)
	}
	if !hasEvent(emitter, service.EventBoardLoaded) {
		t.Fatal("expected a board:loaded event")
	}

	el := fresh.Element("s1")
	if el == nil || el.Sticky == nil || el.Sticky.Text != "hello" {
		t.Fatalf("expected the sticky restored, got %+v", el)
	}
	vp := fresh.Viewport()
	if vp.X != 120 || vp.Y != -40 || vp.Scale != 1.5 {
		t.Fatalf("expected the viewport restored, got %+v", vp)
	}
}

func TestLoadBoard_WithoutSnapshotLoadsEmpty(t *testing.T) {
	svc, _ := newService(t)
	b, _ := svc.CreateBoard("Blank")

	store := storeWithSticky("stale")
	if err := svc.LoadBoard(context.Background(), b.ID, store); err != nil {
		t.Fatalf("load board: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected an empty board, got %d elements", store.Len())
	}
}

func TestLoadBoard_UnknownIDFails(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.LoadBoard(context.Background(), "missing", document.NewStore()); err == nil {
		t.Fatal("expected an error for an unknown board")
	}
}

func TestReloadFromFile_PicksUpExternalEdit(t *testing.T) {
	svc, emitter := newService(t)
	b, _ := svc.CreateBoard("Watched")
	store := storeWithSticky("original")
	if err := svc.SaveBoard(context.Background(), b.ID, store); err != nil {
		t.Fatalf("save board: %v", err)
	}

	// an outside tool rewrites the mirror file
	edited := storeWithSticky("edited elsewhere")
	data, err := document.MarshalSnapshot(edited.Snapshot())
	if err != nil {
		t.Fatalf("marshal edited snapshot: %v", err)
	}
	if err := os.WriteFile(svc.BoardFilePath(b.ID), data, 0644); err != nil {
		t.Fatalf("write mirror file: %v", err)
	}

	if err := svc.ReloadFromFile(context.Background(), b.ID, store); err != nil {
		t.Fatalf("reload from file: %v", err)
	}
	if got := store.Element("s1").Sticky.Text; got != "edited elsewhere" {
		t.Fatalf("expected the external edit loaded, got %q", got)
	}
	if !hasEvent(emitter, service.EventBoardReloaded) {
		t.Fatal("expected a board:reloaded event")
	}

	// the database copy follows the file
	fresh := document.NewStore()
	if err := svc.LoadBoard(context.Background(), b.ID, fresh); err != nil {
		t.Fatalf("load board: %v", err)
	}
	if got := fresh.Element("s1").Sticky.Text; got != "edited elsewhere" {
		t.Fatalf("expected the database resynced, got %q", got)
	}
}

// ─────────────────────────────────────────────────────────────
// History labels and backups
// ─────────────────────────────────────────────────────────────

func TestRecordHistoryAndLabels(t *testing.T) {
	svc, emitter := newService(t)
	b, _ := svc.CreateBoard("History")

	for _, label := range []string{"Add sticky note", "Move sticky note", "Edit sticky note"} {
		if err := svc.RecordHistory(context.Background(), b.ID, label); err != nil {
			t.Fatalf("record history: %v", err)
		}
	}

	labels, err := svc.HistoryLabels(b.ID)
	if err != nil {
		t.Fatalf("history labels: %v", err)
	}
	if len(labels) != 3 || labels[0] != "Add sticky note" || labels[2] != "Edit sticky note" {
		t.Fatalf("expected oldest-first labels, got %v", labels)
	}
	if !hasEvent(emitter, service.EventHistoryPushed) {
		t.Fatal("expected history:pushed events")
	}
}

func TestHistoryPrunesOldEntries(t *testing.T) {
	svc, _ := newService(t)
	b, _ := svc.CreateBoard("Busy")

	for i := 1; i <= 45; i++ {
		if err := svc.RecordHistory(context.Background(), b.ID, fmt.Sprintf("entry %d", i)); err != nil {
			t.Fatalf("record history %d: %v", i, err)
		}
	}

	labels, err := svc.HistoryLabels(b.ID)
	if err != nil {
		t.Fatalf("history labels: %v", err)
	}
	if len(labels) != 40 {
		t.Fatalf("expected the history capped at 40 entries, got %d", len(labels))
	}
	if labels[0] != "entry 6" || labels[39] != "entry 45" {
		t.Fatalf("expected the oldest entries pruned, got first %q last %q", labels[0], labels[39])
	}
}

func TestBackupBoard(t *testing.T) {
	svc, _ := newService(t)
	b, _ := svc.CreateBoard("Backed up")

	// no snapshot yet: nothing to back up, no error
	if err := svc.BackupBoard(b.ID); err != nil {
		t.Fatalf("backup without snapshot: %v", err)
	}

	store := storeWithSticky("precious")
	if err := svc.SaveBoard(context.Background(), b.ID, store); err != nil {
		t.Fatalf("save board: %v", err)
	}
	if err := svc.BackupBoard(b.ID); err != nil {
		t.Fatalf("backup board: %v", err)
	}
}
