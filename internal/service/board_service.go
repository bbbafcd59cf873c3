package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"whiteboard/internal/document"
	"whiteboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Board Service — business logic for boards and their snapshots
// ─────────────────────────────────────────────────────────────

// BoardService manages boards and moves state between the in-memory
// document store and the database. It also mirrors each saved board to a
// JSON file under the data directory, which outside tools can edit.
type BoardService struct {
	boards  *storage.BoardStore
	history *storage.HistoryStore
	dataDir string
	emitter EventEmitter
}

// NewBoardService creates a BoardService.
func NewBoardService(
	boards *storage.BoardStore,
	history *storage.HistoryStore,
	dataDir string,
	emitter EventEmitter,
) *BoardService {
	return &BoardService{
		boards:  boards,
		history: history,
		dataDir: dataDir,
		emitter: emitter,
	}
}

// ── Boards ─────────────────────────────────────────────────

func (s *BoardService) ListBoards() ([]storage.Board, error) {
	return s.boards.ListBoards()
}

func (s *BoardService) CreateBoard(name string) (*storage.Board, error) {
	b := &storage.Board{
		ID:            uuid.New().String(),
		Name:          name,
		ViewportScale: 1.0,
	}
	if err := s.boards.CreateBoard(b); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	return b, nil
}

func (s *BoardService) RenameBoard(id, name string) error {
	b, err := s.boards.GetBoard(id)
	if err != nil {
		return err
	}
	b.Name = name
	return s.boards.UpdateBoard(b)
}

func (s *BoardService) DeleteBoard(id string) error {
	os.Remove(s.BoardFilePath(id))
	return s.boards.DeleteBoard(id)
}

// BoardFilePath returns where a board's JSON mirror lives on disk.
func (s *BoardService) BoardFilePath(boardID string) string {
	return filepath.Join(s.dataDir, boardID+".json")
}

// ── Snapshots ──────────────────────────────────────────────

// SaveBoard serializes the document store, persists the snapshot and the
// board's viewport, and refreshes the JSON mirror file.
func (s *BoardService) SaveBoard(ctx context.Context, boardID string, store *document.Store) error {
	snap := store.Snapshot()
	data, err := document.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.boards.SaveSnapshot(boardID, string(data)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	b, err := s.boards.GetBoard(boardID)
	if err == nil {
		vp := store.Viewport()
		b.ViewportX = vp.X
		b.ViewportY = vp.Y
		b.ViewportScale = vp.Scale
		s.boards.UpdateBoard(b)
	}

	if err := os.WriteFile(s.BoardFilePath(boardID), data, 0644); err != nil {
		return fmt.Errorf("write board file: %w", err)
	}

	s.emitter.Emit(ctx, EventBoardSaved, boardID)
	return nil
}

// LoadBoard restores a saved snapshot into the document store. A board
// without a snapshot loads empty.
func (s *BoardService) LoadBoard(ctx context.Context, boardID string, store *document.Store) error {
	b, err := s.boards.GetBoard(boardID)
	if err != nil {
		return err
	}

	raw, err := s.boards.LoadSnapshot(boardID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if raw == "" {
		store.Restore(document.Snapshot{})
	} else {
		snap, err := document.UnmarshalSnapshot([]byte(raw))
		if err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		store.Restore(snap)
	}

	store.SetViewport(document.Viewport{X: b.ViewportX, Y: b.ViewportY, Scale: b.ViewportScale})

	s.emitter.Emit(ctx, EventBoardLoaded, boardID)
	return nil
}

// ReloadFromFile re-reads the board's JSON mirror and restores it into
// the store. The file watcher calls this when an external edit lands.
func (s *BoardService) ReloadFromFile(ctx context.Context, boardID string, store *document.Store) error {
	data, err := os.ReadFile(s.BoardFilePath(boardID))
	if err != nil {
		return fmt.Errorf("read board file: %w", err)
	}
	snap, err := document.UnmarshalSnapshot(data)
	if err != nil {
		return fmt.Errorf("decode board file: %w", err)
	}
	store.Restore(snap)

	// keep the database copy in sync with what was loaded
	if err := s.boards.SaveSnapshot(boardID, string(data)); err != nil {
		return fmt.Errorf("save reloaded snapshot: %w", err)
	}

	s.emitter.Emit(ctx, EventBoardReloaded, boardID)
	return nil
}

// ── History labels ─────────────────────────────────────────

// RecordHistory persists the label of a committed undo batch.
func (s *BoardService) RecordHistory(ctx context.Context, boardID, label string) error {
	entry, err := s.history.Append(boardID, uuid.New().String(), label)
	if err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventHistoryPushed, entry)
	return nil
}

// HistoryLabels returns the board's persisted batch labels, oldest first.
func (s *BoardService) HistoryLabels(boardID string) ([]string, error) {
	entries, err := s.history.List(boardID)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.Label)
	}
	return labels, nil
}

// ── Backups ────────────────────────────────────────────────

// BackupBoard copies the board's current snapshot into the backups
// table. The autosave scheduler calls this on its interval.
func (s *BoardService) BackupBoard(boardID string) error {
	raw, err := s.boards.LoadSnapshot(boardID)
	if err != nil || raw == "" {
		return err
	}
	return s.history.SaveBackup(boardID, uuid.New().String(), raw)
}
