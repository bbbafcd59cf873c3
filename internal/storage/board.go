package storage

import (
	"fmt"
	"time"
)

// Board is one whiteboard document row.
type Board struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ViewportX     float64   `json:"viewportX"`
	ViewportY     float64   `json:"viewportY"`
	ViewportScale float64   `json:"viewportScale"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BoardStore persists boards and their serialized snapshots.
type BoardStore struct {
	db *DB
}

func NewBoardStore(db *DB) *BoardStore {
	return &BoardStore{db: db}
}

func (s *BoardStore) CreateBoard(b *Board) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.ViewportScale == 0 {
		b.ViewportScale = 1
	}
	_, err := s.db.Conn().Exec(
		`INSERT INTO boards (id, name, viewport_x, viewport_y, viewport_scale, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.ViewportX, b.ViewportY, b.ViewportScale, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *BoardStore) GetBoard(id string) (*Board, error) {
	b := &Board{}
	err := s.db.Conn().QueryRow(
		`SELECT id, name, viewport_x, viewport_y, viewport_scale, created_at, updated_at FROM boards WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.ViewportX, &b.ViewportY, &b.ViewportScale, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return b, nil
}

func (s *BoardStore) ListBoards() ([]Board, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, name, viewport_x, viewport_y, viewport_scale, created_at, updated_at FROM boards ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.Name, &b.ViewportX, &b.ViewportY, &b.ViewportScale, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (s *BoardStore) UpdateBoard(b *Board) error {
	b.UpdatedAt = time.Now()
	_, err := s.db.Conn().Exec(
		`UPDATE boards SET name = ?, viewport_x = ?, viewport_y = ?, viewport_scale = ?, updated_at = ? WHERE id = ?`,
		b.Name, b.ViewportX, b.ViewportY, b.ViewportScale, b.UpdatedAt, b.ID,
	)
	return err
}

// DeleteBoard removes a board with its snapshot, history and backups.
func (s *BoardStore) DeleteBoard(id string) error {
	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM snapshots WHERE board_id = ?`,
		`DELETE FROM history_entries WHERE board_id = ?`,
		`DELETE FROM backups WHERE board_id = ?`,
		`DELETE FROM boards WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("delete board: %w", err)
		}
	}
	return tx.Commit()
}

// SaveSnapshot upserts the serialized board state.
func (s *BoardStore) SaveSnapshot(boardID, snapshotJSON string) error {
	_, err := s.db.Conn().Exec(
		`INSERT INTO snapshots (board_id, snapshot_json, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(board_id) DO UPDATE SET snapshot_json = excluded.snapshot_json, saved_at = excluded.saved_at`,
		boardID, snapshotJSON, time.Now(),
	)
	return err
}

// LoadSnapshot returns the serialized board state, or "" when none was
// saved yet.
func (s *BoardStore) LoadSnapshot(boardID string) (string, error) {
	var snapshotJSON string
	err := s.db.Conn().QueryRow(
		`SELECT snapshot_json FROM snapshots WHERE board_id = ?`, boardID,
	).Scan(&snapshotJSON)
	if err != nil {
		return "", nil // no snapshot yet
	}
	return snapshotJSON, nil
}
