package storage

import (
	"fmt"
	"time"
)

// HistoryEntry is one persisted undo-step label.
type HistoryEntry struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"boardId"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryStore persists the labels of committed undo batches, so a reopened
// board can show what happened to it.
type HistoryStore struct {
	db *DB
}

func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append records a committed batch label and prunes old entries.
func (s *HistoryStore) Append(boardID, entryID, label string) (*HistoryEntry, error) {
	now := time.Now()
	_, err := s.db.Conn().Exec(
		`INSERT INTO history_entries (id, board_id, label, created_at) VALUES (?, ?, ?, ?)`,
		entryID, boardID, label, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}

	s.pruneIfNeeded(boardID, 40)

	return &HistoryEntry{ID: entryID, BoardID: boardID, Label: label, CreatedAt: now}, nil
}

// List returns a board's history labels, oldest first.
func (s *HistoryStore) List(boardID string) ([]HistoryEntry, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, board_id, label, created_at FROM history_entries
		 WHERE board_id = ? ORDER BY created_at ASC`, boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("load history entries: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.BoardID, &e.Label, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes all history data for a board.
func (s *HistoryStore) Clear(boardID string) error {
	_, err := s.db.Conn().Exec(`DELETE FROM history_entries WHERE board_id = ?`, boardID)
	return err
}

// pruneIfNeeded removes oldest entries when count exceeds maxEntries.
func (s *HistoryStore) pruneIfNeeded(boardID string, maxEntries int) {
	var count int
	s.db.Conn().QueryRow(`SELECT COUNT(*) FROM history_entries WHERE board_id = ?`, boardID).Scan(&count)
	if count <= maxEntries {
		return
	}

	toDelete := count - maxEntries

	// Collect IDs to delete first (close rows before doing any writes)
	rows, err := s.db.Conn().Query(
		`SELECT id FROM history_entries WHERE board_id = ?
		 ORDER BY created_at ASC LIMIT ?`, boardID, toDelete,
	)
	if err != nil {
		return
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	rows.Close()

	for _, id := range ids {
		s.db.Conn().Exec(`DELETE FROM history_entries WHERE id = ?`, id)
	}
}

// SaveBackup stores a timestamped snapshot copy made by the backup
// scheduler.
func (s *HistoryStore) SaveBackup(boardID, backupID, snapshotJSON string) error {
	_, err := s.db.Conn().Exec(
		`INSERT INTO backups (id, board_id, snapshot_json, created_at) VALUES (?, ?, ?, ?)`,
		backupID, boardID, snapshotJSON, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert backup: %w", err)
	}
	// keep the most recent backups only
	s.db.Conn().Exec(
		`DELETE FROM backups WHERE board_id = ? AND id NOT IN (
			SELECT id FROM backups WHERE board_id = ? ORDER BY created_at DESC LIMIT 10
		)`, boardID, boardID,
	)
	return nil
}
