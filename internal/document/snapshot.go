package document

import (
	"encoding/json"
	"fmt"

	"whiteboard/internal/domain"
)

// Snapshot is the persisted board shape: plain JSON, directly serializable.
type Snapshot struct {
	Elements           map[string]*domain.Element `json:"elements"`
	ElementOrder       []string                   `json:"elementOrder"`
	SelectedElementIDs []string                   `json:"selectedElementIds"`
	Viewport           Viewport                   `json:"viewport"`
}

// Snapshot captures the full store state as deep copies.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Elements:           make(map[string]*domain.Element, len(s.elements)),
		ElementOrder:       s.ElementOrder(),
		SelectedElementIDs: s.SelectedIDs(),
		Viewport:           s.viewport,
	}
	for id, el := range s.elements {
		snap.Elements[id] = el.Clone()
	}
	return snap
}

// Restore replaces the store state with a snapshot. The history log is
// cleared: a restored board starts fresh. Order is repaired to a permutation
// of the element keys and the selection drops ids that do not resolve.
func (s *Store) Restore(snap Snapshot) {
	s.elements = make(map[string]*domain.Element, len(snap.Elements))
	for id, el := range snap.Elements {
		if el == nil || id == "" {
			continue
		}
		el = el.Clone()
		el.ID = id
		s.elements[id] = el
	}

	s.order = nil
	seen := make(map[string]bool)
	for _, id := range snap.ElementOrder {
		if _, ok := s.elements[id]; ok && !seen[id] {
			s.order = append(s.order, id)
			seen[id] = true
		}
	}
	for id := range s.elements {
		if !seen[id] {
			s.order = append(s.order, id)
		}
	}

	s.replaceSelection(snap.SelectedElementIDs)

	s.viewport = snap.Viewport
	if s.viewport.Scale <= 0 {
		s.viewport.Scale = 1
	}

	s.history = newHistoryLog()
	s.notify()
}

// MarshalSnapshot serializes a snapshot to JSON.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot parses a snapshot from JSON.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
