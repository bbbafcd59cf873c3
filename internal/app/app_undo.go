package app

// ============================================================
// Undo / Redo
// ============================================================

// Undo reverts the most recent batch and returns its label.
func (a *App) Undo() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	label, _ := a.store.Undo()
	return label
}

// Redo replays the most recently undone batch and returns its label.
func (a *App) Redo() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	label, _ := a.store.Redo()
	return label
}

func (a *App) CanUndo() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.CanUndo()
}

func (a *App) CanRedo() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.CanRedo()
}

// UndoLabels returns the in-memory undo stack labels, oldest first.
func (a *App) UndoLabels() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.UndoLabels()
}
