package app

import (
	"fmt"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/render"
	"whiteboard/internal/storage"
)

// ============================================================
// Boards
// ============================================================

func (a *App) ListBoards() ([]storage.Board, error) {
	return a.boards.ListBoards()
}

func (a *App) CreateBoard(name string) (*storage.Board, error) {
	return a.boards.CreateBoard(name)
}

func (a *App) RenameBoard(id, name string) error {
	return a.boards.RenameBoard(id, name)
}

func (a *App) DeleteBoard(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id == a.activeBoardID {
		a.activeBoardID = ""
		a.watcherSetBoard("")
	}
	return a.boards.DeleteBoard(id)
}

// OpenBoard saves the current board, then loads the requested one into the
// document store. The scene follows through its subscriptions.
func (a *App) OpenBoard(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeBoardID != "" && a.activeBoardID != id {
		a.watcherMarkSelfWrite()
		a.boards.SaveBoard(a.ctx, a.activeBoardID, a.store)
	}
	if err := a.boards.LoadBoard(a.ctx, id, a.store); err != nil {
		return fmt.Errorf("open board: %w", err)
	}
	a.activeBoardID = id
	a.lastHistory = 0
	a.watcherSetBoard(id)
	return nil
}

func (a *App) SaveBoard() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeBoardID == "" {
		return fmt.Errorf("no board open")
	}
	a.watcherMarkSelfWrite()
	return a.boards.SaveBoard(a.ctx, a.activeBoardID, a.store)
}

// BoardHistory returns the persisted change labels of the open board.
func (a *App) BoardHistory() ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeBoardID == "" {
		return nil, fmt.Errorf("no board open")
	}
	return a.boards.HistoryLabels(a.activeBoardID)
}

func (a *App) watcherSetBoard(id string) {
	if a.watcher != nil {
		a.watcher.SetBoard(id)
	}
}

func (a *App) watcherMarkSelfWrite() {
	if a.watcher != nil {
		a.watcher.MarkSelfWrite()
	}
}

// ============================================================
// Elements
// ============================================================

// CreateElement adds an element to the open board and selects it.
func (a *App) CreateElement(el domain.Element) (*domain.Element, error) {
	if !el.Type.Valid() {
		return nil, fmt.Errorf("unknown element type %q", el.Type)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.store.AddElement(&el, document.AddOptions{Select: true, PushHistory: true})
	return a.store.Element(id), nil
}

func (a *App) GetElement(id string) *domain.Element {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Element(id)
}

func (a *App) UpdateElement(id string, patch domain.Patch) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.UpdateElement(id, patch, document.UpdateOptions{PushHistory: true})
}

func (a *App) DeleteElements(ids []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.RemoveElements(ids)
}

// DeleteSelection removes every selected element.
func (a *App) DeleteSelection() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.RemoveElements(a.store.SelectedIDs())
}

func (a *App) DuplicateElement(id string) *domain.Element {
	a.mu.Lock()
	defer a.mu.Unlock()
	dupID := a.store.Duplicate(id)
	return a.store.Element(dupID)
}

func (a *App) BringToFront(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.BringToFront(id)
}

func (a *App) SendToBack(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.SendToBack(id)
}

// ============================================================
// Selection
// ============================================================

func (a *App) SelectedIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.SelectedIDs()
}

func (a *App) SetSelection(ids []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.SetSelection(ids)
}

func (a *App) ToggleSelection(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.ToggleSelection(id)
}

func (a *App) ClearSelection() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.ClearSelection()
}

func (a *App) SelectAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.SelectAll()
}

// ============================================================
// Viewport
// ============================================================

func (a *App) SetViewport(x, y, scale float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.SetViewport(document.Viewport{X: x, Y: y, Scale: scale})
}

func (a *App) GetViewport() document.Viewport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Viewport()
}

// ResizeCanvas forwards the frontend canvas dimensions to the stage.
func (a *App) ResizeCanvas(width, height, pixelRatio float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stage.Resize(width, height, pixelRatio)
}

// ============================================================
// Pointer and keyboard routing
// ============================================================

func (a *App) PointerDown(x, y float64, shift bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stage.PointerDown(domain.Point{X: x, Y: y}, shift)
}

func (a *App) PointerMove(x, y float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stage.PointerMove(domain.Point{X: x, Y: y})
}

// PointerUp ends the pointer session. A press on empty canvas commits any
// open text editor, then clears the selection (unless shift is held).
func (a *App) PointerUp(x, y float64, shift bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	editor := a.orch.Context().Editor
	a.stage.PointerUp(domain.Point{X: x, Y: y}, shift, func(_ domain.Point, shiftHeld bool) {
		if editor.Active() {
			editor.Commit(render.CommitClickOutside)
			return
		}
		if !shiftHeld {
			a.store.ClearSelection()
		}
	})
}

func (a *App) DoubleTap(x, y float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stage.DispatchDoubleTap(domain.Point{X: x, Y: y})
}

// KeyInput routes a key press. An open text editor consumes keys first;
// Escape cancels an in-flight drag or transform gesture; Delete removes the
// selection. The store calls stay inline: the binding already holds the
// app lock, which is not reentrant.
func (a *App) KeyInput(key string, shift bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	editor := a.orch.Context().Editor
	if editor.Active() {
		return editor.Input(key, shift)
	}

	switch key {
	case "Escape":
		a.stage.CancelDrag()
		a.controller.Cancel()
		a.store.ClearSelection()
		return true
	case "Delete", "Backspace":
		a.store.RemoveElements(a.store.SelectedIDs())
		return true
	}
	return false
}
