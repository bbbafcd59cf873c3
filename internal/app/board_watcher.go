package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// boardWatcher watches the exported board JSON files on disk. When an
// outside tool edits the open board's file, the board is reloaded into the
// document store so the canvas reflects the change.
type boardWatcher struct {
	ctx     context.Context
	app     *App
	watcher *fsnotify.Watcher

	mu        sync.Mutex
	boardID   string
	selfWrite time.Time // suppress events caused by our own saves
}

func newBoardWatcher(ctx context.Context, app *App) (*boardWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(app.db.DataDir()); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch data dir: %w", err)
	}

	w := &boardWatcher{ctx: ctx, app: app, watcher: watcher}
	go w.watchLoop()
	return w, nil
}

// SetBoard changes which board file triggers a reload.
func (w *boardWatcher) SetBoard(boardID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.boardID = boardID
}

// MarkSelfWrite records that the app is about to write the board file, so
// the resulting fsnotify event doesn't bounce back as a reload.
func (w *boardWatcher) MarkSelfWrite() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selfWrite = time.Now()
}

func (w *boardWatcher) Close() error {
	return w.watcher.Close()
}

func (w *boardWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) {
				w.onWrite(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("board watcher: %v", err)
		}
	}
}

func (w *boardWatcher) onWrite(path string) {
	w.mu.Lock()
	boardID := w.boardID
	recentSelfWrite := time.Since(w.selfWrite) < 500*time.Millisecond
	w.mu.Unlock()

	if boardID == "" || recentSelfWrite {
		return
	}
	if filepath.Base(path) != boardID+".json" {
		return
	}

	w.app.mu.Lock()
	defer w.app.mu.Unlock()
	if err := w.app.boards.ReloadFromFile(w.ctx, boardID, w.app.store); err != nil {
		log.Printf("board watcher: reload %s: %v", boardID, err)
	}
}
