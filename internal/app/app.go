package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"whiteboard/internal/document"
	"whiteboard/internal/render"
	"whiteboard/internal/scene"
	"whiteboard/internal/service"
	"whiteboard/internal/storage"
	"whiteboard/internal/transform"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context

	// The document store and scene are single-writer. Wails invokes bound
	// methods on goroutines of its own, and the frame loop, watcher and
	// scheduler add more, so every path touching store or stage serializes
	// through this.
	mu sync.Mutex

	db      *storage.DB
	boards  *service.BoardService
	history *storage.HistoryStore

	store      *document.Store
	stage      *scene.Stage
	orch       *render.Orchestrator
	controller *transform.Controller
	images     *render.AsyncImageLoader

	watcher  *boardWatcher
	autosave *autosaveScheduler

	activeBoardID string
	disposeScene  func()
	frameStop     chan struct{}
	unsubHistory  func()
	lastHistory   int
}

// New creates a new App.
func New() *App {
	return &App{}
}

// Emit implements service.EventEmitter by delegating to the Wails runtime.
func (a *App) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "whiteboard")
	dbPath := filepath.Join(dataDir, "whiteboard.db")

	db, err := storage.New(dbPath, filepath.Join(dataDir, "boards"))
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}
	a.db = db
	a.history = storage.NewHistoryStore(db)
	a.boards = service.NewBoardService(storage.NewBoardStore(db), a.history, db.DataDir(), a)

	// Document store and scene
	a.store = document.NewStore()
	a.stage = scene.NewStage(1440, 900)
	a.stage.OnDraw(func(l *scene.Layer) {
		wailsRuntime.EventsEmit(ctx, "canvas:draw", serializeLayer(l))
	})

	a.images = render.NewAsyncImageLoader()
	a.orch = render.NewOrchestrator(a.store, a.stage, render.Options{Images: a.images})
	a.disposeScene = a.orch.Mount(render.DefaultModules()...)
	a.controller = transform.NewController(a.orch.Context())

	// Persist the label of each committed undo batch
	a.unsubHistory = a.store.Subscribe(
		func(s *document.Store) any { return s.UndoLabels() },
		func(slice any) {
			labels, _ := slice.([]string)
			if a.activeBoardID != "" && len(labels) > a.lastHistory {
				a.boards.RecordHistory(ctx, a.activeBoardID, labels[len(labels)-1])
			}
			a.lastHistory = len(labels)
		},
		document.SubscribeOptions{},
	)

	// External edits to the exported board files reload the open board
	watcher, err := newBoardWatcher(ctx, a)
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to create board watcher: %v", err)
	}
	a.watcher = watcher

	a.autosave = newAutosaveScheduler(a)
	a.autosave.Start()

	a.frameStop = make(chan struct{})
	go a.frameLoop()
}

// frameLoop drives the repaint cycle: dirty layers are flushed and finished
// image decodes are applied once per tick, so bursts of store patches cost a
// single repaint.
func (a *App) frameLoop() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.frameTick()
		case <-a.frameStop:
			return
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) frameTick() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.images.Drain()
	if a.stage.NeedsFlush() {
		a.stage.Flush()
	}
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	if a.activeBoardID != "" {
		if a.watcher != nil {
			a.watcher.MarkSelfWrite()
		}
		a.boards.SaveBoard(ctx, a.activeBoardID, a.store)
	}
	a.mu.Unlock()
	if a.frameStop != nil {
		close(a.frameStop)
	}
	if a.autosave != nil {
		a.autosave.Stop()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.unsubHistory != nil {
		a.unsubHistory()
	}
	if a.controller != nil {
		a.controller.Close()
	}
	if a.disposeScene != nil {
		a.disposeScene()
	}
	if a.db != nil {
		a.db.Close()
	}
}
