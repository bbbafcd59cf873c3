package app

import (
	"log"

	"github.com/robfig/cron/v3"
)

// autosaveScheduler periodically saves the open board and snapshots a
// backup copy, so a crash loses at most one interval of work.
type autosaveScheduler struct {
	app  *App
	cron *cron.Cron
}

func newAutosaveScheduler(app *App) *autosaveScheduler {
	return &autosaveScheduler{app: app, cron: cron.New()}
}

func (s *autosaveScheduler) Start() {
	s.cron.AddFunc("@every 2m", s.saveTick)
	s.cron.AddFunc("@every 15m", s.backupTick)
	s.cron.Start()
}

func (s *autosaveScheduler) Stop() {
	s.cron.Stop()
}

func (s *autosaveScheduler) saveTick() {
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	boardID := s.app.activeBoardID
	if boardID == "" {
		return
	}
	s.app.watcherMarkSelfWrite()
	if err := s.app.boards.SaveBoard(s.app.ctx, boardID, s.app.store); err != nil {
		log.Printf("autosave: save board %s: %v", boardID, err)
	}
}

func (s *autosaveScheduler) backupTick() {
	s.app.mu.Lock()
	boardID := s.app.activeBoardID
	s.app.mu.Unlock()
	if boardID == "" {
		return
	}
	if err := s.app.boards.BackupBoard(boardID); err != nil {
		log.Printf("autosave: backup board %s: %v", boardID, err)
	}
}
