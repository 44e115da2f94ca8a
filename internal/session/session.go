package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/rorupuntou/World-IDle-sub000/internal/config"
	"github.com/rorupuntou/World-IDle-sub000/internal/game"
	"github.com/rorupuntou/World-IDle-sub000/internal/store"
)

// Session is one wallet's live engine plus its save scheduler. All engine
// access goes through Do, which serializes callers and accrues production
// first; the engine itself stays single-writer.
type Session struct {
	wallet string

	mu     sync.Mutex
	engine *game.Engine

	st     *store.Store
	bal    config.Balance
	logger *log.Logger

	dirty    bool
	debounce *time.Timer
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newSession(wallet string, engine *game.Engine, st *store.Store, bal config.Balance, logger *log.Logger) *Session {
	s := &Session{
		wallet: wallet,
		engine: engine,
		st:     st,
		bal:    bal,
		logger: logger,
		stop:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.periodicLoop()
	return s
}

// Do runs fn against the engine under the session lock. Production is
// accrued before fn so every action sees an up-to-date balance, and a
// debounced save is scheduled afterwards.
func (s *Session) Do(fn func(e *game.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Accrue()
	err := fn(s.engine)
	s.markDirtyLocked()
	return err
}

// View runs fn read-only. Accrual can still credit production, so a session
// observed only through View is marked dirty for the next flush; View itself
// never arms the debounce timer.
func (s *Session) View(fn func(e *game.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine.Accrue() > 0 {
		s.dirty = true
	}
	fn(s.engine)
}

func (s *Session) markDirtyLocked() {
	s.dirty = true
	if s.debounce == nil {
		s.debounce = time.AfterFunc(s.bal.Autosave.Debounce(), func() {
			s.saveNow(context.Background())
		})
		return
	}
	s.debounce.Reset(s.bal.Autosave.Debounce())
}

// saveNow flushes the current snapshot. Autosave failures are logged and left
// for the next debounce or periodic tick; they never reach the player.
func (s *Session) saveNow(ctx context.Context) {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	snap := s.engine.Snapshot()
	prestige := s.engine.PrestigeBalance()
	boost := snap.Game.PermanentReferralBoost
	s.dirty = false
	s.mu.Unlock()

	err := s.st.Save(ctx, s.wallet, store.SaveRequest{
		Snapshot:        &snap,
		PrestigeBalance: &prestige,
		ReferralBoost:   &boost,
	})
	if err != nil {
		s.logger.Printf("autosave failed for %s: %v (will retry)", s.wallet, err)
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	}
}

// Flush saves immediately if anything changed, bypassing the debounce.
func (s *Session) Flush(ctx context.Context) {
	s.saveNow(ctx)
}

func (s *Session) periodicLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.bal.Autosave.Periodic())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.saveNow(context.Background())
		case <-s.stop:
			return
		}
	}
}

// Close stops the schedulers and makes a best-effort final save.
func (s *Session) Close(ctx context.Context) {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.mu.Lock()
		if s.debounce != nil {
			s.debounce.Stop()
		}
		s.mu.Unlock()
		s.wg.Wait()
		s.saveNow(ctx)
	})
}
