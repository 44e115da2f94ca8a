package session

import (
	"context"
	"log"
	"sync"

	"github.com/rorupuntou/World-IDle-sub000/internal/config"
	"github.com/rorupuntou/World-IDle-sub000/internal/game"
	"github.com/rorupuntou/World-IDle-sub000/internal/store"
)

// Manager owns one session per wallet. Two devices sharing a wallet against
// one server share a session; across servers the store's last-write-wins
// upsert is the accepted resolution.
type Manager struct {
	st     *store.Store
	bal    config.Balance
	clock  game.Clock
	logger *log.Logger
	dev    bool

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(st *store.Store, bal config.Balance, clock game.Clock, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		st:       st,
		bal:      bal,
		clock:    clock,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// SetDevMode exposes dev-only producers in newly created sessions.
func (m *Manager) SetDevMode(on bool) { m.dev = on }

// Get returns the live session for a wallet, creating it from the stored
// snapshot (or a fresh engine for a new player) on first access.
func (m *Manager) Get(ctx context.Context, wallet string) (*Session, error) {
	wallet = store.NormalizeWallet(wallet)
	if wallet == "" {
		return nil, store.ErrNoWallet
	}

	m.mu.Lock()
	if s, ok := m.sessions[wallet]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Load outside the manager lock; only session creation is serialized.
	row, err := m.st.Load(ctx, wallet)
	if err != nil {
		return nil, err
	}
	engine := game.New(m.bal, m.clock)
	if m.dev {
		engine.SetDevMode(true)
	}
	if row != nil {
		if row.Snapshot != nil {
			engine.Restore(*row.Snapshot, row.PrestigeBalance)
		}
		engine.SetReferralBoost(row.ReferralBoost)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[wallet]; ok {
		return s, nil
	}
	s := newSession(wallet, engine, m.st, m.bal, m.logger)
	m.sessions[wallet] = s
	return s, nil
}

// Peek returns an existing session without creating one.
func (m *Manager) Peek(wallet string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[store.NormalizeWallet(wallet)]
	return s, ok
}

// Drop closes and removes one wallet's session, flushing its state.
func (m *Manager) Drop(ctx context.Context, wallet string) {
	wallet = store.NormalizeWallet(wallet)
	m.mu.Lock()
	s, ok := m.sessions[wallet]
	delete(m.sessions, wallet)
	m.mu.Unlock()
	if ok {
		s.Close(ctx)
	}
}

// CloseAll flushes every session; called on shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range all {
		s.Close(ctx)
	}
}
