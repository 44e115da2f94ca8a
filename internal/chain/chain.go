package chain

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrActionPending = errors.New("a submission for this action is already outstanding")
	ErrUnknownTx     = errors.New("unknown transaction id")
)

// Status of a submitted transaction. Submitted and confirmed are distinct
// events; balances move only on Confirmed.
type Status int

const (
	StatusPending Status = iota
	StatusConfirmed
	StatusFailed
)

// Call is the opaque contract invocation the game submits. The engine never
// looks inside it.
type Call struct {
	Contract  string  `json:"contract"`
	Method    string  `json:"method"`
	Wallet    string  `json:"wallet"`
	Amount    float64 `json:"amount"`
	Nonce     int64   `json:"nonce"`
	Signature string  `json:"signature"`
}

// Submitter sends a call to the chain and later reports its fate.
type Submitter interface {
	Submit(ctx context.Context, call Call) (string, error)
	AwaitConfirmation(ctx context.Context, txID string) (Status, error)
}

// Tracker enforces at most one outstanding submission per (wallet, action).
// A retry after an abandoned flow gets a fresh request only once the previous
// one is released.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]string
}

func NewTracker() *Tracker {
	return &Tracker{pending: make(map[string]string)}
}

// Begin reserves the (wallet, action) slot and returns a release func. The
// caller releases on confirmation, failure, or timeout.
func (t *Tracker) Begin(wallet, action string) (func(), error) {
	key := wallet + "|" + action
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.pending[key]; busy {
		return nil, ErrActionPending
	}
	token := uuid.NewString()
	t.pending[key] = token
	return func() {
		t.mu.Lock()
		if t.pending[key] == token {
			delete(t.pending, key)
		}
		t.mu.Unlock()
	}, nil
}

// Outstanding reports whether a submission for (wallet, action) is in flight.
func (t *Tracker) Outstanding(wallet, action string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, busy := t.pending[wallet+"|"+action]
	return busy
}

// MemorySubmitter confirms instantly; the dev and test double.
type MemorySubmitter struct {
	mu       sync.Mutex
	statuses map[string]Status
	calls    []Call

	// FailNext makes the next submission confirm as failed.
	FailNext bool
}

func NewMemorySubmitter() *MemorySubmitter {
	return &MemorySubmitter{statuses: make(map[string]Status)}
}

func (m *MemorySubmitter) Submit(_ context.Context, call Call) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	st := StatusConfirmed
	if m.FailNext {
		st = StatusFailed
		m.FailNext = false
	}
	m.statuses[id] = st
	m.calls = append(m.calls, call)
	return id, nil
}

func (m *MemorySubmitter) AwaitConfirmation(_ context.Context, txID string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.statuses[txID]
	if !ok {
		return StatusFailed, ErrUnknownTx
	}
	return st, nil
}

// Calls returns every submitted call, oldest first.
func (m *MemorySubmitter) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
