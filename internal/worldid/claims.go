package worldid

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rorupuntou/World-IDle-sub000/internal/game"
)

var (
	ErrBadAmount = errors.New("claim amount must be positive")
)

// Claim authorizes an on-chain claim of Amount for Wallet, bound to a
// single-use Nonce. The signature is what the claim contract verifies.
type Claim struct {
	Wallet    string  `json:"wallet"`
	Amount    float64 `json:"amount"`
	Nonce     int64   `json:"nonce"`
	Signature string  `json:"signature"`
}

// Issuer signs claims. Nonces are derived from the clock and strictly
// increasing even when two claims land in the same nanosecond, so a stale
// claim can never be replayed over a fresh one.
type Issuer struct {
	mu        sync.Mutex
	key       []byte
	clock     game.Clock
	lastNonce int64
}

func NewIssuer(signKey string, clock game.Clock) *Issuer {
	return &Issuer{key: []byte(signKey), clock: clock}
}

// Issue produces a signed claim for the wallet.
func (i *Issuer) Issue(wallet string, amount float64) (Claim, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return Claim{}, errors.New("wallet is required")
	}
	if amount <= 0 {
		return Claim{}, ErrBadAmount
	}

	i.mu.Lock()
	nonce := i.clock.Now().UnixNano()
	if nonce <= i.lastNonce {
		nonce = i.lastNonce + 1
	}
	i.lastNonce = nonce
	i.mu.Unlock()

	return Claim{
		Wallet:    wallet,
		Amount:    amount,
		Nonce:     nonce,
		Signature: i.sign(wallet, amount, nonce),
	}, nil
}

// Validate reports whether a claim carries this issuer's signature.
func (i *Issuer) Validate(c Claim) bool {
	want := i.sign(strings.ToLower(c.Wallet), c.Amount, c.Nonce)
	return hmac.Equal([]byte(want), []byte(c.Signature))
}

func (i *Issuer) sign(wallet string, amount float64, nonce int64) string {
	mac := hmac.New(sha256.New, i.key)
	fmt.Fprintf(mac, "%s|%.8f|%d", wallet, amount, nonce)
	return hex.EncodeToString(mac.Sum(nil))
}
