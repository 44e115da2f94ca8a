package worldid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrEmptyProof    = errors.New("proof payload is empty")
	ErrSignalMismatch = errors.New("proof signal does not match wallet")
)

// Actions the mini-app verifies against World ID. Each action gets its own
// incognito action scope.
const (
	ActionVerifyHuman = "verify-human"
	ActionPrestige    = "prestige-claim"
	ActionTokenClaim  = "token-claim"
)

// Proof is an opaque zero-knowledge proof bundle from the wallet client. The
// server never interprets its contents, only forwards them.
type Proof struct {
	MerkleRoot        string `json:"merkle_root"`
	NullifierHash     string `json:"nullifier_hash"`
	Proof             string `json:"proof"`
	VerificationLevel string `json:"verification_level"`
}

// Result is the verifier's verdict. Detail carries a human-readable reason
// on failure.
type Result struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
}

// Verifier checks a proof-of-humanity for an action, with the signal bound to
// the wallet so a proof cannot be replayed across accounts.
type Verifier interface {
	Verify(ctx context.Context, proof Proof, action, signal string) (Result, error)
}

// SignalForWallet derives the per-wallet signal a proof must be bound to.
func SignalForWallet(wallet string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(wallet))))
	return hex.EncodeToString(sum[:])
}

// StaticVerifier is the dev-mode verifier: it accepts any structurally
// complete proof without calling the World ID backend.
type StaticVerifier struct {
	Reject bool
}

func (v StaticVerifier) Verify(_ context.Context, proof Proof, action, signal string) (Result, error) {
	if v.Reject {
		return Result{Detail: "verification rejected"}, nil
	}
	if proof.Proof == "" || proof.NullifierHash == "" {
		return Result{Detail: ErrEmptyProof.Error()}, nil
	}
	if action == "" || signal == "" {
		return Result{Detail: "action and signal are required"}, nil
	}
	return Result{Success: true}, nil
}
