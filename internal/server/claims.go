package server

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/rorupuntou/World-IDle-sub000/internal/chain"
	"github.com/rorupuntou/World-IDle-sub000/internal/game"
	"github.com/rorupuntou/World-IDle-sub000/internal/store"
	"github.com/rorupuntou/World-IDle-sub000/internal/telemetry"
	"github.com/rorupuntou/World-IDle-sub000/internal/worldid"
)

type proofRequest struct {
	Wallet string        `json:"wallet"`
	Proof  worldid.Proof `json:"proof"`
}

// verifyProof runs the proof-of-humanity check with the signal bound to the
// wallet. Verification failures block the user-initiated flow, so they are
// surfaced immediately as typed failures.
func (h *Handler) verifyProof(w http.ResponseWriter, r *http.Request, req proofRequest, action string) bool {
	signal := worldid.SignalForWallet(req.Wallet)
	res, err := h.Verifier.Verify(r.Context(), req.Proof, action, signal)
	if err != nil {
		writeErr(w, http.StatusBadGateway, "verification service unavailable: "+err.Error())
		return false
	}
	if !res.Success {
		writeJSON(w, http.StatusForbidden, map[string]any{"ok": false, "reason": res.Detail})
		return false
	}
	return true
}

// POST /api/game/verify
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req proofRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s, ok := h.sessionFor(w, r, req.Wallet)
	if !ok {
		return
	}
	if !h.verifyProof(w, r, req, worldid.ActionVerifyHuman) {
		return
	}
	_ = s.Do(func(e *game.Engine) error {
		e.SetVerified(true)
		return nil
	})
	_ = h.Events.RecordEvent(telemetry.EventVerified, store.NormalizeWallet(req.Wallet), nil)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": h.stateOf(s)})
}

// POST /api/game/prestige
//
// The reset and the prestige-currency credit are applied only after the
// on-chain claim confirms. An abandoned or failed flow leaves the game state
// untouched; the tracker guarantees a retry is a fresh request, never a
// replay of a stale pending one.
func (h *Handler) Prestige(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req proofRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s, ok := h.sessionFor(w, r, req.Wallet)
	if !ok {
		return
	}

	var reward float64
	s.View(func(e *game.Engine) { reward = e.PrestigeReward() })
	if reward < h.Cfg.Balance.PrestigeMinReward {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "reason": game.ErrPrestigeUnavailable.Error()})
		return
	}

	if !h.verifyProof(w, r, req, worldid.ActionPrestige) {
		return
	}

	release, err := h.Tracker.Begin(store.NormalizeWallet(req.Wallet), worldid.ActionPrestige)
	if err != nil {
		writeErr(w, http.StatusConflict, chain.ErrActionPending.Error())
		return
	}
	defer release()

	claim, err := h.Issuer.Issue(req.Wallet, reward)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "issue claim: "+err.Error())
		return
	}
	_ = h.Events.RecordEvent(telemetry.EventClaimIssued, claim.Wallet,
		telemetry.EventMetadata{"action": worldid.ActionPrestige, "amount": claim.Amount, "nonce": claim.Nonce})

	txID, err := h.Submitter.Submit(r.Context(), chain.Call{
		Method:    "claimPrestige",
		Wallet:    claim.Wallet,
		Amount:    claim.Amount,
		Nonce:     claim.Nonce,
		Signature: claim.Signature,
	})
	if err != nil {
		writeErr(w, http.StatusBadGateway, "submit transaction: "+err.Error())
		return
	}
	status, err := h.Submitter.AwaitConfirmation(r.Context(), txID)
	if err != nil || status != chain.StatusConfirmed {
		writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "reason": "transaction not confirmed", "tx_id": txID})
		return
	}

	var applied float64
	err = s.Do(func(e *game.Engine) error {
		var err error
		applied, err = e.Prestige()
		return err
	})
	if err != nil {
		if rejection(w, err) {
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.Flush(r.Context())
	_ = h.Events.RecordEvent(telemetry.EventPrestige, claim.Wallet,
		telemetry.EventMetadata{"reward": applied, "tx_id": txID})
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"reward": applied,
		"claim":  claim,
		"tx_id":  txID,
		"state":  h.stateOf(s),
	})
}

// tokenClaimAmount is the configured reward curve: logarithmic in lifetime
// earnings. Fixed here once rather than inferred per code path.
func (h *Handler) tokenClaimAmount(lifetimeEarnings float64) float64 {
	if lifetimeEarnings <= 0 {
		return 0
	}
	return math.Log10(1+lifetimeEarnings) * h.Cfg.Balance.TokenClaimMultiplier
}

// POST /api/claim/issue
//
// A claim opportunity is single-use: once claimed at a given lifetime
// earnings level, no further claim is possible until earnings change.
func (h *Handler) TokenClaim(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req proofRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s, ok := h.sessionFor(w, r, req.Wallet)
	if !ok {
		return
	}

	row, err := h.Store.Load(r.Context(), req.Wallet)
	if err != nil && !errors.Is(err, store.ErrNoWallet) {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	var lastClaimEarnings float64
	if row != nil {
		lastClaimEarnings = row.LastClaimEarnings
	}

	var earnings float64
	s.View(func(e *game.Engine) { earnings = e.Stats().LifetimeEarnings })
	amount := h.tokenClaimAmount(earnings)
	if amount <= 0 || earnings == lastClaimEarnings {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "reason": "nothing to claim"})
		return
	}

	if !h.verifyProof(w, r, req, worldid.ActionTokenClaim) {
		return
	}

	release, err := h.Tracker.Begin(store.NormalizeWallet(req.Wallet), worldid.ActionTokenClaim)
	if err != nil {
		writeErr(w, http.StatusConflict, chain.ErrActionPending.Error())
		return
	}
	defer release()

	claim, err := h.Issuer.Issue(req.Wallet, amount)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "issue claim: "+err.Error())
		return
	}
	_ = h.Events.RecordEvent(telemetry.EventClaimIssued, claim.Wallet,
		telemetry.EventMetadata{"action": worldid.ActionTokenClaim, "amount": claim.Amount, "nonce": claim.Nonce})

	txID, err := h.Submitter.Submit(r.Context(), chain.Call{
		Method:    "claimTokens",
		Wallet:    claim.Wallet,
		Amount:    claim.Amount,
		Nonce:     claim.Nonce,
		Signature: claim.Signature,
	})
	if err != nil {
		writeErr(w, http.StatusBadGateway, "submit transaction: "+err.Error())
		return
	}
	status, err := h.Submitter.AwaitConfirmation(r.Context(), txID)
	if err != nil || status != chain.StatusConfirmed {
		writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "reason": "transaction not confirmed", "tx_id": txID})
		return
	}

	now := time.Now().UTC()
	if err := h.Store.Save(r.Context(), req.Wallet, store.SaveRequest{
		LastClaimAt:       &now,
		LastClaimEarnings: &earnings,
	}); err != nil {
		h.Logger.Printf("record claim latch for %s: %v", claim.Wallet, err)
	}
	_ = h.Events.RecordEvent(telemetry.EventClaimConfirmed, claim.Wallet,
		telemetry.EventMetadata{"amount": claim.Amount, "tx_id": txID})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "claim": claim, "tx_id": txID})
}
