package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/rorupuntou/World-IDle-sub000/internal/chain"
	"github.com/rorupuntou/World-IDle-sub000/internal/config"
	"github.com/rorupuntou/World-IDle-sub000/internal/economy"
	"github.com/rorupuntou/World-IDle-sub000/internal/game"
	"github.com/rorupuntou/World-IDle-sub000/internal/referral"
	"github.com/rorupuntou/World-IDle-sub000/internal/session"
	"github.com/rorupuntou/World-IDle-sub000/internal/store"
	"github.com/rorupuntou/World-IDle-sub000/internal/telemetry"
	"github.com/rorupuntou/World-IDle-sub000/internal/worldid"
)

// Handler carries everything the API routes depend on.
type Handler struct {
	Sessions  *session.Manager
	Store     *store.Store
	Verifier  worldid.Verifier
	Issuer    *worldid.Issuer
	Submitter chain.Submitter
	Tracker   *chain.Tracker
	Referrals *referral.Service
	Events    telemetry.Repository
	Cfg       *config.Config
	Logger    *log.Logger
}

// Single click requests are batched by the client; cap the batch so a stuck
// client cannot replay an unbounded burst.
const maxClickBatch = 100

type walletRequest struct {
	Wallet string `json:"wallet"`
}

// stateResponse mirrors the data model: the full snapshot plus derived rates.
type stateResponse struct {
	Snapshot        game.Snapshot `json:"snapshot"`
	Rates           economy.Rates `json:"rates"`
	PrestigeBalance float64       `json:"prestige_balance"`
	PrestigeReward  float64       `json:"prestige_reward"`
	StagedOffline   float64       `json:"staged_offline,omitempty"`
}

func (h *Handler) stateOf(s *session.Session) stateResponse {
	var resp stateResponse
	s.View(func(e *game.Engine) {
		resp = stateResponse{
			Snapshot:        e.Snapshot(),
			Rates:           e.Rates(),
			PrestigeBalance: e.PrestigeBalance(),
			PrestigeReward:  e.PrestigeReward(),
			StagedOffline:   e.StagedOfflineGain(),
		}
	})
	return resp
}

func (h *Handler) sessionFor(w http.ResponseWriter, r *http.Request, wallet string) (*session.Session, bool) {
	s, err := h.Sessions.Get(r.Context(), wallet)
	if err != nil {
		if errors.Is(err, store.ErrNoWallet) {
			writeErr(w, http.StatusBadRequest, "wallet is required")
		} else {
			h.Logger.Printf("load session: %v", err)
			writeErr(w, http.StatusInternalServerError, "failed to load player")
		}
		return nil, false
	}
	return s, true
}

// rejection maps an expected engine rejection to an {ok:false} body.
// Rejections are frequent and non-exceptional; they are not HTTP errors.
func rejection(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrRequirementNotMet),
		errors.Is(err, game.ErrAlreadyPurchased),
		errors.Is(err, game.ErrPrestigeUnavailable),
		errors.Is(err, game.ErrNoOfflineGains):
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "reason": err.Error()})
		return true
	case errors.Is(err, game.ErrUnknownProducer), errors.Is(err, game.ErrUnknownUpgrade):
		writeErr(w, http.StatusNotFound, err.Error())
		return true
	case errors.Is(err, game.ErrBadQuantity):
		writeErr(w, http.StatusBadRequest, err.Error())
		return true
	}
	return false
}

// POST /api/game/load
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s, ok := h.sessionFor(w, r, req.Wallet)
	if !ok {
		return
	}
	_ = h.Events.RecordEvent(telemetry.EventSessionStarted, store.NormalizeWallet(req.Wallet), nil)

	resp := h.stateOf(s)
	var catalogView any
	s.View(func(e *game.Engine) { catalogView = e.Catalog() })
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"state":   resp,
		"catalog": catalogView,
	})
}

type saveRequest struct {
	Wallet      string         `json:"wallet"`
	Snapshot    *game.Snapshot `json:"snapshot,omitempty"`
	LastClaimAt string         `json:"last_claim_at,omitempty"`
}

// POST /api/game/save
//
// Without a snapshot this forces a flush of the server-side session. With
// one, the client's snapshot replaces the session state (validated against
// the schema first), last-write-wins, same trust model as the stored row.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Snapshot != nil {
		if err := validateSnapshot(req.Snapshot); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid snapshot: "+err.Error())
			return
		}
	}
	s, ok := h.sessionFor(w, r, req.Wallet)
	if !ok {
		return
	}
	err := s.Do(func(e *game.Engine) error {
		if req.Snapshot != nil {
			e.Restore(*req.Snapshot, e.PrestigeBalance())
		}
		return nil
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req.LastClaimAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, req.LastClaimAt); err == nil {
			if err := h.Store.Save(r.Context(), req.Wallet, store.SaveRequest{LastClaimAt: &ts}); err != nil {
				h.Logger.Printf("save last claim at: %v", err)
			}
		}
	}
	s.Flush(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": h.stateOf(s)})
}

type clickRequest struct {
	Wallet string `json:"wallet"`
	Count  int    `json:"count,omitempty"`
}

// POST /api/game/click
func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req clickRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > maxClickBatch {
		req.Count = maxClickBatch
	}
	s, ok := h.sessionFor(w, r, req.Wallet)
	if !ok {
		return
	}
	var earned float64
	_ = s.Do(func(e *game.Engine) error {
		for i := 0; i < req.Count; i++ {
			earned += e.Click()
		}
		return nil
	})
	_ = h.Events.RecordEvent(telemetry.EventClickBatch, store.NormalizeWallet(req.Wallet),
		telemetry.EventMetadata{"count": req.Count, "earned": earned})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "earned": earned, "state": h.stateOf(s)})
}

type buyProducerRequest struct {
	Wallet   string `json:"wallet"`
	ID       int    `json:"id"`
	Quantity int    `json:"quantity,omitempty"`
	Max      bool   `json:"max,omitempty"`
}

// POST /api/game/buy/producer
func (h *Handler) BuyProducer(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req buyProducerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s, ok := h.sessionFor(w, r, req.Wallet)
	if !ok {
		return
	}
	var (
		qty  = req.Quantity
		cost float64
	)
	err := s.Do(func(e *game.Engine) error {
		if req.Max {
			var err error
			qty, cost, err = e.BuyMaxProducer(req.ID)
			return err
		}
		if qty == 0 {
			qty = 1
		}
		var err error
		cost, err = e.PurchaseProducer(req.ID, qty)
		return err
	})
	if err != nil {
		if rejection(w, err) {
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = h.Events.RecordEvent(telemetry.EventProducerPurchased, store.NormalizeWallet(req.Wallet),
		telemetry.EventMetadata{"producer_id": req.ID, "quantity": qty, "cost": cost})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "quantity": qty, "cost": cost, "state": h.stateOf(s)})
}

type buyUpgradeRequest struct {
	Wallet string `json:"wallet"`
	ID     int    `json:"id"`
}

// POST /api/game/buy/upgrade
func (h *Handler) BuyUpgrade(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req buyUpgradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s, ok := h.sessionFor(w, r, req.Wallet)
	if !ok {
		return
	}
	err := s.Do(func(e *game.Engine) error { return e.PurchaseUpgrade(req.ID) })
	if err != nil {
		if rejection(w, err) {
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = h.Events.RecordEvent(telemetry.EventUpgradePurchased, store.NormalizeWallet(req.Wallet),
		telemetry.EventMetadata{"upgrade_id": req.ID})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": h.stateOf(s)})
}

// POST /api/game/offline/confirm
func (h *Handler) ConfirmOffline(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req walletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	s, ok := h.sessionFor(w, r, req.Wallet)
	if !ok {
		return
	}
	var amount float64
	err := s.Do(func(e *game.Engine) error {
		var err error
		amount, err = e.ConfirmOfflineGains()
		return err
	})
	if err != nil {
		if rejection(w, err) {
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = h.Events.RecordEvent(telemetry.EventOfflineConfirmed, store.NormalizeWallet(req.Wallet),
		telemetry.EventMetadata{"amount": amount})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "amount": amount, "state": h.stateOf(s)})
}

type referralRequest struct {
	Wallet   string `json:"wallet"`
	Referrer string `json:"referrer"`
}

// POST /api/referral
func (h *Handler) Referral(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req referralRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	boost, err := h.Referrals.Bind(r.Context(), req.Wallet, req.Referrer)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoWallet):
			writeErr(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, referral.ErrSelfReferral),
			errors.Is(err, referral.ErrAlreadyReferred),
			errors.Is(err, referral.ErrUnknownReferrer):
			writeJSON(w, http.StatusOK, map[string]any{"ok": false, "reason": err.Error()})
		default:
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	// Push the new boost into the referrer's live session, if any.
	if s, live := h.Sessions.Peek(req.Referrer); live {
		_ = s.Do(func(e *game.Engine) error {
			e.SetReferralBoost(boost)
			return nil
		})
	}
	_ = h.Events.RecordEvent(telemetry.EventReferralBound, store.NormalizeWallet(req.Wallet),
		telemetry.EventMetadata{"referrer": store.NormalizeWallet(req.Referrer), "boost": boost})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "referrer_boost": boost})
}

// GET /api/telemetry/stats
func (h *Handler) TelemetryStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	since := time.Now().AddDate(0, 0, -7)
	if v := r.URL.Query().Get("since"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			since = ts
		}
	}
	events, err := h.Events.GetEvents(since, nil)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := telemetry.CalculateStats(events, since)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
