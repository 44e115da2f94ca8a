package game

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/rorupuntou/World-IDle-sub000/internal/catalog"
	"github.com/rorupuntou/World-IDle-sub000/internal/config"
	"github.com/rorupuntou/World-IDle-sub000/internal/economy"
)

// Rejections are expected, frequent conditions; callers branch on these
// sentinels instead of treating them as exceptional.
var (
	ErrUnknownProducer     = errors.New("unknown producer")
	ErrUnknownUpgrade      = errors.New("unknown upgrade")
	ErrBadQuantity         = errors.New("quantity must be positive")
	ErrRequirementNotMet   = errors.New("requirement not met")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAlreadyPurchased    = errors.New("upgrade already purchased")
	ErrPrestigeUnavailable = errors.New("prestige reward below minimum")
	ErrNoOfflineGains      = errors.New("no offline gains staged")
)

// Engine is the progression state machine for a single player. It owns the
// snapshot and is the only writer; transitions are atomic and rejections
// leave the state untouched. The engine is not safe for concurrent use; the
// session layer serializes access.
type Engine struct {
	bal   config.Balance
	base  catalog.Catalog
	clock Clock
	dev   bool

	game         GameState
	stats        economy.Stats
	producers    map[int]*ProducerState
	upgrades     map[int]bool
	achievements map[int]bool
	knownTiers   map[int]int

	prestigeBalance     float64
	externalRatePercent float64

	rates       economy.Rates
	lastAccrual time.Time

	stagedOffline float64
	offlineStaged bool
}

// New creates an engine with a fresh snapshot for a new player.
func New(bal config.Balance, clock Clock) *Engine {
	e := &Engine{
		bal:          bal,
		base:         catalog.Base(),
		clock:        clock,
		producers:    make(map[int]*ProducerState),
		upgrades:     make(map[int]bool),
		achievements: make(map[int]bool),
		knownTiers:   make(map[int]int),
	}
	now := clock.Now()
	e.game = GameState{
		ClickBaseValue: bal.ClickBaseValue,
		LastSavedAt:    now,
	}
	e.lastAccrual = now
	for _, p := range e.base.Producers {
		e.producers[p.ID] = &ProducerState{ID: p.ID, UnitCost: p.BaseCost}
	}
	e.refresh()
	return e
}

// SetDevMode exposes dev-only producers. Off for real players.
func (e *Engine) SetDevMode(on bool) {
	e.dev = on
	e.refresh()
}

// Restore replaces the engine's state with a persisted snapshot and stages
// offline gains once per session. The prestige balance is persisted outside
// the snapshot and reinjected here.
func (e *Engine) Restore(snap Snapshot, prestigeBalance float64) {
	e.game = snap.Game
	if e.game.ClickBaseValue == 0 {
		e.game.ClickBaseValue = e.bal.ClickBaseValue
	}
	e.stats = snap.Stats
	e.prestigeBalance = prestigeBalance

	e.producers = make(map[int]*ProducerState, len(e.base.Producers))
	for _, p := range e.base.Producers {
		e.producers[p.ID] = &ProducerState{ID: p.ID, UnitCost: p.BaseCost}
	}
	for _, ps := range snap.Producers {
		cp := ps
		if cp.UnitCost <= 0 {
			// Old or hand-built rows may lack a cost. Replay the ratchet from
			// the template base so the next purchase is never free.
			if tpl, ok := e.base.Producer(cp.ID); ok {
				_, cp.UnitCost = economy.BulkCost(tpl.BaseCost, e.bal.CostGrowthRate, cp.Owned)
			}
		}
		if cur, ok := e.producers[ps.ID]; ok {
			*cur = cp
		} else {
			e.producers[ps.ID] = &cp
		}
	}
	e.upgrades = make(map[int]bool, len(snap.Upgrades))
	for _, us := range snap.Upgrades {
		if us.Purchased {
			e.upgrades[us.ID] = true
		}
	}
	e.achievements = make(map[int]bool, len(snap.Achievements))
	for _, as := range snap.Achievements {
		if as.Unlocked {
			e.achievements[as.ID] = true
		}
	}
	e.knownTiers = make(map[int]int, len(snap.KnownTiers))
	for id, n := range snap.KnownTiers {
		e.knownTiers[id] = n
	}

	now := e.clock.Now()
	e.lastAccrual = now
	e.refresh()
	e.stageOfflineGains(now, snap.Game.LastSavedAt)
}

// Snapshot captures the full serializable state, stamped with the current
// time. Safe to call at any point between transitions.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Game:       e.game,
		Stats:      e.stats,
		KnownTiers: make(map[int]int, len(e.knownTiers)),
	}
	snap.Game.LastSavedAt = e.clock.Now()

	ids := make([]int, 0, len(e.producers))
	for id := range e.producers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		snap.Producers = append(snap.Producers, *e.producers[id])
	}

	ids = ids[:0]
	for id := range e.upgrades {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		snap.Upgrades = append(snap.Upgrades, UpgradeState{ID: id, Purchased: true})
	}

	ids = ids[:0]
	for id := range e.achievements {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		snap.Achievements = append(snap.Achievements, AchievementState{ID: id, Unlocked: true})
	}

	for id, n := range e.knownTiers {
		snap.KnownTiers[id] = n
	}
	return snap
}

// Catalog returns the current extended catalog view: base templates plus
// every tier entry the player has reached, derived fresh on each call.
func (e *Engine) Catalog() catalog.Catalog {
	return catalog.Extended(e.base, e.knownTiers, e.bal.TierOwnedThresholds, e.dev)
}

// Rates returns the cached output of the last recomputation.
func (e *Engine) Rates() economy.Rates { return e.rates }

func (e *Engine) Game() GameState         { return e.game }
func (e *Engine) Stats() economy.Stats    { return e.stats }
func (e *Engine) PrestigeBalance() float64 { return e.prestigeBalance }

// Producer returns the mutable state row for one producer ID.
func (e *Engine) Producer(id int) (ProducerState, bool) {
	ps, ok := e.producers[id]
	if !ok {
		return ProducerState{}, false
	}
	return *ps, true
}

// UpgradePurchased reports the purchase flag for one upgrade ID.
func (e *Engine) UpgradePurchased(id int) bool { return e.upgrades[id] }

// AchievementUnlocked reports the unlock flag for one achievement ID.
func (e *Engine) AchievementUnlocked(id int) bool { return e.achievements[id] }

// SetVerified records the proof-of-humanity result. Verification is an
// external event; the engine only reacts to it.
func (e *Engine) SetVerified(v bool) {
	if e.stats.Verified == v {
		return
	}
	e.stats.Verified = v
	e.refresh()
}

// SetExternalRatePercent injects the externally derived percentage boost,
// e.g. the token-holdings bonus.
func (e *Engine) SetExternalRatePercent(p float64) {
	if e.externalRatePercent == p {
		return
	}
	e.externalRatePercent = p
	e.refresh()
}

// SetReferralBoost reinjects the referral boost fraction, which is persisted
// outside the snapshot blob.
func (e *Engine) SetReferralBoost(f float64) {
	if e.game.PermanentReferralBoost == f {
		return
	}
	e.game.PermanentReferralBoost = f
	e.refresh()
}

// Accrue credits production for the wall time elapsed since the last accrual.
// Sessions call this before handling any player action.
func (e *Engine) Accrue() float64 {
	now := e.clock.Now()
	dt := now.Sub(e.lastAccrual).Seconds()
	e.lastAccrual = now
	if dt <= 0 || e.rates.Total <= 0 {
		return 0
	}
	earned := dt * e.rates.Total
	e.credit(earned)
	e.refresh()
	return earned
}

// Click credits one click at the current click value and returns it.
func (e *Engine) Click() float64 {
	v := e.rates.ClickValue
	e.credit(v)
	e.stats.LifetimeClicks++
	e.refresh()
	return v
}

// PurchaseProducer buys qty units in one atomic transition. On success it
// debits both currencies, advances the stored unit cost by growth^qty (with
// per-step ceiling) and returns the soft-currency cost paid.
func (e *Engine) PurchaseProducer(id, qty int) (float64, error) {
	if qty <= 0 {
		return 0, ErrBadQuantity
	}
	ps, ok := e.producers[id]
	if !ok {
		return 0, ErrUnknownProducer
	}
	tpl, ok := e.base.Producer(id)
	if !ok || (tpl.DevOnly && !e.dev) {
		return 0, ErrUnknownProducer
	}
	view := e.Catalog()
	if !economy.Met(tpl.Unlock, e.stats, view.Producers, e.ownedCounts()) {
		return 0, ErrRequirementNotMet
	}
	cost, next := economy.BulkCost(ps.UnitCost, e.bal.CostGrowthRate, qty)
	pcost := economy.BulkPrestigeCost(tpl.PrestigeCost, qty)
	if e.game.SoftCurrency < cost || e.prestigeBalance < pcost {
		return 0, ErrInsufficientFunds
	}
	e.game.SoftCurrency -= cost
	e.prestigeBalance -= pcost
	ps.Owned += qty
	ps.UnitCost = next
	e.refresh()
	return cost, nil
}

// BuyMaxProducer buys as many units as the current soft-currency balance
// affords. Zero affordable units is a quiet no-op, not an error.
func (e *Engine) BuyMaxProducer(id int) (int, float64, error) {
	ps, ok := e.producers[id]
	if !ok {
		return 0, 0, ErrUnknownProducer
	}
	qty := economy.MaxAffordable(ps.UnitCost, e.bal.CostGrowthRate, e.game.SoftCurrency)
	if tpl, ok := e.base.Producer(id); ok && tpl.PrestigeCost > 0 {
		if byPrestige := int(e.prestigeBalance / tpl.PrestigeCost); byPrestige < qty {
			qty = byPrestige
		}
	}
	if qty == 0 {
		return 0, 0, nil
	}
	cost, err := e.PurchaseProducer(id, qty)
	return qty, cost, err
}

// PurchaseUpgrade buys a single upgrade. Upgrades are not bulk-purchasable.
func (e *Engine) PurchaseUpgrade(id int) error {
	view := e.Catalog()
	tpl, ok := view.Upgrade(id)
	if !ok {
		return ErrUnknownUpgrade
	}
	if e.upgrades[id] {
		return ErrAlreadyPurchased
	}
	if !economy.Met(tpl.Unlock, e.stats, view.Producers, e.ownedCounts()) {
		return ErrRequirementNotMet
	}
	if e.game.SoftCurrency < tpl.Cost || e.prestigeBalance < tpl.PrestigeCost {
		return ErrInsufficientFunds
	}
	e.game.SoftCurrency -= tpl.Cost
	e.prestigeBalance -= tpl.PrestigeCost
	e.upgrades[id] = true
	e.refresh()
	return nil
}

// PrestigeReward computes the reward the current lifetime earnings would
// yield, without performing the reset.
func (e *Engine) PrestigeReward() float64 {
	return math.Floor(math.Sqrt(e.stats.LifetimeEarnings/e.bal.PrestigeDivisor)) * e.bal.PrestigeMultiplier
}

// Prestige credits the prestige reward and resets the epoch: producer counts
// and unit costs, upgrade flags, lifetime stats and soft currency all go back
// to zero. Permanent boosts, verification, bonus currency, achievements and
// the known-tier set survive.
func (e *Engine) Prestige() (float64, error) {
	reward := e.PrestigeReward()
	if reward < e.bal.PrestigeMinReward {
		return 0, ErrPrestigeUnavailable
	}
	e.prestigeBalance += reward
	for _, p := range e.base.Producers {
		ps := e.producers[p.ID]
		ps.Owned = 0
		ps.UnitCost = p.BaseCost
	}
	e.upgrades = make(map[int]bool)
	e.stats.LifetimeEarnings = 0
	e.stats.LifetimeClicks = 0
	e.game.SoftCurrency = 0
	e.refresh()
	return reward, nil
}

func (e *Engine) credit(amount float64) {
	e.game.SoftCurrency += amount
	e.stats.LifetimeEarnings += amount
}

func (e *Engine) ownedCounts() map[int]int {
	owned := make(map[int]int, len(e.producers))
	for id, ps := range e.producers {
		owned[id] = ps.Owned
	}
	return owned
}

func (e *Engine) boosts() economy.Boosts {
	return economy.Boosts{
		ClickBase:           e.game.ClickBaseValue,
		ExternalRatePercent: e.externalRatePercent,
		PermanentBoost:      e.game.PermanentBoostBonus,
		ReferralBoost:       e.game.PermanentReferralBoost,
		Verified:            e.stats.Verified,
		HumanBoostFactor:    e.bal.HumanBoostFactor,
	}
}

// refresh restores derived state after any mutation: tier high-water marks,
// the rate calculation, the cached production rate, and the achievement pass.
func (e *Engine) refresh() {
	for id, ps := range e.producers {
		if n := catalog.ReachedTiers(ps.Owned, e.bal.TierOwnedThresholds); n > e.knownTiers[id] {
			e.knownTiers[id] = n
		}
	}
	view := e.Catalog()
	owned := e.ownedCounts()
	e.rates = economy.ComputeRates(view.Producers, owned, view.Upgrades, e.upgrades, e.boosts())
	e.stats.ProductionRate = e.rates.Total
	e.evaluateAchievements(view, owned)
}

// evaluateAchievements is the invariant-restoring pass: any achievement whose
// requirement is now satisfied flips to unlocked and pays its reward once.
func (e *Engine) evaluateAchievements(view catalog.Catalog, owned map[int]int) {
	for _, a := range view.Achievements {
		if e.achievements[a.ID] {
			continue
		}
		if !economy.Met(&a.Requirement, e.stats, view.Producers, owned) {
			continue
		}
		e.achievements[a.ID] = true
		if a.RewardBonus > 0 {
			e.game.BonusCurrency += a.RewardBonus
		}
	}
}
