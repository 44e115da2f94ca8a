package game

import (
	"time"

	"github.com/rorupuntou/World-IDle-sub000/internal/economy"
)

// GameState holds the currency balances and permanent modifiers of one player.
type GameState struct {
	SoftCurrency  float64 `json:"soft_currency"`
	BonusCurrency float64 `json:"bonus_currency"`
	// ClickBaseValue is the unupgraded value of one click.
	ClickBaseValue float64 `json:"click_base_value"`
	// PermanentBoostBonus and PermanentReferralBoost are fractions that
	// survive prestige resets.
	PermanentBoostBonus    float64 `json:"permanent_boost_bonus"`
	PermanentReferralBoost float64 `json:"permanent_referral_boost"`
	PrestigeTimeWarpCount  int     `json:"prestige_time_warp_count"`
	LastSavedAt            time.Time `json:"last_saved_at"`
}

// ProducerState is the mutable per-producer part of a snapshot. UnitCost is
// the price of the next unit; it ratchets up on purchase and is never
// recomputed from Owned.
type ProducerState struct {
	ID       int     `json:"id"`
	Owned    int     `json:"owned"`
	UnitCost float64 `json:"unit_cost"`
}

// UpgradeState records a purchase flag for one upgrade ID.
type UpgradeState struct {
	ID        int  `json:"id"`
	Purchased bool `json:"purchased"`
}

// AchievementState records an unlock flag for one achievement ID. The unlock
// reward is credited at the false→true transition, exactly once.
type AchievementState struct {
	ID       int  `json:"id"`
	Unlocked bool `json:"unlocked"`
}

// Snapshot is the full serializable progress of one player, the unit of
// persistence. It is keyed externally by lowercase wallet address.
type Snapshot struct {
	Game         GameState          `json:"game"`
	Stats        economy.Stats      `json:"stats"`
	Producers    []ProducerState    `json:"producers"`
	Upgrades     []UpgradeState     `json:"upgrades,omitempty"`
	Achievements []AchievementState `json:"achievements,omitempty"`
	// KnownTiers is the monotone high-water mark of synthesized tier content
	// per producer ID. It only ever grows, so appended catalog entries keep
	// their IDs across prestiges.
	KnownTiers map[int]int `json:"known_tiers,omitempty"`
}
