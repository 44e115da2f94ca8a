package config

// Balance holds every gameplay tuning constant. Nothing in the engine is
// hardcoded; tests construct their own Balance when they need odd values.
type Balance struct {
	// Producer cost curve
	CostGrowthRate float64 `yaml:"cost_growth_rate" json:"cost_growth_rate"`

	// Click
	ClickBaseValue float64 `yaml:"click_base_value" json:"click_base_value"`

	// Verification boost applied to both production and click value
	HumanBoostFactor float64 `yaml:"human_boost_factor" json:"human_boost_factor"`

	// Offline catch-up
	OfflineMinSeconds int64 `yaml:"offline_min_seconds" json:"offline_min_seconds"`
	OfflineCapSeconds int64 `yaml:"offline_cap_seconds" json:"offline_cap_seconds"`

	// Prestige reward: floor(sqrt(lifetimeEarnings / PrestigeDivisor)) * PrestigeMultiplier
	PrestigeDivisor    float64 `yaml:"prestige_divisor" json:"prestige_divisor"`
	PrestigeMultiplier float64 `yaml:"prestige_multiplier" json:"prestige_multiplier"`
	PrestigeMinReward  float64 `yaml:"prestige_min_reward" json:"prestige_min_reward"`

	// Tier thresholds: owning the Nth entry of this list on a producer unlocks
	// tier N for that producer.
	TierOwnedThresholds []int `yaml:"tier_owned_thresholds" json:"tier_owned_thresholds"`

	// Referral
	ReferralBoostPerReferral float64 `yaml:"referral_boost_per_referral" json:"referral_boost_per_referral"`
	ReferralBoostCap         float64 `yaml:"referral_boost_cap" json:"referral_boost_cap"`

	// Token claim: amount = log10(1 + lifetimeEarnings) × multiplier
	TokenClaimMultiplier float64 `yaml:"token_claim_multiplier" json:"token_claim_multiplier"`

	Autosave AutosaveConfig `yaml:"autosave" json:"autosave"`
}

func (b *Balance) applyDefaults() {
	if b.CostGrowthRate == 0 {
		b.CostGrowthRate = 1.15
	}
	if b.ClickBaseValue == 0 {
		b.ClickBaseValue = 1
	}
	if b.HumanBoostFactor == 0 {
		b.HumanBoostFactor = 10
	}
	if b.OfflineMinSeconds == 0 {
		b.OfflineMinSeconds = 60
	}
	if b.OfflineCapSeconds == 0 {
		b.OfflineCapSeconds = 86400
	}
	if b.PrestigeDivisor == 0 {
		b.PrestigeDivisor = 1_000_000
	}
	if b.PrestigeMultiplier == 0 {
		b.PrestigeMultiplier = 1
	}
	if b.PrestigeMinReward == 0 {
		b.PrestigeMinReward = 1
	}
	if len(b.TierOwnedThresholds) == 0 {
		b.TierOwnedThresholds = []int{10, 25, 50, 100, 200}
	}
	if b.ReferralBoostPerReferral == 0 {
		b.ReferralBoostPerReferral = 0.05
	}
	if b.ReferralBoostCap == 0 {
		b.ReferralBoostCap = 0.5
	}
	if b.TokenClaimMultiplier == 0 {
		b.TokenClaimMultiplier = 0.1
	}
	if b.Autosave.DebounceSeconds == 0 {
		b.Autosave.DebounceSeconds = 3
	}
	if b.Autosave.PeriodicSeconds == 0 {
		b.Autosave.PeriodicSeconds = 30
	}
}

// DefaultBalance returns the shipped tuning values.
func DefaultBalance() Balance {
	var b Balance
	b.applyDefaults()
	return b
}
