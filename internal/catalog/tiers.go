package catalog

import (
	"fmt"
	"sort"
)

// Tier IDs live in reserved ranges so they can never collide with base
// template IDs or with each other.
const (
	tierUpgradeIDBase     = 10_000
	tierAchievementIDBase = 20_000
	tierIDStride          = 100
)

// TierUpgradeID derives the stable ID for a producer's tier upgrade.
func TierUpgradeID(producerID, tier int) int {
	return tierUpgradeIDBase + producerID*tierIDStride + tier
}

// TierAchievementID derives the stable ID for a producer's tier achievement.
func TierAchievementID(producerID, tier int) int {
	return tierAchievementIDBase + producerID*tierIDStride + tier
}

// TierUpgrade synthesizes the tier upgrade for (producer, tier). Pure and
// idempotent: identical inputs always yield an identical definition.
func TierUpgrade(p Producer, tier int, ownedThreshold int) Upgrade {
	cost := p.BaseCost * 50
	for i := 0; i < tier; i++ {
		cost *= 10
	}
	return Upgrade{
		ID:   TierUpgradeID(p.ID, tier),
		Name: fmt.Sprintf("%s Specialization %s", p.Name, roman(tier+1)),
		Cost: cost,
		Effects: []Effect{
			{Kind: MultiplyProducer, Value: 2, ProducerID: p.ID},
		},
		Unlock: &Requirement{MinOwned: map[int]int{p.ID: ownedThreshold}},
	}
}

// TierAchievement synthesizes the tier achievement for (producer, tier).
func TierAchievement(p Producer, tier int, ownedThreshold int) Achievement {
	return Achievement{
		ID:          TierAchievementID(p.ID, tier),
		Name:        fmt.Sprintf("%s Magnate %s", p.Name, roman(tier+1)),
		Requirement: Requirement{MinOwned: map[int]int{p.ID: ownedThreshold}},
		RewardBonus: float64(5 * (tier + 1)),
	}
}

// Extended derives the visible catalog from the base catalog plus the known
// tier high-water marks (producerID → number of tiers reached). The result is
// recomputed on demand; callers never append to a shared registry. Dev-only
// producers are filtered out unless includeDev is set.
func Extended(base Catalog, knownTiers map[int]int, thresholds []int, includeDev bool) Catalog {
	out := Catalog{
		Producers:    make([]Producer, 0, len(base.Producers)),
		Upgrades:     append([]Upgrade(nil), base.Upgrades...),
		Achievements: append([]Achievement(nil), base.Achievements...),
	}
	for _, p := range base.Producers {
		if p.DevOnly && !includeDev {
			continue
		}
		out.Producers = append(out.Producers, p)
	}

	// Deterministic append order regardless of map iteration.
	ids := make([]int, 0, len(knownTiers))
	for id := range knownTiers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		p, ok := base.Producer(id)
		if !ok {
			continue
		}
		n := knownTiers[id]
		if n > len(thresholds) {
			n = len(thresholds)
		}
		for tier := 0; tier < n; tier++ {
			out.Upgrades = append(out.Upgrades, TierUpgrade(p, tier, thresholds[tier]))
			out.Achievements = append(out.Achievements, TierAchievement(p, tier, thresholds[tier]))
		}
	}
	return out
}

// ReachedTiers computes, for one producer, how many tier thresholds the given
// owned count has crossed.
func ReachedTiers(owned int, thresholds []int) int {
	n := 0
	for _, th := range thresholds {
		if owned >= th {
			n++
		}
	}
	return n
}

func roman(n int) string {
	vals := []struct {
		v int
		s string
	}{{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"}}
	out := ""
	for _, e := range vals {
		for n >= e.v {
			out += e.s
			n -= e.v
		}
	}
	return out
}
