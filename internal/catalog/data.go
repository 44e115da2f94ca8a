package catalog

// Stable template IDs. Never reuse or renumber; tier IDs are derived from
// these (see tiers.go) and live in a separate range.
const (
	ProducerAutoTapper   = 1
	ProducerOrbCollector = 2
	ProducerDroneMiner   = 3
	ProducerVerifyBooth  = 4
	ProducerOrbRefinery  = 5
	ProducerDataCenter   = 6
	ProducerOrbitalArray = 7
	ProducerSingularity  = 8
	ProducerDevFountain  = 99
)

// Base returns the shipped catalog. Callers must treat the result as
// read-only; derived views are built with Extended.
func Base() Catalog {
	return Catalog{
		Producers:    baseProducers(),
		Upgrades:     baseUpgrades(),
		Achievements: baseAchievements(),
	}
}

func baseProducers() []Producer {
	return []Producer{
		{ID: ProducerAutoTapper, Name: "Auto Tapper", BaseCost: 15, BaseRate: 0.1},
		{ID: ProducerOrbCollector, Name: "Orb Collector", BaseCost: 100, BaseRate: 1},
		{ID: ProducerDroneMiner, Name: "Drone Miner", BaseCost: 1_100, BaseRate: 8},
		{ID: ProducerVerifyBooth, Name: "Verification Booth", BaseCost: 12_000, BaseRate: 47,
			Unlock: &Requirement{RequiresVerified: true}},
		{ID: ProducerOrbRefinery, Name: "Orb Refinery", BaseCost: 130_000, BaseRate: 260},
		{ID: ProducerDataCenter, Name: "Data Center", BaseCost: 1_400_000, BaseRate: 1_400,
			Unlock: &Requirement{MinLifetimeEarnings: 500_000}},
		{ID: ProducerOrbitalArray, Name: "Orbital Array", BaseCost: 20_000_000, BaseRate: 7_800,
			Unlock: &Requirement{MinLifetimeEarnings: 5_000_000}},
		// Late game, additionally priced in prestige currency.
		{ID: ProducerSingularity, Name: "Singularity Core", BaseCost: 330_000_000, BaseRate: 44_000,
			PrestigeCost: 1,
			Unlock:       &Requirement{MinLifetimeEarnings: 100_000_000}},
		{ID: ProducerDevFountain, Name: "Dev Fountain", BaseCost: 1, BaseRate: 1_000_000, DevOnly: true},
	}
}

func baseUpgrades() []Upgrade {
	return []Upgrade{
		{ID: 101, Name: "Reinforced Finger", Cost: 100,
			Effects: []Effect{{Kind: MultiplyClick, Value: 2}}},
		{ID: 102, Name: "Twin Tap", Cost: 500,
			Effects: []Effect{{Kind: MultiplyClick, Value: 2}},
			Unlock:  &Requirement{MinLifetimeClicks: 100}},
		{ID: 103, Name: "Weighted Glove", Cost: 10_000,
			Effects: []Effect{{Kind: AddClick, Value: 50}},
			Unlock:  &Requirement{MinLifetimeClicks: 1_000}},
		{ID: 110, Name: "Tapper Lubricant", Cost: 1_000,
			Effects: []Effect{{Kind: MultiplyProducer, Value: 2, ProducerID: ProducerAutoTapper}},
			Unlock:  &Requirement{MinOwned: map[int]int{ProducerAutoTapper: 1}}},
		{ID: 111, Name: "Collector Swarm", Cost: 11_000,
			Effects: []Effect{{Kind: MultiplyProducer, Value: 2, ProducerID: ProducerOrbCollector}},
			Unlock:  &Requirement{MinOwned: map[int]int{ProducerOrbCollector: 1}}},
		{ID: 112, Name: "Drone Firmware", Cost: 120_000,
			Effects: []Effect{{Kind: MultiplyProducer, Value: 2, ProducerID: ProducerDroneMiner}},
			Unlock:  &Requirement{MinOwned: map[int]int{ProducerDroneMiner: 1}}},
		{ID: 120, Name: "Thousand Fingers", Cost: 100_000,
			// Each non-tapper unit feeds the tappers a little extra.
			Effects: []Effect{{Kind: FlatRateFromOthers, Value: 0.1, ProducerID: ProducerAutoTapper}},
			Unlock:  &Requirement{MinOwned: map[int]int{ProducerAutoTapper: 25}}},
		{ID: 121, Name: "Click Siphon", Cost: 500_000,
			Effects: []Effect{{Kind: ClickFromRatePercent, Value: 1}},
			Unlock:  &Requirement{MinLifetimeEarnings: 100_000}},
		{ID: 130, Name: "Global Broadcast", Cost: 2_000_000,
			Effects: []Effect{{Kind: MultiplyGlobal, Value: 1.5}},
			Unlock:  &Requirement{MinProductionRate: 1_000}},
		{ID: 131, Name: "Collector-Drone Mesh", Cost: 5_000_000,
			// Collectors get 1% per drone owned.
			Effects: []Effect{{Kind: Synergy, Value: 0.01, ProducerID: ProducerOrbCollector, SourceID: ProducerDroneMiner}},
			Unlock:  &Requirement{MinOwned: map[int]int{ProducerOrbCollector: 10, ProducerDroneMiner: 10}}},
		{ID: 140, Name: "Singularity Tuning", Cost: 1_000_000_000, PrestigeCost: 5,
			Effects: []Effect{
				{Kind: MultiplyProducer, Value: 3, ProducerID: ProducerSingularity},
				{Kind: MultiplyGlobal, Value: 1.1},
			},
			Unlock: &Requirement{MinOwned: map[int]int{ProducerSingularity: 1}}},
	}
}

func baseAchievements() []Achievement {
	return []Achievement{
		{ID: 201, Name: "First Tap", Requirement: Requirement{MinLifetimeClicks: 1}},
		{ID: 202, Name: "Carpal Tunnel", Requirement: Requirement{MinLifetimeClicks: 1_000},
			RewardBonus: 10},
		{ID: 203, Name: "Pocket Change", Requirement: Requirement{MinLifetimeEarnings: 1_000}},
		{ID: 204, Name: "Millionaire", Requirement: Requirement{MinLifetimeEarnings: 1_000_000},
			RewardBonus: 50},
		{ID: 205, Name: "Steady Drip", Requirement: Requirement{MinProductionRate: 100}},
		{ID: 206, Name: "Industrialist", Requirement: Requirement{MinProductionRate: 10_000},
			RewardBonus: 100},
		{ID: 207, Name: "Proven Human", Requirement: Requirement{RequiresVerified: true},
			RewardBonus: 25},
		// Gated on every known producer, including tiers appended later.
		{ID: 208, Name: "Full Roster", Requirement: Requirement{MinOwnedEach: 1},
			RewardBonus: 200},
		{ID: 209, Name: "Collector Baron",
			Requirement: Requirement{MinOwned: map[int]int{ProducerOrbCollector: 100}}},
	}
}
